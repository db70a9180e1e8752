package envvar

import (
	"os"

	"github.com/joho/godotenv"

	"github.com/sanLimbu/taskflow/internal"
)

// Provider ...
type Provider interface {
	Get(key string) (string, error)
}

// Configuration ...
type Configuration struct {
	provider Provider
}

// Load reads the env filename and loads it into ENV for this process. An empty filename loads nothing.
func Load(filename string) error {
	if filename == "" {
		return nil
	}

	if err := godotenv.Load(filename); err != nil {
		return internal.WrapErrorf(err, internal.ErrorCodeUnknown, "godotenv.Load")
	}

	return nil
}

// New instantiates the Configuration, provider may be nil when no secure values are used.
func New(provider Provider) *Configuration {
	return &Configuration{
		provider: provider,
	}
}

// Get returns the value from environment variable `<key>`. When an environment variable `<key>_SECURE` exists
// the provider is used for getting the value.
func (c *Configuration) Get(key string) (string, error) {
	res := os.Getenv(key)

	secure := os.Getenv(key + "_SECURE")
	if secure == "" {
		return res, nil
	}

	if c.provider == nil {
		return "", internal.NewErrorf(internal.ErrorCodeInvalidArgument, "no provider configured for %s", key)
	}

	val, err := c.provider.Get(secure)
	if err != nil {
		return "", internal.WrapErrorf(err, internal.ErrorCodeInvalidArgument, "provider.Get")
	}

	return val, nil
}

// GetDefault returns the value from Get, or def when the value is empty.
func (c *Configuration) GetDefault(key, def string) (string, error) {
	res, err := c.Get(key)
	if err != nil {
		return "", err
	}

	if res == "" {
		return def, nil
	}

	return res, nil
}
