package vault

import (
	"path"
	"strings"

	"github.com/hashicorp/vault/api"

	"github.com/sanLimbu/taskflow/internal"
)

// Provider reads secrets stored in a Vault KV v2 engine.
type Provider struct {
	path   string
	client *api.Logical
}

// New instantiates the Vault client.
func New(token, addr, path string) (*Provider, error) {
	config := &api.Config{
		Address: addr,
	}

	client, err := api.NewClient(config)
	if err != nil {
		return nil, internal.WrapErrorf(err, internal.ErrorCodeUnknown, "api.NewClient")
	}

	client.SetToken(token)

	return &Provider{
		path:   path,
		client: client.Logical(),
	}, nil
}

// Get returns the value referenced by v, formatted as "<secret path>:<key>".
func (p *Provider) Get(v string) (string, error) {
	secret, key, err := splitReference(v)
	if err != nil {
		return "", err
	}

	res, err := p.client.Read(path.Join(p.path, secret))
	if err != nil {
		return "", internal.WrapErrorf(err, internal.ErrorCodeUnknown, "client.Read")
	}

	if res == nil {
		return "", internal.NewErrorf(internal.ErrorCodeNotFound, "secret not found: %s", secret)
	}

	data, ok := res.Data["data"].(map[string]interface{})
	if !ok {
		return "", internal.NewErrorf(internal.ErrorCodeUnknown, "invalid data in secret %s", secret)
	}

	val, ok := data[key].(string)
	if !ok {
		return "", internal.NewErrorf(internal.ErrorCodeNotFound, "key not found: %s", key)
	}

	return val, nil
}

func splitReference(v string) (string, string, error) {
	secret, key, ok := strings.Cut(v, ":")
	if !ok || secret == "" || key == "" {
		return "", "", internal.NewErrorf(internal.ErrorCodeInvalidArgument, "invalid reference, expected <path>:<key>: %q", v)
	}

	return secret, key, nil
}
