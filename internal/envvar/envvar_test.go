package envvar_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/sanLimbu/taskflow/internal"
	"github.com/sanLimbu/taskflow/internal/envvar"
)

type fakeProvider struct {
	values map[string]string
}

func (f fakeProvider) Get(key string) (string, error) {
	v, ok := f.values[key]
	if !ok {
		return "", errors.New("not found")
	}

	return v, nil
}

func TestConfiguration_Get(t *testing.T) {
	t.Setenv("DATABASE_HOST", "localhost")
	t.Setenv("DATABASE_PASSWORD", "plain")
	t.Setenv("DATABASE_PASSWORD_SECURE", "/database:password")

	conf := envvar.New(fakeProvider{values: map[string]string{"/database:password": "s3cret"}})

	host, err := conf.Get("DATABASE_HOST")
	if err != nil || host != "localhost" {
		t.Fatalf("expected localhost, got %q, %v", host, err)
	}

	password, err := conf.Get("DATABASE_PASSWORD")
	if err != nil || password != "s3cret" {
		t.Fatalf("expected secure value, got %q, %v", password, err)
	}
}

func TestConfiguration_GetErrors(t *testing.T) {
	t.Setenv("REDIS_HOST_SECURE", "/redis:host")

	var ierr *internal.Error

	_, err := envvar.New(fakeProvider{}).Get("REDIS_HOST")
	if !errors.As(err, &ierr) || ierr.Code() != internal.ErrorCodeInvalidArgument {
		t.Fatalf("expected invalid argument, got %v", err)
	}

	if _, err := envvar.New(nil).Get("REDIS_HOST"); err == nil {
		t.Fatalf("expected error without provider")
	}
}

func TestConfiguration_GetDefault(t *testing.T) {
	t.Setenv("TASKS_CACHE", "")

	got, err := envvar.New(nil).GetDefault("TASKS_CACHE", "none")
	if err != nil || got != "none" {
		t.Fatalf("expected none, got %q, %v", got, err)
	}
}

func TestLoad(t *testing.T) {
	filename := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(filename, []byte("TASKFLOW_TEST_LOAD=loaded\n"), 0o600); err != nil {
		t.Fatalf("couldn't write env file: %v", err)
	}

	t.Cleanup(func() { os.Unsetenv("TASKFLOW_TEST_LOAD") })

	if err := envvar.Load(filename); err != nil {
		t.Fatalf("unexpected error %v", err)
	}

	if got := os.Getenv("TASKFLOW_TEST_LOAD"); got != "loaded" {
		t.Fatalf("expected loaded, got %q", got)
	}

	if err := envvar.Load(filepath.Join(t.TempDir(), "missing.env")); err == nil {
		t.Fatalf("expected error for missing file")
	}

	if err := envvar.Load(""); err != nil {
		t.Fatalf("expected no error for empty filename, got %v", err)
	}
}
