package internal

import (
	"os"

	"github.com/sanLimbu/taskflow/internal"
	"github.com/sanLimbu/taskflow/internal/envvar"
	"github.com/sanLimbu/taskflow/internal/envvar/vault"
)

// NewVaultProvider instantiates the Vault client using configuration defined in environment variables.
// Without VAULT_ADDRESS no provider is used.
func NewVaultProvider() (envvar.Provider, error) {
	vaultAddress := os.Getenv("VAULT_ADDRESS")
	if vaultAddress == "" {
		return nil, nil
	}

	provider, err := vault.New(os.Getenv("VAULT_TOKEN"), vaultAddress, os.Getenv("VAULT_PATH"))
	if err != nil {
		return nil, internal.WrapErrorf(err, internal.ErrorCodeUnknown, "vault.New")
	}

	return provider, nil
}
