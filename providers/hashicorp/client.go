package hashicorp

import (
	"context"
	"fmt"
	"os"

	"github.com/hashicorp/vault/api"

	"github.com/hengadev/tagxml"
)

// Environment variables read by ConnectionFromEnv.
const (
	EnvAddress   = "VAULT_ADDR"
	EnvNamespace = "VAULT_NAMESPACE"
	EnvToken     = "VAULT_TOKEN"
	EnvRoleID    = "VAULT_ROLE_ID"
	EnvSecretID  = "VAULT_SECRET_ID"
)

const appRoleLoginPath = "auth/approle/login"

// Connection describes how to reach and authenticate against Vault. A token
// takes precedence over AppRole credentials.
type Connection struct {
	Address   string
	Namespace string
	Token     string
	RoleID    string
	SecretID  string
}

// ConnectionFromEnv reads a Connection through lookup, typically os.LookupEnv.
func ConnectionFromEnv(lookup func(string) (string, bool)) Connection {
	get := func(key string) string {
		v, _ := lookup(key)
		return v
	}
	return Connection{
		Address:   get(EnvAddress),
		Namespace: get(EnvNamespace),
		Token:     get(EnvToken),
		RoleID:    get(EnvRoleID),
		SecretID:  get(EnvSecretID),
	}
}

func (c Connection) validate() error {
	switch {
	case c.Address == "":
		return fmt.Errorf("%w: %s is required", tagxml.ErrInvalidInput, EnvAddress)
	case c.Token != "":
		return nil
	case c.RoleID != "" && c.SecretID != "":
		return nil
	case c.RoleID != "" || c.SecretID != "":
		return fmt.Errorf("%w: AppRole login needs both %s and %s", tagxml.ErrInvalidInput, EnvRoleID, EnvSecretID)
	default:
		return fmt.Errorf("%w: no Vault authentication configured, set %s or %s and %s",
			tagxml.ErrInvalidInput, EnvToken, EnvRoleID, EnvSecretID)
	}
}

// Dial creates an authenticated client.
func (c Connection) Dial(ctx context.Context) (*api.Client, error) {
	if err := c.validate(); err != nil {
		return nil, err
	}

	config := api.DefaultConfig()
	if config.Error != nil {
		return nil, fmt.Errorf("%w: invalid Vault client configuration: %w", tagxml.ErrInvalidInput, config.Error)
	}
	config.Address = c.Address

	client, err := api.NewClient(config)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create Vault client: %w", tagxml.ErrIO, err)
	}
	if c.Namespace != "" {
		client.SetNamespace(c.Namespace)
	}

	token := c.Token
	if token == "" {
		if token, err = loginAppRole(ctx, client, c.RoleID, c.SecretID); err != nil {
			return nil, err
		}
	}
	client.SetToken(token)
	return client, nil
}

func loginAppRole(ctx context.Context, client *api.Client, roleID, secretID string) (string, error) {
	resp, err := client.Logical().WriteWithContext(ctx, appRoleLoginPath, map[string]any{
		"role_id":   roleID,
		"secret_id": secretID,
	})
	if err != nil {
		return "", fmt.Errorf("%w: AppRole login failed: %w", tagxml.ErrAccessDenied, err)
	}
	if resp == nil || resp.Auth == nil || resp.Auth.ClientToken == "" {
		return "", fmt.Errorf("%w: AppRole login returned no token", tagxml.ErrAccessDenied)
	}
	return resp.Auth.ClientToken, nil
}

// dialFromEnv connects with the process environment.
func dialFromEnv(ctx context.Context) (*api.Client, error) {
	return ConnectionFromEnv(os.LookupEnv).Dial(ctx)
}
