// Package hashicorp stores tagxml documents in the HashiCorp Vault KV v2
// secrets engine.
//
// Each document is one secret version at "<mount>/data/tagxml/<key>", so Vault
// keeps the history of every overwrite and audits every read.
//
// # Setup
//
// The KV v2 engine must be enabled at the chosen mount:
//
//	vault secrets enable -path=secret kv-v2
//
// # Configuration
//
// NewKVStoreFromEnv reads the connection from the environment:
//
//   - VAULT_ADDR: Vault server address (required)
//   - VAULT_NAMESPACE: namespace for HCP Vault (optional)
//   - VAULT_TOKEN: token authentication
//   - VAULT_ROLE_ID and VAULT_SECRET_ID: AppRole authentication
//
// A token wins over AppRole credentials. Build a Connection directly and call
// Dial to configure the client some other way.
//
// # Usage
//
//	store, err := hashicorp.NewKVStoreFromEnv(ctx, "secret")
//	if err != nil {
//		log.Fatal(err)
//	}
//	s, err := tagxml.New(tagxml.WithStore(store))
package hashicorp
