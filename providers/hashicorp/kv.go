package hashicorp

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/hashicorp/vault/api"

	"github.com/hengadev/tagxml"
	"github.com/hengadev/tagxml/internal/digest"
)

// PathTemplate places documents below the KV v2 mount: mount, then key.
const PathTemplate = "%s/data/tagxml/%s"

// KVStore implements tagxml.Store using the HashiCorp Vault KV v2 engine.
type KVStore struct {
	client *api.Client
	mount  string
}

// NewKVStore creates a store on an existing client. An empty mount uses
// tagxml.DefaultVaultMount.
func NewKVStore(client *api.Client, mount string) (*KVStore, error) {
	if client == nil {
		return nil, fmt.Errorf("%w: vault client cannot be nil", tagxml.ErrInvalidInput)
	}
	mount = strings.Trim(mount, "/")
	if mount == "" {
		mount = tagxml.DefaultVaultMount
	}
	return &KVStore{client: client, mount: mount}, nil
}

// NewKVStoreFromEnv creates a store with a client configured from the
// environment (see the package documentation).
func NewKVStoreFromEnv(ctx context.Context, mount string) (*KVStore, error) {
	client, err := dialFromEnv(ctx)
	if err != nil {
		return nil, err
	}
	return NewKVStore(client, mount)
}

// GetStoragePath returns the Vault KV v2 path for a document key.
//
// Examples:
//   - key "students.xml" → "secret/data/tagxml/students.xml"
func (k *KVStore) GetStoragePath(key string) string {
	return fmt.Sprintf(PathTemplate, k.mount, strings.TrimPrefix(key, "/"))
}

// Put stores data as a new version of the secret at key.
func (k *KVStore) Put(ctx context.Context, key string, data []byte) error {
	payload := map[string]interface{}{
		"data": map[string]interface{}{
			"document": base64.StdEncoding.EncodeToString(data),
			"digest":   digest.Sum(data),
		},
	}
	if _, err := k.client.Logical().WriteWithContext(ctx, k.GetStoragePath(key), payload); err != nil {
		return fmt.Errorf("%w: failed to store document '%s' in Vault KV: %w", tagxml.ErrIO, key, err)
	}
	return nil
}

// Get returns the latest version of the document stored at key.
func (k *KVStore) Get(ctx context.Context, key string) ([]byte, error) {
	secret, err := k.client.Logical().ReadWithContext(ctx, k.GetStoragePath(key))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read document '%s' from Vault KV: %w", tagxml.ErrIO, key, err)
	}
	if secret == nil || secret.Data == nil {
		return nil, fmt.Errorf("%w: %s", tagxml.ErrNotFound, k.GetStoragePath(key))
	}

	// KV v2 wraps the actual data in a "data" key; it is nil for deleted versions
	data, ok := secret.Data["data"].(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("%w: %s", tagxml.ErrNotFound, k.GetStoragePath(key))
	}

	encoded, ok := data["document"].(string)
	if !ok {
		return nil, fmt.Errorf("%w: secret at %s holds no document", tagxml.ErrIO, k.GetStoragePath(key))
	}
	doc, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to decode document '%s': %w", tagxml.ErrIO, key, err)
	}
	if sum, ok := data["digest"].(string); ok {
		if err := digest.Verify(doc, sum); err != nil {
			return nil, fmt.Errorf("%w: document '%s': %w", tagxml.ErrIO, key, err)
		}
	}
	return doc, nil
}
