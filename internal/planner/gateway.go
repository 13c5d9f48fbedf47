package planner

import (
	"context"
	"fmt"
)

// Kinds of blobs kept per key.
const (
	KindPlan           = "plan"
	KindLocks          = "locks"
	KindFavorites      = "favorites"
	KindCatalogVersion = "catalog_version"
)

// Gateway reads and writes the persisted planner state. Blobs are opaque
// JSON; a value that was never written is returned as nil with a nil error.
type Gateway interface {
	LoadPlan(ctx context.Context, weekKey string) ([]byte, error)
	SavePlan(ctx context.Context, weekKey string, data []byte) error
	LoadLocks(ctx context.Context, weekKey string) ([]byte, error)
	SaveLocks(ctx context.Context, weekKey string, data []byte) error
	LoadFavorites(ctx context.Context) ([]byte, error)
	SaveFavorites(ctx context.Context, data []byte) error
	LoadCatalogVersion(ctx context.Context, weekKey string) (string, error)
	SaveCatalogVersion(ctx context.Context, weekKey, version string) error
}

// BlobStore is the key/value primitive both backends implement.
type BlobStore interface {
	Get(ctx context.Context, kind, key string) ([]byte, error)
	Put(ctx context.Context, kind, key string, data []byte) error
}

// NewGateway adapts a BlobStore to the Gateway interface.
func NewGateway(s BlobStore) Gateway {
	return &blobGateway{store: s}
}

type blobGateway struct {
	store BlobStore
}

func (g *blobGateway) LoadPlan(ctx context.Context, weekKey string) ([]byte, error) {
	return g.get(ctx, KindPlan, weekKey)
}

func (g *blobGateway) SavePlan(ctx context.Context, weekKey string, data []byte) error {
	return g.put(ctx, KindPlan, weekKey, data)
}

func (g *blobGateway) LoadLocks(ctx context.Context, weekKey string) ([]byte, error) {
	return g.get(ctx, KindLocks, weekKey)
}

func (g *blobGateway) SaveLocks(ctx context.Context, weekKey string, data []byte) error {
	return g.put(ctx, KindLocks, weekKey, data)
}

func (g *blobGateway) LoadFavorites(ctx context.Context) ([]byte, error) {
	return g.get(ctx, KindFavorites, "")
}

func (g *blobGateway) SaveFavorites(ctx context.Context, data []byte) error {
	return g.put(ctx, KindFavorites, "", data)
}

func (g *blobGateway) LoadCatalogVersion(ctx context.Context, weekKey string) (string, error) {
	data, err := g.get(ctx, KindCatalogVersion, weekKey)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func (g *blobGateway) SaveCatalogVersion(ctx context.Context, weekKey, version string) error {
	return g.put(ctx, KindCatalogVersion, weekKey, []byte(version))
}

func (g *blobGateway) get(ctx context.Context, kind, key string) ([]byte, error) {
	data, err := g.store.Get(ctx, kind, key)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s %q: %w", kind, key, err)
	}
	return data, nil
}

func (g *blobGateway) put(ctx context.Context, kind, key string, data []byte) error {
	if err := g.store.Put(ctx, kind, key, data); err != nil {
		return fmt.Errorf("failed to write %s %q: %w", kind, key, err)
	}
	return nil
}
