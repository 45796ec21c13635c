// Package storage uploads rendered animations and resolves their public URLs.
package storage

import (
	"context"
	"fmt"

	"github.com/ASHISH26940/manim-chat-api/pkg/config"
)

const VideoContentType = "video/mp4"

// ObjectStore is a single bucket of publicly readable objects.
type ObjectStore interface {
	Upload(ctx context.Context, name string, data []byte, contentType string, overwrite bool) error
	PublicURL(ctx context.Context, name string) (string, error)
}

// NewFromConfig returns the backend selected by STORAGE_BACKEND.
func NewFromConfig(ctx context.Context, cfg *config.Config) (ObjectStore, error) {
	switch cfg.StorageBackend {
	case "supabase":
		return NewSupabaseStore(cfg.SupabaseURL, cfg.SupabaseKey, cfg.StorageBucket), nil
	case "gcs":
		return NewGCSStore(ctx, cfg.StorageBucket, cfg.GCSCDNDomain)
	case "local":
		return NewLocalStore(cfg.LocalStorageDir, cfg.PublicBaseURL+LocalRoutePrefix)
	default:
		return nil, fmt.Errorf("unsupported storage backend %q", cfg.StorageBackend)
	}
}
