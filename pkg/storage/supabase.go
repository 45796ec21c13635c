package storage

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"sync"

	log "github.com/sirupsen/logrus"
	storagego "github.com/supabase-community/storage-go"
)

// SupabaseStore writes to a Supabase Storage bucket with the service-role key.
type SupabaseStore struct {
	// mu serializes uploads: the client keeps file options in shared headers.
	mu     sync.Mutex
	client *storagego.Client
	bucket string
}

// NewSupabaseStore takes the project URL (https://<ref>.supabase.co); the
// storage API lives under /storage/v1.
func NewSupabaseStore(projectURL, serviceKey, bucket string) *SupabaseStore {
	endpoint := strings.TrimRight(projectURL, "/") + "/storage/v1"
	return &SupabaseStore{
		client: storagego.NewClient(endpoint, serviceKey, map[string]string{"apikey": serviceKey}),
		bucket: bucket,
	}
}

// Upload does not observe ctx; the storage client has no per-request context.
func (s *SupabaseStore) Upload(_ context.Context, name string, data []byte, contentType string, overwrite bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.client.UploadFile(s.bucket, name, bytes.NewReader(data), storagego.FileOptions{
		ContentType: &contentType,
		Upsert:      &overwrite,
	})
	if err != nil {
		log.Errorf("Supabase upload of %s/%s failed: %v", s.bucket, name, err)
		return fmt.Errorf("Storage upload failed: %w", err)
	}
	return nil
}

// PublicURL is computed locally; the bucket must be public.
func (s *SupabaseStore) PublicURL(_ context.Context, name string) (string, error) {
	resp := s.client.GetPublicUrl(s.bucket, name)
	if resp.SignedURL == "" {
		return "", fmt.Errorf("no public url for %s/%s", s.bucket, name)
	}
	return resp.SignedURL, nil
}
