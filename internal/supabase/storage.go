package supabase

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	storage "github.com/supabase-community/storage-go"
)

// StorageClient is the remote backup location for finalized calendars. Files
// live in one bucket under <rootFolder>/<partnerFolder>/<filename>; uploads
// are idempotent per filename (upsert by exact name).
//
// The same client covers both capabilities callers need: read-only lookup
// (PartnerExists, HydrateFinal) and read-write upload (UploadFinalFolder).
type StorageClient struct {
	client     *storage.Client
	bucket     string
	rootFolder string
}

// NewStorageClient builds on the wrapped supabase client's storage API.
func NewStorageClient(client *Client, bucket, rootFolder string) *StorageClient {
	return &StorageClient{
		client:     client.Supabase.Storage,
		bucket:     bucket,
		rootFolder: rootFolder,
	}
}

func (s *StorageClient) partnerPrefix(partnerFolder string) string {
	return fmt.Sprintf("%s/%s", s.rootFolder, partnerFolder)
}

// PartnerExists reports whether the partner already has any backed-up files.
func (s *StorageClient) PartnerExists(partnerFolder string) (bool, error) {
	files, err := s.client.ListFiles(s.bucket, s.partnerPrefix(partnerFolder), storage.FileSearchOptions{
		Limit: 1,
	})
	if err != nil {
		return false, fmt.Errorf("failed to list partner folder: %w", err)
	}
	return len(files) > 0, nil
}

// UploadFinalFolder uploads every file in the local final folder to the
// partner's remote folder, overwriting same-named files.
func (s *StorageClient) UploadFinalFolder(partnerFolder, localDir string) error {
	entries, err := os.ReadDir(localDir)
	if err != nil {
		return fmt.Errorf("failed to read final folder: %w", err)
	}

	uploaded := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		data, err := os.ReadFile(filepath.Join(localDir, entry.Name()))
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", entry.Name(), err)
		}

		storagePath := fmt.Sprintf("%s/%s", s.partnerPrefix(partnerFolder), entry.Name())
		contentType := "image/jpeg"
		upsert := true
		_, err = s.client.UploadFile(s.bucket, storagePath, bytes.NewReader(data), storage.FileOptions{
			ContentType: &contentType,
			Upsert:      &upsert,
		})
		if err != nil {
			return fmt.Errorf("failed to upload %s: %w", entry.Name(), err)
		}
		uploaded++
	}

	if uploaded == 0 {
		return fmt.Errorf("no files found in final folder for upload: %s", localDir)
	}
	return nil
}

// HydrateFinal downloads the partner's remote final set into the local final
// folder for review, skipping files that already exist locally. Returns false
// when the partner has no remote backup.
func (s *StorageClient) HydrateFinal(partnerFolder, localDir string) (bool, error) {
	files, err := s.client.ListFiles(s.bucket, s.partnerPrefix(partnerFolder), storage.FileSearchOptions{
		Limit: 1000,
	})
	if err != nil {
		return false, fmt.Errorf("failed to list partner folder: %w", err)
	}
	if len(files) == 0 {
		return false, nil
	}

	if err := os.MkdirAll(localDir, 0o755); err != nil {
		return false, fmt.Errorf("failed to create final folder: %w", err)
	}

	for _, file := range files {
		localPath := filepath.Join(localDir, file.Name)
		if _, err := os.Stat(localPath); err == nil {
			// do not overwrite local copies
			continue
		}

		data, err := s.client.DownloadFile(s.bucket, fmt.Sprintf("%s/%s", s.partnerPrefix(partnerFolder), file.Name))
		if err != nil {
			return false, fmt.Errorf("failed to download %s: %w", file.Name, err)
		}
		if err := os.WriteFile(localPath, data, 0o644); err != nil {
			return false, fmt.Errorf("failed to write %s: %w", file.Name, err)
		}
	}

	return true, nil
}
