package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"

	"partner-calendar-backend/internal/models"
)

const statusFileName = "status.json"

// PartnerStore owns the per-partner on-disk layout under the output root:
//
//	<root>/<sanitized>/draft/   regenerable month images
//	<root>/<sanitized>/final/   immutable copies after finalization
//	<root>/<sanitized>/status.json
type PartnerStore struct {
	root string
	mu   sync.Mutex
}

func NewPartnerStore(outputRoot string) (*PartnerStore, error) {
	if err := os.MkdirAll(outputRoot, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output root: %w", err)
	}
	return &PartnerStore{root: outputRoot}, nil
}

// SanitizeName makes a filesystem-safe folder name from a partner name.
func SanitizeName(name string) string {
	return strings.ReplaceAll(strings.TrimSpace(name), " ", "_")
}

func (s *PartnerStore) Root() string {
	return s.root
}

func (s *PartnerStore) partnerDir(partner string) string {
	return filepath.Join(s.root, SanitizeName(partner))
}

func (s *PartnerStore) DraftDir(partner string) string {
	return filepath.Join(s.partnerDir(partner), "draft")
}

func (s *PartnerStore) FinalDir(partner string) string {
	return filepath.Join(s.partnerDir(partner), "final")
}

func (s *PartnerStore) statusPath(partner string) string {
	return filepath.Join(s.partnerDir(partner), statusFileName)
}

// InitPartner ensures the draft folder and a status record exist, creating
// the status as draft on first touch.
func (s *PartnerStore) InitPartner(partner string) (*models.PartnerStatus, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(s.DraftDir(partner), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create draft folder: %w", err)
	}

	if _, err := os.Stat(s.statusPath(partner)); err == nil {
		return s.loadStatus(partner), nil
	}

	status := models.NewPartnerStatus(partner)
	if err := s.saveStatus(status); err != nil {
		return nil, err
	}
	return status, nil
}

// LoadStatus returns the partner's status record. Missing or malformed
// records are treated as absent and default to draft.
func (s *PartnerStore) LoadStatus(partner string) *models.PartnerStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadStatus(partner)
}

func (s *PartnerStore) loadStatus(partner string) *models.PartnerStatus {
	data, err := os.ReadFile(s.statusPath(partner))
	if err != nil {
		return models.NewPartnerStatus(partner)
	}
	var status models.PartnerStatus
	if err := json.Unmarshal(data, &status); err != nil {
		return models.NewPartnerStatus(partner)
	}
	if status.Partner == "" {
		status.Partner = partner
	}
	return &status
}

func (s *PartnerStore) SaveStatus(status *models.PartnerStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveStatus(status)
}

func (s *PartnerStore) saveStatus(status *models.PartnerStatus) error {
	if err := os.MkdirAll(s.partnerDir(status.Partner), 0o755); err != nil {
		return fmt.Errorf("failed to create partner folder: %w", err)
	}

	data, err := json.MarshalIndent(status, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal status: %w", err)
	}

	path := s.statusPath(status.Partner)
	tmpPath := fmt.Sprintf("%s.tmp-%s", path, uuid.NewString())
	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		return fmt.Errorf("failed to write status: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to replace status file: %w", err)
	}
	return nil
}

func (s *PartnerStore) IsFinalized(partner string) bool {
	return s.LoadStatus(partner).State == models.StateFinal
}

// HasDraft reports whether at least one draft image exists. The runner treats
// any draft image as "already handled"; regeneration of individual months
// goes through the manual redo path instead.
func (s *PartnerStore) HasDraft(partner string) bool {
	entries, err := os.ReadDir(s.DraftDir(partner))
	if err != nil {
		return false
	}
	return len(entries) > 0
}

// DraftFiles lists file names in the draft folder.
func (s *PartnerStore) DraftFiles(partner string) ([]string, error) {
	return listFiles(s.DraftDir(partner))
}

// FinalFiles lists file names in the final folder.
func (s *PartnerStore) FinalFiles(partner string) ([]string, error) {
	return listFiles(s.FinalDir(partner))
}

func listFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to list %s: %w", dir, err)
	}
	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		names = append(names, entry.Name())
	}
	return names, nil
}

// ListFinalized scans the output root for partners whose status is final.
func (s *PartnerStore) ListFinalized() (map[string]bool, error) {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		return nil, fmt.Errorf("failed to scan output root: %w", err)
	}

	finalized := make(map[string]bool)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		data, err := os.ReadFile(filepath.Join(s.root, entry.Name(), statusFileName))
		if err != nil {
			continue
		}
		var status models.PartnerStatus
		if err := json.Unmarshal(data, &status); err != nil {
			continue
		}
		if status.State == models.StateFinal {
			finalized[status.Partner] = true
		}
	}
	return finalized, nil
}

// WriteDraftImage re-encodes a generated image as JPEG quality 95 and writes
// it to the draft folder as <Month>.jpg.
func (s *PartnerStore) WriteDraftImage(partner, month string, data []byte) error {
	if err := os.MkdirAll(s.DraftDir(partner), 0o755); err != nil {
		return fmt.Errorf("failed to create draft folder: %w", err)
	}
	return writeJPEG(filepath.Join(s.DraftDir(partner), month+".jpg"), data)
}

// CopyDraftToFinal byte-copies every draft file into the final folder,
// overwriting by name. Nothing is regenerated.
func (s *PartnerStore) CopyDraftToFinal(partner string) error {
	names, err := s.DraftFiles(partner)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(s.FinalDir(partner), 0o755); err != nil {
		return fmt.Errorf("failed to create final folder: %w", err)
	}
	for _, name := range names {
		data, err := os.ReadFile(filepath.Join(s.DraftDir(partner), name))
		if err != nil {
			return fmt.Errorf("failed to read draft file %s: %w", name, err)
		}
		if err := os.WriteFile(filepath.Join(s.FinalDir(partner), name), data, 0o644); err != nil {
			return fmt.Errorf("failed to copy %s to final: %w", name, err)
		}
	}
	return nil
}
