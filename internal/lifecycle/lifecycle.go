// Package lifecycle implements the per-partner draft -> final state machine:
// redo a single month while drafting, promote the draft set to an immutable
// final set with a best-effort remote backup, and package the final set for
// download.
package lifecycle

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"partner-calendar-backend/internal/directory"
	"partner-calendar-backend/internal/gemini"
	"partner-calendar-backend/internal/models"
	"partner-calendar-backend/internal/runner"
	"partner-calendar-backend/internal/store"
	"partner-calendar-backend/internal/supabase"
)

var (
	ErrNotDraft     = errors.New("partner is not in draft state")
	ErrNotFinal     = errors.New("partner is not finalized")
	ErrNoDraft      = errors.New("partner has no draft images")
	ErrUnknownMonth = errors.New("unknown month")
)

// RemoteStorage is the remote backup location for finalized calendars.
type RemoteStorage interface {
	UploadFinalFolder(partnerFolder, localDir string) error
	HydrateFinal(partnerFolder, localDir string) (bool, error)
}

type Controller struct {
	partners  *store.PartnerStore
	source    directory.Source
	generator runner.Generator
	fetcher   runner.ImageFetcher
	remote    RemoteStorage
	realtime  *supabase.RealtimeClient
}

func NewController(partners *store.PartnerStore, source directory.Source, generator runner.Generator, fetcher runner.ImageFetcher, remote RemoteStorage, realtime *supabase.RealtimeClient) *Controller {
	return &Controller{
		partners:  partners,
		source:    source,
		generator: generator,
		fetcher:   fetcher,
		remote:    remote,
		realtime:  realtime,
	}
}

// RedoMonth regenerates exactly one month's draft image. Only valid while
// the partner is still drafting; the queue is not touched.
func (c *Controller) RedoMonth(partner, month string) error {
	if !gemini.IsMonth(month) {
		return fmt.Errorf("%w: %q", ErrUnknownMonth, month)
	}

	status := c.partners.LoadStatus(partner)
	if status.State != models.StateDraft {
		return fmt.Errorf("%w: cannot redo %s for %s", ErrNotDraft, month, partner)
	}

	fileID, err := c.lookupFileID(partner)
	if err != nil {
		return err
	}

	sourceImage, err := c.fetcher.FetchImage(fileID)
	if err != nil {
		return fmt.Errorf("failed to fetch source image for %s: %w", partner, err)
	}

	generated, err := c.generator.GenerateMonth(sourceImage, month)
	if err != nil {
		return fmt.Errorf("failed to regenerate %s for %s: %w", month, partner, err)
	}

	if err := c.partners.WriteDraftImage(partner, month, generated); err != nil {
		return err
	}

	if c.realtime != nil {
		c.realtime.PublishPartnerEvent(partner, "month_redone", supabase.MonthRedonePayload(partner, month))
	}
	return nil
}

// FinalizeResult reports a committed finalization. BackupErr carries a
// failed remote backup; the local final state stands regardless.
type FinalizeResult struct {
	Status    *models.PartnerStatus
	BackupErr error
}

// Finalize promotes the draft set to final: byte-copies every draft file,
// stamps the status record, then attempts the remote backup. A backup
// failure is reported in the result and never rolls the partner back to
// draft.
func (c *Controller) Finalize(partner string) (*FinalizeResult, error) {
	status := c.partners.LoadStatus(partner)
	if status.State != models.StateDraft {
		return nil, fmt.Errorf("%w: %s", ErrNotDraft, partner)
	}
	if !c.partners.HasDraft(partner) {
		return nil, fmt.Errorf("%w: %s", ErrNoDraft, partner)
	}

	if err := c.partners.CopyDraftToFinal(partner); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	status.State = models.StateFinal
	status.FinalizedAt = &now
	if err := c.partners.SaveStatus(status); err != nil {
		return nil, err
	}

	// Finalization is authoritative locally from this point on.
	backupErr := c.remote.UploadFinalFolder(store.SanitizeName(partner), c.partners.FinalDir(partner))

	if c.realtime != nil {
		c.realtime.PublishPartnerEvent(partner, "finalized", supabase.FinalizedPayload(partner, now, backupErr == nil))
	}
	return &FinalizeResult{Status: status, BackupErr: backupErr}, nil
}

// Package builds a fresh flat zip of the partner's final set and returns its
// path. The archive is recreated on every call.
func (c *Controller) Package(partner string) (string, error) {
	status := c.partners.LoadStatus(partner)
	if status.State != models.StateFinal {
		return "", fmt.Errorf("%w: %s", ErrNotFinal, partner)
	}

	names, err := c.partners.FinalFiles(partner)
	if err != nil {
		return "", err
	}

	zipPath := filepath.Join(c.partners.Root(), store.SanitizeName(partner)+"_calendar.zip")
	out, err := os.Create(zipPath)
	if err != nil {
		return "", fmt.Errorf("failed to create archive: %w", err)
	}
	defer out.Close()

	w := zip.NewWriter(out)
	for _, name := range names {
		entry, err := w.Create(name)
		if err != nil {
			w.Close()
			return "", fmt.Errorf("failed to add %s to archive: %w", name, err)
		}
		f, err := os.Open(filepath.Join(c.partners.FinalDir(partner), name))
		if err != nil {
			w.Close()
			return "", fmt.Errorf("failed to read %s: %w", name, err)
		}
		if _, err := io.Copy(entry, f); err != nil {
			f.Close()
			w.Close()
			return "", fmt.Errorf("failed to write %s to archive: %w", name, err)
		}
		f.Close()
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("failed to finish archive: %w", err)
	}

	return zipPath, nil
}

// Hydrate pulls the partner's backed-up final set into the local final
// folder, leaving existing local files untouched. Returns false when no
// remote backup exists.
func (c *Controller) Hydrate(partner string) (bool, error) {
	return c.remote.HydrateFinal(store.SanitizeName(partner), c.partners.FinalDir(partner))
}

func (c *Controller) lookupFileID(partner string) (string, error) {
	records, err := c.source.Partners()
	if err != nil {
		return "", err
	}
	for _, record := range records {
		if record.Name == partner {
			return record.FileID, nil
		}
	}
	return "", fmt.Errorf("partner %q not found in directory", partner)
}
