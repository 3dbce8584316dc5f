package directory

import (
	"encoding/csv"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"partner-calendar-backend/internal/models"
)

const (
	partnerNameColumn = "Partner Name"
	fileIDColumn      = "File ID"
)

// Source yields the partner directory. Records are read-only; Reload discards
// any cached copy and fetches fresh.
type Source interface {
	Partners() ([]models.PartnerRecord, error)
	Reload() ([]models.PartnerRecord, error)
}

// SheetDirectory reads partners from a published spreadsheet CSV feed and
// caches the result for the session.
type SheetDirectory struct {
	csvURL     string
	httpClient *http.Client

	mu    sync.Mutex
	cache []models.PartnerRecord
}

func NewSheetDirectory(csvURL string) *SheetDirectory {
	return &SheetDirectory{
		csvURL: csvURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

func (d *SheetDirectory) Partners() ([]models.PartnerRecord, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.cache != nil {
		return d.cache, nil
	}
	records, err := d.fetch()
	if err != nil {
		return nil, err
	}
	d.cache = records
	return records, nil
}

func (d *SheetDirectory) Reload() ([]models.PartnerRecord, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	records, err := d.fetch()
	if err != nil {
		return nil, err
	}
	d.cache = records
	return records, nil
}

func (d *SheetDirectory) fetch() ([]models.PartnerRecord, error) {
	resp, err := d.httpClient.Get(d.csvURL)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch partner sheet: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("failed to fetch partner sheet: status %d, body: %s", resp.StatusCode, string(body))
	}

	return parseCSV(resp.Body)
}

func parseCSV(r io.Reader) ([]models.PartnerRecord, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet header: %w", err)
	}

	nameIdx, fileIdx := -1, -1
	for i, col := range header {
		switch col {
		case partnerNameColumn:
			nameIdx = i
		case fileIDColumn:
			fileIdx = i
		}
	}
	if nameIdx < 0 || fileIdx < 0 {
		return nil, fmt.Errorf("sheet is missing required columns %q and %q", partnerNameColumn, fileIDColumn)
	}

	var records []models.PartnerRecord
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read sheet row: %w", err)
		}
		if nameIdx >= len(row) || fileIdx >= len(row) || row[nameIdx] == "" {
			continue
		}
		records = append(records, models.PartnerRecord{
			Name:   row[nameIdx],
			FileID: row[fileIdx],
		})
	}

	return records, nil
}
