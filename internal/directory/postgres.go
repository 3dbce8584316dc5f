package directory

import (
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"

	"partner-calendar-backend/internal/models"
)

// PostgresDirectory reads partners from the partners table. Used instead of
// the sheet feed when DATABASE_URL is configured.
type PostgresDirectory struct {
	db *sql.DB
}

func NewPostgresDirectory(connectionString string) (*PostgresDirectory, error) {
	db, err := sql.Open("postgres", connectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &PostgresDirectory{db: db}, nil
}

func (d *PostgresDirectory) Partners() ([]models.PartnerRecord, error) {
	return d.Reload()
}

func (d *PostgresDirectory) Reload() ([]models.PartnerRecord, error) {
	rows, err := d.db.Query(`
		SELECT partner_name, file_id
		FROM partners
		ORDER BY partner_name
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list partners: %w", err)
	}
	defer rows.Close()

	var records []models.PartnerRecord
	for rows.Next() {
		var record models.PartnerRecord
		if err := rows.Scan(&record.Name, &record.FileID); err != nil {
			return nil, fmt.Errorf("failed to scan partner: %w", err)
		}
		records = append(records, record)
	}

	return records, rows.Err()
}

func (d *PostgresDirectory) Close() error {
	return d.db.Close()
}
