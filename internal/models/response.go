package models

import "time"

type HealthResponse struct {
	Status string `json:"status"`
}

type PartnerSummary struct {
	Name      string `json:"name"`
	FileID    string `json:"file_id"`
	Finalized bool   `json:"finalized"`
}

type DirectoryResponse struct {
	Partners []PartnerSummary `json:"partners"`
}

type PartnerStatusResponse struct {
	Partner      string     `json:"partner"`
	State        string     `json:"state"`
	FinalizedAt  *time.Time `json:"finalized_at,omitempty"`
	DraftMonths  []string   `json:"draft_months"`
	FinalMonths  []string   `json:"final_months"`
	RemoteBackup bool       `json:"remote_backup"`
}

type QueueResponse struct {
	State        string      `json:"state"`
	CurrentIndex int         `json:"current_index"`
	Items        []QueueItem `json:"items"`
}

type EnqueueResponse struct {
	Added   []string `json:"added"`
	Skipped []string `json:"skipped,omitempty"`
}

type AdvanceResponse struct {
	State        string `json:"state"`
	CurrentIndex int    `json:"current_index"`
	Processed    string `json:"processed,omitempty"`
	Skipped      bool   `json:"skipped,omitempty"`
	Completed    bool   `json:"completed,omitempty"`
}

type FinalizeResponse struct {
	Partner     string     `json:"partner"`
	State       string     `json:"state"`
	FinalizedAt *time.Time `json:"finalized_at"`
	BackupError string     `json:"backup_error,omitempty"`
}
