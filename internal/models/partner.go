package models

import "time"

const (
	StateDraft = "draft"
	StateFinal = "final"
)

// PartnerRecord is one row of the partner directory. Records are read-only
// and reloaded wholesale; the FileID is an opaque reference to the partner's
// source photo.
type PartnerRecord struct {
	Name   string `json:"name"`
	FileID string `json:"file_id"`
}

// PartnerStatus tracks a partner's lifecycle. The only transition is
// draft -> final; final is terminal.
type PartnerStatus struct {
	Partner     string     `json:"partner"`
	State       string     `json:"state"`
	FinalizedAt *time.Time `json:"finalized_at"`
}

func NewPartnerStatus(partner string) *PartnerStatus {
	return &PartnerStatus{
		Partner:     partner,
		State:       StateDraft,
		FinalizedAt: nil,
	}
}
