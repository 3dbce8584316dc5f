package models

// AddToQueueRequest selects partners for enqueueing. At most 10 partners may
// be selected in a single request; already-final or already-queued partners
// are skipped silently.
type AddToQueueRequest struct {
	Partners []string `json:"partners"`
}

type RedoMonthRequest struct {
	Month string `json:"month"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
