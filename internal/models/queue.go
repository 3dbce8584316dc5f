package models

const (
	QueueStopped = "stopped"
	QueueRunning = "running"
	QueuePaused  = "paused"
)

// QueueItem is one partner's pending generation job. Status is informational
// and stays "pending"; items are only ever removed by clearing the queue.
type QueueItem struct {
	Partner string `json:"partner"`
	FileID  string `json:"file_id"`
	Status  string `json:"status"`
}

// QueueState is the shared processing queue. CurrentIndex only increments or
// resets to zero and must be checked against len(Items) before dereferencing.
type QueueState struct {
	State        string      `json:"state"`
	CurrentIndex int         `json:"current_index"`
	Items        []QueueItem `json:"items"`
}

// NewQueueState returns the empty, stopped queue used when no persisted
// state exists.
func NewQueueState() *QueueState {
	return &QueueState{
		State:        QueueStopped,
		CurrentIndex: 0,
		Items:        []QueueItem{},
	}
}

// Contains reports whether a partner is already queued, matching the exact
// name case-sensitively.
func (q *QueueState) Contains(partner string) bool {
	for _, item := range q.Items {
		if item.Partner == partner {
			return true
		}
	}
	return false
}
