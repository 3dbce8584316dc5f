// Package runner advances the processing queue one partner per cycle. Each
// Advance call is a single explicit step: it reloads persisted state, decides,
// performs at most one partner's generation, and persists the moved cursor.
// Scheduling is the caller's concern (a manual trigger or a timer loop).
package runner

import (
	"fmt"
	"log"

	"partner-calendar-backend/internal/gemini"
	"partner-calendar-backend/internal/models"
	"partner-calendar-backend/internal/store"
	"partner-calendar-backend/internal/supabase"
)

// Generator produces one calendar image per month from a partner's source
// photo.
type Generator interface {
	GenerateMonth(partnerImage []byte, month string) ([]byte, error)
}

// ImageFetcher retrieves a partner's source photo by its file reference.
type ImageFetcher interface {
	FetchImage(fileID string) ([]byte, error)
}

type Runner struct {
	queue     *store.QueueStore
	partners  *store.PartnerStore
	generator Generator
	fetcher   ImageFetcher
	realtime  *supabase.RealtimeClient
}

func New(queue *store.QueueStore, partners *store.PartnerStore, generator Generator, fetcher ImageFetcher, realtime *supabase.RealtimeClient) *Runner {
	return &Runner{
		queue:     queue,
		partners:  partners,
		generator: generator,
		fetcher:   fetcher,
		realtime:  realtime,
	}
}

// Result describes what one cycle did.
type Result struct {
	State     *models.QueueState
	Processed string
	Skipped   bool
	Completed bool
	Idle      bool
}

// Advance performs one runner cycle. The cycle that handles the last item
// also stops the queue, so a drained queue never advertises itself as
// running. A failure anywhere before the cursor bump returns with persisted
// state exactly as it was, so the operator can re-trigger the same item.
func (r *Runner) Advance() (*Result, error) {
	state, err := r.queue.Load()
	if err != nil {
		return nil, err
	}

	if state.State != models.QueueRunning {
		return &Result{State: state, Idle: true}, nil
	}

	if state.CurrentIndex >= len(state.Items) {
		state, err = r.queue.SetRunState(models.QueueStopped)
		if err != nil {
			return nil, err
		}
		if r.realtime != nil {
			r.realtime.PublishQueueEvent("queue_completed", supabase.QueueCompletedPayload(len(state.Items)))
		}
		log.Printf("Queue completed (%d items)", len(state.Items))
		return &Result{State: state, Completed: true}, nil
	}

	item := state.Items[state.CurrentIndex]
	log.Printf("Processing %s (%d/%d)", item.Partner, state.CurrentIndex+1, len(state.Items))

	if _, err := r.partners.InitPartner(item.Partner); err != nil {
		return nil, err
	}

	// Any existing draft image means the partner was already handled; resume
	// granularity is per-partner, with individual months covered by the
	// manual redo path.
	if r.partners.IsFinalized(item.Partner) || r.partners.HasDraft(item.Partner) {
		if r.realtime != nil {
			r.realtime.PublishQueueEvent("item_skipped", supabase.QueueItemSkippedPayload(item.Partner, state.CurrentIndex, len(state.Items)))
		}
		state, err = r.queue.AdvanceCursor()
		if err != nil {
			return nil, err
		}
		return r.cursorResult(state, item.Partner, true), nil
	}

	if r.realtime != nil {
		r.realtime.PublishQueueEvent("item_started", supabase.QueueItemStartedPayload(item.Partner, state.CurrentIndex, len(state.Items)))
	}

	sourceImage, err := r.fetcher.FetchImage(item.FileID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch source image for %s: %w", item.Partner, err)
	}

	for _, month := range gemini.Months {
		generated, err := r.generator.GenerateMonth(sourceImage, month)
		if err != nil {
			return nil, fmt.Errorf("failed to generate %s for %s: %w", month, item.Partner, err)
		}
		if err := r.partners.WriteDraftImage(item.Partner, month, generated); err != nil {
			return nil, err
		}
	}

	if r.realtime != nil {
		r.realtime.PublishPartnerEvent(item.Partner, "draft_ready", supabase.DraftReadyPayload(item.Partner, len(gemini.Months)))
	}

	state, err = r.queue.AdvanceCursor()
	if err != nil {
		return nil, err
	}
	return r.cursorResult(state, item.Partner, false), nil
}

// cursorResult builds the cycle report after a cursor bump, announcing
// completion when the bump drained the queue.
func (r *Runner) cursorResult(state *models.QueueState, partner string, skipped bool) *Result {
	result := &Result{State: state, Processed: partner, Skipped: skipped}
	if state.CurrentIndex >= len(state.Items) {
		result.Completed = true
		if r.realtime != nil {
			r.realtime.PublishQueueEvent("queue_completed", supabase.QueueCompletedPayload(len(state.Items)))
		}
		log.Printf("Queue completed (%d items)", len(state.Items))
	}
	return result
}
