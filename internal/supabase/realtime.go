package supabase

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// RealtimeClient publishes queue and partner progress through the Realtime
// broadcast REST endpoint. Publishing is advisory: an operator UI that misses
// an event falls back to polling the queue and status endpoints.
type RealtimeClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func NewRealtimeClient(supabaseURL, apiKey string) *RealtimeClient {
	return &RealtimeClient{
		baseURL: strings.TrimSuffix(supabaseURL, "/"),
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

type broadcastMessage struct {
	Topic   string                 `json:"topic"`
	Event   string                 `json:"event"`
	Payload map[string]interface{} `json:"payload"`
}

type broadcastRequest struct {
	Messages []broadcastMessage `json:"messages"`
}

func (r *RealtimeClient) PublishEvent(channel string, event string, payload map[string]interface{}) error {
	body, err := json.Marshal(broadcastRequest{
		Messages: []broadcastMessage{{Topic: channel, Event: event, Payload: payload}},
	})
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	req, err := http.NewRequest("POST", r.baseURL+"/realtime/v1/api/broadcast", bytes.NewBuffer(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("apikey", r.apiKey)
	req.Header.Set("Authorization", "Bearer "+r.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("failed to publish event: status %d, body: %s", resp.StatusCode, string(respBody))
	}
	return nil
}

func (r *RealtimeClient) PublishQueueEvent(event string, payload map[string]interface{}) error {
	return r.PublishEvent("queue", event, payload)
}

func (r *RealtimeClient) PublishPartnerEvent(partner string, event string, payload map[string]interface{}) error {
	channel := fmt.Sprintf("partner:%s", partner)
	return r.PublishEvent(channel, event, payload)
}

// Event payloads
func QueueItemStartedPayload(partner string, index, total int) map[string]interface{} {
	return map[string]interface{}{
		"partner":  partner,
		"status":   "processing",
		"position": index + 1,
		"total":    total,
	}
}

func QueueItemSkippedPayload(partner string, index, total int) map[string]interface{} {
	return map[string]interface{}{
		"partner":  partner,
		"status":   "skipped",
		"position": index + 1,
		"total":    total,
	}
}

func DraftReadyPayload(partner string, monthCount int) map[string]interface{} {
	return map[string]interface{}{
		"partner":     partner,
		"status":      "draft_ready",
		"month_count": monthCount,
	}
}

func QueueCompletedPayload(total int) map[string]interface{} {
	return map[string]interface{}{
		"status": "completed",
		"total":  total,
	}
}

func MonthRedonePayload(partner, month string) map[string]interface{} {
	return map[string]interface{}{
		"partner": partner,
		"status":  "month_redone",
		"month":   month,
	}
}

func FinalizedPayload(partner string, finalizedAt time.Time, backedUp bool) map[string]interface{} {
	return map[string]interface{}{
		"partner":      partner,
		"status":       "finalized",
		"finalized_at": finalizedAt.Format(time.RFC3339),
		"backed_up":    backedUp,
	}
}
