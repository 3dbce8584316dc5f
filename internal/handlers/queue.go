package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"partner-calendar-backend/internal/directory"
	"partner-calendar-backend/internal/models"
	"partner-calendar-backend/internal/runner"
	"partner-calendar-backend/internal/store"
)

// maxSelection caps how many partners one add-action may enqueue.
const maxSelection = 10

type QueueHandler struct {
	queueStore   *store.QueueStore
	partnerStore *store.PartnerStore
	source       directory.Source
	runner       *runner.Runner
}

func NewQueueHandler(queueStore *store.QueueStore, partnerStore *store.PartnerStore, source directory.Source, queueRunner *runner.Runner) *QueueHandler {
	return &QueueHandler{
		queueStore:   queueStore,
		partnerStore: partnerStore,
		source:       source,
		runner:       queueRunner,
	}
}

func (h *QueueHandler) GetQueue(c *gin.Context) {
	state, err := h.queueStore.Load()
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "failed to load queue",
			Message: err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, queueResponse(state))
}

func (h *QueueHandler) AddItems(c *gin.Context) {
	var req models.AddToQueueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid request body", Message: err.Error()})
		return
	}
	if len(req.Partners) == 0 {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "no partners selected"})
		return
	}
	if len(req.Partners) > maxSelection {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "too many partners selected",
			Message: "select at most 10 partners per request",
		})
		return
	}

	records, err := h.source.Partners()
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "failed to load partner directory",
			Message: err.Error(),
		})
		return
	}
	fileIDs := make(map[string]string, len(records))
	for _, record := range records {
		fileIDs[record.Name] = record.FileID
	}

	items := make([]models.QueueItem, 0, len(req.Partners))
	for _, partner := range req.Partners {
		fileID, ok := fileIDs[partner]
		if !ok {
			c.JSON(http.StatusBadRequest, models.ErrorResponse{
				Error:   "unknown partner",
				Message: partner,
			})
			return
		}
		items = append(items, models.QueueItem{Partner: partner, FileID: fileID})
	}

	_, added, skipped, err := h.queueStore.Enqueue(items, h.partnerStore.IsFinalized)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "failed to enqueue partners",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, models.EnqueueResponse{Added: added, Skipped: skipped})
}

func (h *QueueHandler) Start(c *gin.Context) {
	h.setRunState(c, models.QueueRunning)
}

func (h *QueueHandler) Pause(c *gin.Context) {
	h.setRunState(c, models.QueuePaused)
}

func (h *QueueHandler) Stop(c *gin.Context) {
	state, err := h.queueStore.Stop()
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "failed to stop queue",
			Message: err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, queueResponse(state))
}

func (h *QueueHandler) Clear(c *gin.Context) {
	state, err := h.queueStore.Clear()
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "failed to clear queue",
			Message: err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, queueResponse(state))
}

// Advance runs one synchronous runner cycle: at most one partner's full
// month set is generated before the response returns.
func (h *QueueHandler) Advance(c *gin.Context) {
	result, err := h.runner.Advance()
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "queue cycle failed",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, models.AdvanceResponse{
		State:        result.State.State,
		CurrentIndex: result.State.CurrentIndex,
		Processed:    result.Processed,
		Skipped:      result.Skipped,
		Completed:    result.Completed,
	})
}

func (h *QueueHandler) setRunState(c *gin.Context, runState string) {
	state, err := h.queueStore.SetRunState(runState)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "failed to update queue state",
			Message: err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, queueResponse(state))
}

func queueResponse(state *models.QueueState) models.QueueResponse {
	return models.QueueResponse{
		State:        state.State,
		CurrentIndex: state.CurrentIndex,
		Items:        state.Items,
	}
}
