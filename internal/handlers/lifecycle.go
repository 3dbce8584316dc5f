package handlers

import (
	"errors"
	"net/http"
	"path/filepath"

	"github.com/gin-gonic/gin"

	"partner-calendar-backend/internal/lifecycle"
	"partner-calendar-backend/internal/models"
)

type LifecycleHandler struct {
	controller *lifecycle.Controller
}

func NewLifecycleHandler(controller *lifecycle.Controller) *LifecycleHandler {
	return &LifecycleHandler{
		controller: controller,
	}
}

func (h *LifecycleHandler) RedoMonth(c *gin.Context) {
	partner := c.Param("partner")

	var req models.RedoMonthRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid request body", Message: err.Error()})
		return
	}

	if err := h.controller.RedoMonth(partner, req.Month); err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, lifecycle.ErrUnknownMonth) || errors.Is(err, lifecycle.ErrNotDraft) {
			status = http.StatusBadRequest
		}
		c.JSON(status, models.ErrorResponse{
			Error:   "failed to redo month",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"partner": partner, "month": req.Month, "status": "redone"})
}

func (h *LifecycleHandler) Finalize(c *gin.Context) {
	partner := c.Param("partner")

	result, err := h.controller.Finalize(partner)
	if err != nil {
		httpStatus := http.StatusInternalServerError
		if errors.Is(err, lifecycle.ErrNotDraft) || errors.Is(err, lifecycle.ErrNoDraft) {
			httpStatus = http.StatusBadRequest
		}
		c.JSON(httpStatus, models.ErrorResponse{
			Error:   "failed to finalize partner",
			Message: err.Error(),
		})
		return
	}

	resp := models.FinalizeResponse{
		Partner:     result.Status.Partner,
		State:       result.Status.State,
		FinalizedAt: result.Status.FinalizedAt,
	}
	if result.BackupErr != nil {
		// Finalization stands; the operator retries the backup out of band.
		resp.BackupError = result.BackupErr.Error()
	}
	c.JSON(http.StatusOK, resp)
}

func (h *LifecycleHandler) Package(c *gin.Context) {
	partner := c.Param("partner")

	zipPath, err := h.controller.Package(partner)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, lifecycle.ErrNotFinal) {
			status = http.StatusBadRequest
		}
		c.JSON(status, models.ErrorResponse{
			Error:   "failed to package calendar",
			Message: err.Error(),
		})
		return
	}

	c.FileAttachment(zipPath, filepath.Base(zipPath))
}

func (h *LifecycleHandler) Hydrate(c *gin.Context) {
	partner := c.Param("partner")

	found, err := h.controller.Hydrate(partner)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "failed to hydrate from backup",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"partner": partner, "hydrated": found})
}
