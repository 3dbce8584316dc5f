package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"partner-calendar-backend/internal/directory"
	"partner-calendar-backend/internal/models"
	"partner-calendar-backend/internal/store"
	"partner-calendar-backend/internal/supabase"
)

type PartnersHandler struct {
	source        directory.Source
	partnerStore  *store.PartnerStore
	storageClient *supabase.StorageClient
}

func NewPartnersHandler(source directory.Source, partnerStore *store.PartnerStore, storageClient *supabase.StorageClient) *PartnersHandler {
	return &PartnersHandler{
		source:        source,
		partnerStore:  partnerStore,
		storageClient: storageClient,
	}
}

func (h *PartnersHandler) ListPartners(c *gin.Context) {
	records, err := h.source.Partners()
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "failed to load partner directory",
			Message: err.Error(),
		})
		return
	}

	finalized, err := h.partnerStore.ListFinalized()
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "failed to scan finalized partners",
			Message: err.Error(),
		})
		return
	}

	summaries := make([]models.PartnerSummary, len(records))
	for i, record := range records {
		summaries[i] = models.PartnerSummary{
			Name:      record.Name,
			FileID:    record.FileID,
			Finalized: finalized[record.Name],
		}
	}

	c.JSON(http.StatusOK, models.DirectoryResponse{Partners: summaries})
}

func (h *PartnersHandler) ReloadPartners(c *gin.Context) {
	if _, err := h.source.Reload(); err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "failed to reload partner directory",
			Message: err.Error(),
		})
		return
	}
	h.ListPartners(c)
}

func (h *PartnersHandler) GetStatus(c *gin.Context) {
	partner := c.Param("partner")
	status := h.partnerStore.LoadStatus(partner)

	draftFiles, err := h.partnerStore.DraftFiles(partner)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "failed to list draft images",
			Message: err.Error(),
		})
		return
	}
	finalFiles, err := h.partnerStore.FinalFiles(partner)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "failed to list final images",
			Message: err.Error(),
		})
		return
	}

	// Remote lookup is advisory; a failed check shows as no backup.
	remote := false
	if h.storageClient != nil {
		remote, _ = h.storageClient.PartnerExists(store.SanitizeName(partner))
	}

	c.JSON(http.StatusOK, models.PartnerStatusResponse{
		Partner:      status.Partner,
		State:        status.State,
		FinalizedAt:  status.FinalizedAt,
		DraftMonths:  monthNames(draftFiles),
		FinalMonths:  monthNames(finalFiles),
		RemoteBackup: remote,
	})
}

func monthNames(files []string) []string {
	months := make([]string, 0, len(files))
	for _, name := range files {
		months = append(months, strings.TrimSuffix(name, ".jpg"))
	}
	return months
}
