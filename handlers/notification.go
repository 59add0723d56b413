package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"oseplatform/database"
	"oseplatform/middleware"
	"oseplatform/models"
	"oseplatform/services/csvformat"
	"oseplatform/services/notification"
	"oseplatform/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// NotificationHandler serves the series notification endpoints.
type NotificationHandler struct {
	Service notification.NotificationService
}

func NewNotificationHandler(svc notification.NotificationService) *NotificationHandler {
	return &NotificationHandler{Service: svc}
}

// respondError maps service errors onto HTTP statuses.
func respondError(c *gin.Context, action string, err error) {
	switch {
	case errors.Is(err, notification.ErrInvalidRequest):
		utils.JSONError(c, http.StatusBadRequest, "Invalid request", err.Error())
	case errors.Is(err, notification.ErrNothingToNotify):
		utils.JSONError(c, http.StatusUnprocessableEntity, "No serial matched the inventory", "")
	case errors.Is(err, database.ErrNotFound):
		utils.JSONError(c, http.StatusNotFound, "Not found", "")
	default:
		getLogger(c).Error(action+" failed", zap.Error(err))
		utils.JSONError(c, http.StatusInternalServerError, action+" failed", err.Error())
	}
}

// ValidateBulkHandler checks a batch of identifiers against the inventory.
func (h *NotificationHandler) ValidateBulkHandler(c *gin.Context) {
	var req models.BulkValidateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid request", err.Error())
		return
	}
	resp, err := h.Service.ValidateBulk(c.Request.Context(), req.Series)
	if err != nil {
		respondError(c, "Validation", err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *NotificationHandler) ConfigOptionsHandler(c *gin.Context) {
	opts, err := h.Service.ConfigOptions(c.Request.Context())
	if err != nil {
		respondError(c, "Loading options", err)
		return
	}
	c.JSON(http.StatusOK, opts)
}

// SendHandler dispatches a batch on behalf of the authenticated operator.
func (h *NotificationHandler) SendHandler(c *gin.Context) {
	op, ok := middleware.CurrentOperator(c)
	if !ok {
		utils.JSONError(c, http.StatusUnauthorized, "Operator not authenticated", "")
		return
	}

	var req models.SeriesNotificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid request", err.Error())
		return
	}

	resp, err := h.Service.Send(c.Request.Context(), op, req)
	if err != nil {
		respondError(c, "Send", err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *NotificationHandler) HistoryHandler(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(notification.DefaultHistoryLimit)))
	filter := models.HistoryFilter{
		Email:    c.Query("search_email"),
		Customer: c.Query("search_customer"),
		Location: c.Query("search_location"),
	}

	result, err := h.Service.History(c.Request.Context(), filter, page, limit)
	if err != nil {
		respondError(c, "Loading history", err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *NotificationHandler) HistoryItemHandler(c *gin.Context) {
	item, err := h.Service.HistoryItem(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, "Loading history item", err)
		return
	}
	c.JSON(http.StatusOK, item)
}

// HistoryCSVHandler serves the regenerated CSV of a past batch as a download.
func (h *NotificationHandler) HistoryCSVHandler(c *gin.Context) {
	filename, content, err := h.Service.HistoryCSV(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, "Loading history CSV", err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, csvformat.MIMEType, []byte(content))
}

func (h *NotificationHandler) SmartScanHandler(c *gin.Context) {
	res, err := h.Service.SmartScan(c.Request.Context(), c.Query("code"))
	if err != nil {
		respondError(c, "Scan", err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *NotificationHandler) searchBy(scanType, param string) gin.HandlerFunc {
	return func(c *gin.Context) {
		res, err := h.Service.SearchBy(c.Request.Context(), scanType, c.Param(param))
		if err != nil {
			respondError(c, "Search", err)
			return
		}
		c.JSON(http.StatusOK, res)
	}
}

func (h *NotificationHandler) SearchByLocationHandler() gin.HandlerFunc {
	return h.searchBy(models.ScanTypeLot, "location")
}

func (h *NotificationHandler) SearchByCartonHandler() gin.HandlerFunc {
	return h.searchBy(models.ScanTypeCarton, "id")
}

func (h *NotificationHandler) SearchByPalletHandler() gin.HandlerFunc {
	return h.searchBy(models.ScanTypePallet, "id")
}
