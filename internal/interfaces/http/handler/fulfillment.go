package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	fulfillmentapp "github.com/olafkfreund/tshop-sub002/internal/application/fulfillment"
	"github.com/olafkfreund/tshop-sub002/internal/interfaces/http/dto"
)

// FulfillmentHandler handles fulfillment-related API endpoints
type FulfillmentHandler struct {
	BaseHandler
	quoteService      *fulfillmentapp.QuoteService
	submissionService *fulfillmentapp.SubmissionService
	recordService     *fulfillmentapp.RecordService
	syncService       *fulfillmentapp.SyncService
	defaultStrategy   fulfillmentapp.Strategy
}

// NewFulfillmentHandler creates a new FulfillmentHandler
func NewFulfillmentHandler(
	quoteService *fulfillmentapp.QuoteService,
	submissionService *fulfillmentapp.SubmissionService,
	recordService *fulfillmentapp.RecordService,
	syncService *fulfillmentapp.SyncService,
	defaultStrategy fulfillmentapp.Strategy,
) *FulfillmentHandler {
	if !defaultStrategy.IsValid() {
		defaultStrategy = fulfillmentapp.StrategyCost
	}
	return &FulfillmentHandler{
		quoteService:      quoteService,
		submissionService: submissionService,
		recordService:     recordService,
		syncService:       syncService,
		defaultStrategy:   defaultStrategy,
	}
}

// RegisterRoutes registers fulfillment routes
func (h *FulfillmentHandler) RegisterRoutes(rg *gin.RouterGroup) {
	fulfillment := rg.Group("/fulfillment")
	{
		fulfillment.POST("/orders/:orderID/quotes", h.QuoteOrder)
		fulfillment.POST("/orders/:orderID/submissions", h.SubmitOrder)
		fulfillment.GET("/orders/:orderID", h.GetRecord)
		fulfillment.POST("/sync", h.TriggerSync)
	}
}

// QuoteOrder fans an order out to every registered provider and returns all
// quotes, including per-provider failures
func (h *FulfillmentHandler) QuoteOrder(c *gin.Context) {
	orderID, err := uuid.Parse(c.Param("orderID"))
	if err != nil {
		h.BadRequest(c, "Invalid order ID")
		return
	}

	summary, err := h.quoteService.QuoteOrder(c.Request.Context(), orderID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	results := make([]dto.QuoteResultResponse, 0, len(summary.Results))
	for _, r := range summary.Results {
		result := dto.QuoteResultResponse{Provider: r.Provider.String()}
		if r.Quote != nil {
			result.Quote = dto.FromQuote(r.Quote)
		}
		if r.Err != nil {
			result.Error = r.Err.Error()
		}
		results = append(results, result)
	}

	h.Success(c, dto.QuoteSummaryResponse{
		OrderID: summary.OrderID.String(),
		Results: results,
	})
}

// SubmitOrder routes an order to the best provider under the requested
// strategy. Provider-side failures are reported in the body, not as an
// HTTP error.
func (h *FulfillmentHandler) SubmitOrder(c *gin.Context) {
	orderID, err := uuid.Parse(c.Param("orderID"))
	if err != nil {
		h.BadRequest(c, "Invalid order ID")
		return
	}

	var req dto.SubmitOrderRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			h.Error(c, http.StatusBadRequest, dto.ErrCodeUnknownStrategy, "Strategy must be one of cost, speed, quality")
			return
		}
	}

	strategy := h.defaultStrategy
	if req.Strategy != "" {
		strategy = fulfillmentapp.Strategy(req.Strategy)
	}

	result := h.submissionService.SubmitOrder(c.Request.Context(), orderID, strategy)

	response := dto.SubmissionResponse{
		Success:           result.Success,
		Provider:          result.Provider.String(),
		ExternalOrderID:   result.ExternalOrderID,
		EstimatedDelivery: result.EstimatedDelivery,
		Error:             result.Error,
	}
	if result.Success {
		response.TotalCost = result.TotalCost.StringFixed(2)
	}

	h.Success(c, response)
}

// GetRecord returns the fulfillment record for an order
func (h *FulfillmentHandler) GetRecord(c *gin.Context) {
	orderID, err := uuid.Parse(c.Param("orderID"))
	if err != nil {
		h.BadRequest(c, "Invalid order ID")
		return
	}

	record, err := h.recordService.GetByOrderID(c.Request.Context(), orderID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, dto.FromRecord(record))
}

// TriggerSync runs one status sweep over open fulfillment records
func (h *FulfillmentHandler) TriggerSync(c *gin.Context) {
	report, err := h.syncService.SyncPendingOrders(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, dto.SyncReportResponse{
		Checked:  report.Checked,
		Updated:  report.Updated,
		Failed:   report.Failed,
		Duration: report.Duration.String(),
	})
}
