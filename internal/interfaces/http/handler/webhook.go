package handler

import (
	"errors"
	"io"
	"strings"

	"github.com/gin-gonic/gin"

	fulfillmentapp "github.com/olafkfreund/tshop-sub002/internal/application/fulfillment"
	"github.com/olafkfreund/tshop-sub002/internal/domain/fulfillment"
	"github.com/olafkfreund/tshop-sub002/internal/interfaces/http/dto"
)

// SignatureHeader carries the HMAC signature of the webhook body
const SignatureHeader = "X-Provider-Signature"

// maxWebhookBody bounds how much of a webhook payload is read
const maxWebhookBody = 1 * 1024 * 1024

// WebhookHandler ingests status webhooks pushed by fulfillment providers
type WebhookHandler struct {
	BaseHandler
	webhookService *fulfillmentapp.WebhookService
}

// NewWebhookHandler creates a new WebhookHandler
func NewWebhookHandler(webhookService *fulfillmentapp.WebhookService) *WebhookHandler {
	return &WebhookHandler{webhookService: webhookService}
}

// RegisterRoutes registers webhook routes
func (h *WebhookHandler) RegisterRoutes(rg *gin.RouterGroup) {
	webhooks := rg.Group("/webhooks")
	{
		webhooks.POST("/:provider", h.Receive)
	}
}

// Receive verifies and processes one provider webhook. Replayed events and
// unknown event types are acknowledged without effect so providers stop
// retrying them.
func (h *WebhookHandler) Receive(c *gin.Context) {
	provider := fulfillment.ProviderCode(strings.ToUpper(c.Param("provider")))
	if !provider.IsValid() {
		h.Error(c, dto.GetHTTPStatus(dto.ErrCodeUnknownProvider), dto.ErrCodeUnknownProvider, "Unknown fulfillment provider")
		return
	}

	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBody))
	if err != nil {
		h.BadRequest(c, "Failed to read request body")
		return
	}

	signature := c.GetHeader(SignatureHeader)

	if err := h.webhookService.Process(c.Request.Context(), provider, body, signature); err != nil {
		switch {
		case errors.Is(err, fulfillment.ErrInvalidSignature):
			h.Unauthorized(c, dto.ErrCodeInvalidSignature, "Webhook signature verification failed")
		case errors.Is(err, fulfillment.ErrMalformedWebhook):
			h.Error(c, dto.GetHTTPStatus(dto.ErrCodeMalformedWebhook), dto.ErrCodeMalformedWebhook, "Webhook payload could not be decoded")
		default:
			h.InternalError(c, "Failed to process webhook")
		}
		return
	}

	h.Success(c, dto.WebhookAckResponse{Accepted: true})
}
