package plans

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"qaplan-backend/internal/queue"
	"qaplan-backend/internal/shared/server/middleware"
	"qaplan-backend/internal/shared/server/respond"
	"qaplan-backend/internal/shared/telemetry"
	"qaplan-backend/internal/ticket"
)

// Handler wires HTTP handlers to the service.
type Handler struct {
	Svc *Service
	// Queue, when set, defers webhook-triggered runs to the worker instead of
	// running them inline.
	Queue queue.Client
	// WebhookSecret, when set, is required on webhook deliveries.
	WebhookSecret string
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches plan routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/plans", h.create)
	rg.GET("/plans/:issueKey/runs", h.listRuns)
	rg.POST("/webhooks/jira", h.webhook)
}

type createRequest struct {
	IssueKey string `json:"issueKey"`
}

func (h *Handler) create(c *gin.Context) {
	var req createRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}
	if req.IssueKey == "" {
		respond.Error(c, http.StatusBadRequest, "validation_error", "issueKey is required", nil)
		return
	}

	result, err := h.Svc.CreatePlan(c.Request.Context(), req.IssueKey)
	if err != nil {
		switch {
		case errors.Is(err, ErrMissingIssueKey):
			respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
		case errors.Is(err, ErrInProgress):
			respond.Error(c, http.StatusConflict, "in_progress", err.Error(), nil)
		case errors.Is(err, ticket.ErrUnauthorized):
			respond.Error(c, http.StatusBadGateway, "tracker_auth", "ticket tracker rejected our credentials", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to create plan", err.Error())
		}
		return
	}

	respond.JSON(c, http.StatusCreated, result)
}

func (h *Handler) listRuns(c *gin.Context) {
	issueKey := c.Param("issueKey")

	limit := 20
	if v := c.Query("limit"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			limit = parsed
		}
	}

	items, err := h.Svc.RunsByIssue(c.Request.Context(), issueKey, limit)
	if err != nil {
		switch {
		case errors.Is(err, ErrMissingIssueKey):
			respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to list runs", nil)
		}
		return
	}

	respond.JSON(c, http.StatusOK, gin.H{"runs": items})
}

func (h *Handler) webhook(c *gin.Context) {
	if h.WebhookSecret != "" && c.GetHeader("X-Webhook-Secret") != h.WebhookSecret {
		respond.Error(c, http.StatusUnauthorized, "unauthorized", "invalid webhook secret", nil)
		return
	}

	var payload webhookPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid webhook payload", nil)
		return
	}

	if !payload.shouldTrigger() {
		respond.JSON(c, http.StatusOK, gin.H{"triggered": false})
		return
	}
	if payload.Issue.Key == "" {
		respond.Error(c, http.StatusBadRequest, "validation_error", "issue key missing from payload", nil)
		return
	}

	if h.Queue != nil {
		msg := queue.Message{
			IssueKey:   payload.Issue.Key,
			RequestID:  middleware.RequestIDFromContext(c),
			EnqueuedAt: nowRFC3339(),
			Version:    1,
		}
		if err := h.Queue.Send(c.Request.Context(), msg); err != nil {
			telemetry.Error("plans.enqueue_failed", map[string]any{
				"issue_key": payload.Issue.Key,
				"error":     err.Error(),
			})
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to enqueue plan creation", nil)
			return
		}
		respond.JSON(c, http.StatusAccepted, gin.H{"triggered": true, "queued": true, "issueKey": payload.Issue.Key})
		return
	}

	result, err := h.Svc.CreatePlan(c.Request.Context(), payload.Issue.Key)
	if err != nil {
		switch {
		case errors.Is(err, ErrInProgress):
			// Another delivery is already handling this ticket.
			respond.JSON(c, http.StatusOK, gin.H{"triggered": false, "reason": "in_progress"})
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to create plan", err.Error())
		}
		return
	}

	respond.JSON(c, http.StatusOK, gin.H{"triggered": true, "result": result})
}
