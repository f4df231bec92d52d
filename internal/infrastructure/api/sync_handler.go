package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"archie-shopify-sync/internal/domain"
	"archie-shopify-sync/internal/infrastructure/pubsub"
)

// SyncService is the orchestrator surface the handlers drive
type SyncService interface {
	Trigger(ctx context.Context, shop string, entity domain.EntityType, daysBack int) (*domain.TriggerAck, error)
	TriggerFull(ctx context.Context, shop string) (*domain.TriggerAck, error)
	Cancel(shop string, entity domain.EntityType) bool
	GetStatus(ctx context.Context, shop string) (*domain.SyncStatusSummary, error)
	ListRuns(ctx context.Context, filter domain.SyncRunFilter) ([]*domain.SyncRun, error)
}

// RunEventSource hands out live run event subscriptions
type RunEventSource interface {
	Subscribe(ctx context.Context, filter *pubsub.RunEventFilter) *pubsub.RunEventChannel
}

// SyncHandler serves the sync trigger, status and event endpoints
type SyncHandler struct {
	syncs    SyncService
	events   RunEventSource
	validate *validator.Validate
	logger   zerolog.Logger
}

// NewSyncHandler creates a new sync handler. events may be nil, in which
// case the event stream answers 404.
func NewSyncHandler(syncs SyncService, events RunEventSource, logger zerolog.Logger) *SyncHandler {
	return &SyncHandler{
		syncs:    syncs,
		events:   events,
		validate: validator.New(),
		logger:   logger,
	}
}

type daysBackParam struct {
	DaysBack int `validate:"min=1,max=3650"`
}

// TriggerFull handles POST /sync/{shop}/full
func (h *SyncHandler) TriggerFull(w http.ResponseWriter, r *http.Request) {
	shop := chi.URLParam(r, "shop")

	ack, err := h.syncs.TriggerFull(r.Context(), shop)
	if err != nil {
		h.fail(w, shop, "full", err)
		return
	}
	writeJSON(w, http.StatusAccepted, ack)
}

// TriggerEntity handles POST /sync/{shop}/{entity}
func (h *SyncHandler) TriggerEntity(w http.ResponseWriter, r *http.Request) {
	shop := chi.URLParam(r, "shop")
	entity, err := domain.ParseEntityType(chi.URLParam(r, "entity"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	daysBack := 0
	if raw := r.URL.Query().Get("days_back"); raw != "" && entity == domain.EntityOrders {
		n, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "days_back must be an integer")
			return
		}
		if err := h.validate.Struct(daysBackParam{DaysBack: n}); err != nil {
			writeError(w, http.StatusBadRequest, "days_back must be between 1 and 3650")
			return
		}
		daysBack = n
	}

	ack, err := h.syncs.Trigger(r.Context(), shop, entity, daysBack)
	if err != nil {
		h.fail(w, shop, string(entity), err)
		return
	}
	writeJSON(w, http.StatusAccepted, ack)
}

// Cancel handles POST /sync/{shop}/{entity}/cancel
func (h *SyncHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	shop := chi.URLParam(r, "shop")
	entity, err := domain.ParseEntityType(chi.URLParam(r, "entity"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if !h.syncs.Cancel(shop, entity) {
		writeError(w, http.StatusNotFound, fmt.Sprintf("no %s sync running for %s", entity, shop))
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]any{
		"shop_domain": shop,
		"entity_type": entity,
		"cancelled":   true,
	})
}

// Status handles GET /sync/{shop}/status
func (h *SyncHandler) Status(w http.ResponseWriter, r *http.Request) {
	shop := chi.URLParam(r, "shop")

	summary, err := h.syncs.GetStatus(r.Context(), shop)
	if err != nil {
		h.fail(w, shop, "status", err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

// Runs handles GET /sync/{shop}/runs?entity=&limit=
func (h *SyncHandler) Runs(w http.ResponseWriter, r *http.Request) {
	filter := domain.SyncRunFilter{ShopDomain: chi.URLParam(r, "shop")}

	if raw := r.URL.Query().Get("entity"); raw != "" {
		entity, err := domain.ParseEntityType(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		filter.EntityType = entity
	}
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		filter.Limit = n
	}

	runs, err := h.syncs.ListRuns(r.Context(), filter)
	if err != nil {
		h.fail(w, filter.ShopDomain, "runs", err)
		return
	}
	if runs == nil {
		runs = []*domain.SyncRun{}
	}
	writeJSON(w, http.StatusOK, runs)
}

// Events handles GET /sync/{shop}/events as a server-sent event stream.
// An optional entity query parameter takes a comma separated list.
func (h *SyncHandler) Events(w http.ResponseWriter, r *http.Request) {
	if h.events == nil {
		writeError(w, http.StatusNotFound, "run events are not enabled")
		return
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	filter := &pubsub.RunEventFilter{Shop: chi.URLParam(r, "shop")}
	if raw := r.URL.Query().Get("entity"); raw != "" {
		for _, part := range strings.Split(raw, ",") {
			entity, err := domain.ParseEntityType(strings.TrimSpace(part))
			if err != nil {
				writeError(w, http.StatusBadRequest, err.Error())
				return
			}
			filter.EntityTypes = append(filter.EntityTypes, entity)
		}
	}

	sub := h.events.Subscribe(r.Context(), filter)

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, ": connected\n\n")
	flusher.Flush()

	for event := range sub.Events {
		data, err := json.Marshal(event)
		if err != nil {
			h.logger.Error().Err(err).Int64("runId", event.RunID).Msg("Failed to encode run event")
			continue
		}
		if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event.Type, data); err != nil {
			return
		}
		flusher.Flush()
	}
}

func (h *SyncHandler) fail(w http.ResponseWriter, shop, what string, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error().Err(err).Str("shop", shop).Str("entityType", what).Msg("Sync request failed")
		writeError(w, status, "internal error")
		return
	}
	writeError(w, status, err.Error())
}
