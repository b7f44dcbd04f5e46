package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/earthshout/shout-indexer/internal/indexer"
	"github.com/earthshout/shout-indexer/internal/logger"
	"github.com/earthshout/shout-indexer/internal/store"
	"github.com/ethereum/go-ethereum/common"
)

const (
	maxLimit = 200
)

// EventStore is the storage surface the API reads from.
type EventStore interface {
	ListEvents(ctx context.Context, filter store.ListFilter) ([]*store.ShoutEvent, error)
	GetEvent(ctx context.Context, id int64) (*store.ShoutEvent, error)
	IncrementViews(ctx context.Context, id int64) error
	Stats(ctx context.Context) (*store.Stats, error)
}

// StateReporter exposes the engine lifecycle state.
type StateReporter interface {
	State() indexer.State
}

// defaultTokenPrices is a static price table. A live price feed is a
// deliberate non-feature: the frontend treats these as display hints only.
var defaultTokenPrices = []TokenPrice{
	{Token: "0x0000000000000000000000000000000000000000", Symbol: "ETH", PriceUSD: 0},
}

// Handler handles HTTP requests for the API.
type Handler struct {
	store  EventStore
	engine StateReporter
	log    *logger.Logger
}

// NewHandler creates a new API handler.
func NewHandler(st EventStore, engine StateReporter, log *logger.Logger) *Handler {
	return &Handler{
		store:  st,
		engine: engine,
		log:    log,
	}
}

// Health returns the health status of the API.
// @Summary Health check
// @Description Check the health status of the API
// @Tags Health
// @Produce json
// @Success 200 {object} HealthResponse "API health status"
// @Router /health [get]
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, HealthResponse{
		Status:    "ok",
		Timestamp: time.Now(),
	})
}

// ListShouts returns indexed shouts with optional filtering and sorting.
// @Summary List shouts
// @Description Retrieve indexed shouts with optional filtering, pagination and sorting
// @Tags Shouts
// @Produce json
// @Param min_amount query number false "Minimum burned amount in whole tokens"
// @Param token query string false "Filter by burned token address"
// @Param sort query string false "Sort order: recent or amount" Enums(recent, amount)
// @Param limit query int false "Maximum number of shouts to return" default(50)
// @Param offset query int false "Number of shouts to skip" default(0)
// @Success 200 {object} ShoutsResponse "List of shouts with pagination info"
// @Failure 400 {object} ErrorResponse "Invalid parameters"
// @Failure 500 {object} ErrorResponse "Internal server error"
// @Router /shouts [get]
func (h *Handler) ListShouts(w http.ResponseWriter, r *http.Request) {
	filter, err := parseListFilter(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	events, err := h.store.ListEvents(r.Context(), *filter)
	if err != nil {
		h.log.Errorf("failed to list shouts: %v", err)
		respondError(w, http.StatusInternalServerError, "failed to list shouts")
		return
	}

	if events == nil {
		events = []*store.ShoutEvent{}
	}

	respondJSON(w, http.StatusOK, ShoutsResponse{
		Shouts: events,
		Pagination: PaginationResult{
			Limit:   filter.Limit,
			Offset:  filter.Offset,
			Count:   len(events),
			HasMore: len(events) == filter.Limit,
		},
	})
}

// GetShout returns a single shout by id and increments its view counter.
// @Summary Get a shout
// @Description Retrieve a single shout by id. Each request increments the view counter.
// @Tags Shouts
// @Produce json
// @Param id path int true "Shout id"
// @Success 200 {object} store.ShoutEvent "The shout"
// @Failure 400 {object} ErrorResponse "Invalid id"
// @Failure 404 {object} ErrorResponse "Shout not found"
// @Failure 500 {object} ErrorResponse "Internal server error"
// @Router /shouts/{id} [get]
func (h *Handler) GetShout(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id < 1 {
		respondError(w, http.StatusBadRequest, "invalid shout id")
		return
	}

	if err := h.store.IncrementViews(r.Context(), id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			respondError(w, http.StatusNotFound, fmt.Sprintf("shout %d not found", id))
			return
		}
		h.log.Errorf("failed to increment views for shout %d: %v", id, err)
		respondError(w, http.StatusInternalServerError, "failed to get shout")
		return
	}

	event, err := h.store.GetEvent(r.Context(), id)
	if err != nil {
		h.log.Errorf("failed to get shout %d: %v", id, err)
		respondError(w, http.StatusInternalServerError, "failed to get shout")
		return
	}

	respondJSON(w, http.StatusOK, event)
}

// GetStatus reports indexing progress.
// @Summary Indexer status
// @Description Report the engine state, checkpoint and event counts
// @Tags Status
// @Produce json
// @Success 200 {object} StatusResponse "Indexer status"
// @Failure 500 {object} ErrorResponse "Internal server error"
// @Router /status [get]
func (h *Handler) GetStatus(w http.ResponseWriter, r *http.Request) {
	stats, err := h.store.Stats(r.Context())
	if err != nil {
		h.log.Errorf("failed to get stats: %v", err)
		respondError(w, http.StatusInternalServerError, "failed to get status")
		return
	}

	respondJSON(w, http.StatusOK, StatusResponse{
		State:            h.engine.State().String(),
		ChainID:          stats.ChainID,
		LastIndexedBlock: stats.LastBlock,
		HasCheckpoint:    stats.HasCheckpoint,
		TotalEvents:      stats.TotalEvents,
		EventsByKind:     stats.EventsByKind,
		LastUpdateUnix:   stats.LastUpdateUnix,
	})
}

// GetTokenPrices returns the static token price table.
// @Summary Token prices
// @Description List known token prices used for display purposes
// @Tags Prices
// @Produce json
// @Success 200 {array} TokenPrice "Token prices"
// @Router /token-prices [get]
func (h *Handler) GetTokenPrices(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, defaultTokenPrices)
}

// parseListFilter parses HTTP query parameters into a store.ListFilter.
func parseListFilter(r *http.Request) (*store.ListFilter, error) {
	filter := &store.ListFilter{
		Sort:  store.SortRecent,
		Limit: 50,
	}

	if minAmountStr := r.URL.Query().Get("min_amount"); minAmountStr != "" {
		minAmount, err := strconv.ParseFloat(minAmountStr, 64)
		if err != nil || minAmount < 0 {
			return nil, fmt.Errorf("invalid min_amount: must be a non-negative number")
		}
		filter.MinAmount = minAmount
	}

	if token := r.URL.Query().Get("token"); token != "" {
		if !common.IsHexAddress(token) {
			return nil, fmt.Errorf("invalid token: must be a hex address")
		}
		addr := common.HexToAddress(token)
		filter.Token = &addr
	}

	if sort := r.URL.Query().Get("sort"); sort != "" {
		switch store.SortOrder(strings.ToLower(sort)) {
		case store.SortRecent:
			filter.Sort = store.SortRecent
		case store.SortAmount:
			filter.Sort = store.SortAmount
		default:
			return nil, fmt.Errorf("invalid sort: must be 'recent' or 'amount'")
		}
	}

	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		limit, err := strconv.Atoi(limitStr)
		if err != nil || limit < 1 || limit > maxLimit {
			return nil, fmt.Errorf("invalid limit: must be between 1 and %d", maxLimit)
		}
		filter.Limit = limit
	}

	if offsetStr := r.URL.Query().Get("offset"); offsetStr != "" {
		offset, err := strconv.Atoi(offsetStr)
		if err != nil || offset < 0 {
			return nil, fmt.Errorf("invalid offset: must be non-negative")
		}
		filter.Offset = offset
	}

	return filter, nil
}

// respondJSON sends a JSON response.
func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")

	encoded, err := json.Marshal(data)
	if err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(status)
	if _, err := w.Write(encoded); err != nil {
		// Headers already sent, nothing left to do
		return
	}
}

// respondError sends an error response.
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, ErrorResponse{
		Error:   http.StatusText(status),
		Message: message,
		Code:    status,
	})
}
