package api

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/cardboardgarden/garden-api/internal/api/shared"
	"github.com/cardboardgarden/garden-api/internal/domain"
	"github.com/cardboardgarden/garden-api/internal/platform/logger"
	"github.com/cardboardgarden/garden-api/internal/store"
)

// Paging limits for card search.
const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// CardHandler serves the read-only card catalog.
type CardHandler struct {
	cards  store.CardStore
	logger *slog.Logger
}

// NewCardHandler creates a CardHandler.
func NewCardHandler(cards store.CardStore, log *slog.Logger) *CardHandler {
	if log == nil {
		log = slog.Default()
	}
	return &CardHandler{
		cards:  cards,
		logger: log.With(slog.String("component", "card_handler")),
	}
}

// Search handles GET /cards?name=&setCode=&rarity=&page=&size=.
func (h *CardHandler) Search(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)
	q := r.URL.Query()

	page, err := intParam(q.Get("page"), 0)
	if err != nil || page < 0 {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid page parameter")
		return
	}
	size, err := intParam(q.Get("size"), DefaultPageSize)
	if err != nil || size < 1 {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid size parameter")
		return
	}
	if size > MaxPageSize {
		size = MaxPageSize
	}

	filter := domain.CardFilter{
		Name:    strings.TrimSpace(q.Get("name")),
		SetCode: strings.TrimSpace(q.Get("setCode")),
		Rarity:  strings.TrimSpace(q.Get("rarity")),
	}

	result, err := h.cards.Search(r.Context(), filter, domain.PageRequest{Page: page, Size: size})
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError, "Failed to search cards", err)
		return
	}

	log.Debug("card search completed",
		slog.Int("page", page),
		slog.Int("size", size),
		slog.Int64("total", result.Total))
	shared.RespondWithJSON(w, r, http.StatusOK, cardPageToResponse(result))
}

// Get handles GET /cards/{id}.
func (h *CardHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid card ID")
		return
	}

	card, err := h.cards.GetByID(r.Context(), id)
	if err != nil {
		status := MapErrorToStatusCode(err)
		message := GetSafeErrorMessage(err)
		if status == http.StatusInternalServerError {
			message = "Failed to retrieve card"
		}
		shared.RespondWithErrorAndLog(w, r, status, message, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, card)
}

func intParam(raw string, def int) (int, error) {
	if raw == "" {
		return def, nil
	}
	return strconv.Atoi(raw)
}
