package rest

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/rocketscienceinc/minigames-backend/internal/apperror"
	"github.com/rocketscienceinc/minigames-backend/internal/entity"
	"github.com/rocketscienceinc/minigames-backend/internal/session"
	"github.com/rocketscienceinc/minigames-backend/internal/usecase"
)

type gameUseCase interface {
	CreateSession(ctx context.Context, req usecase.CreateRequest) (*session.Snapshot, error)
	JoinSession(ctx context.Context, key, participant string) (*session.Snapshot, error)
	SubmitMove(ctx context.Context, move entity.Move) (*usecase.MoveResult, error)
	GetSnapshot(ctx context.Context, key string) (*session.Snapshot, error)
	Abandon(ctx context.Context, key string) error
	GetOutcome(ctx context.Context, key string) (*entity.Outcome, error)
	Balance(ctx context.Context, participant string) (int64, error)
}

type createSessionRequest struct {
	Key            string   `json:"key"`
	Kind           string   `json:"kind"`
	Participants   []string `json:"participants"`
	Word           string   `json:"word"`
	TimeoutSeconds int      `json:"timeout_seconds"`
}

type joinRequest struct {
	Participant string `json:"participant"`
}

type moveRequest struct {
	Participant string `json:"participant"`
	entity.Payload
}

type moveResponse struct {
	*usecase.MoveResult
	Warning string `json:"warning,omitempty"`
}

type balanceResponse struct {
	Participant string `json:"participant"`
	Balance     int64  `json:"balance"`
}

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

type Handler struct {
	logger *slog.Logger
	game   gameUseCase
}

func NewHandler(logger *slog.Logger, game gameUseCase) *Handler {
	return &Handler{
		logger: logger.With("component", "rest"),
		game:   game,
	}
}

// Routes - session API, mounted by NewRouter.
func (that *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/ping", pingHandler)

	r.Route("/sessions", func(r chi.Router) {
		r.Post("/", that.createSession)

		r.Route("/{key}", func(r chi.Router) {
			r.Get("/", that.getSnapshot)
			r.Delete("/", that.abandon)
			r.Post("/join", that.joinSession)
			r.Post("/moves", that.submitMove)
			r.Get("/outcome", that.getOutcome)
		})
	})

	r.Get("/balances/{participant}", that.getBalance)

	return r
}

func (that *Handler) createSession(w http.ResponseWriter, r *http.Request) {
	var req createSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondBadRequest(w, "invalid request body")
		return
	}

	kind, err := entity.ParseKind(req.Kind)
	if err != nil {
		that.respondError(w, r, err)
		return
	}

	snapshot, err := that.game.CreateSession(r.Context(), usecase.CreateRequest{
		Key:          req.Key,
		Kind:         kind,
		Participants: req.Participants,
		Timeout:      time.Duration(req.TimeoutSeconds) * time.Second,
		Word:         req.Word,
	})
	if err != nil {
		that.respondError(w, r, err)
		return
	}

	respondJSON(w, http.StatusCreated, snapshot)
}

func (that *Handler) getSnapshot(w http.ResponseWriter, r *http.Request) {
	snapshot, err := that.game.GetSnapshot(r.Context(), chi.URLParam(r, "key"))
	if err != nil {
		that.respondError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, snapshot)
}

func (that *Handler) joinSession(w http.ResponseWriter, r *http.Request) {
	var req joinRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondBadRequest(w, "invalid request body")
		return
	}

	snapshot, err := that.game.JoinSession(r.Context(), chi.URLParam(r, "key"), req.Participant)
	if err != nil {
		that.respondError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, snapshot)
}

func (that *Handler) submitMove(w http.ResponseWriter, r *http.Request) {
	var req moveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondBadRequest(w, "invalid request body")
		return
	}

	result, err := that.game.SubmitMove(r.Context(), entity.Move{
		SessionKey:  chi.URLParam(r, "key"),
		Participant: req.Participant,
		Payload:     req.Payload,
	})

	// the move was applied, only the ledger call failed
	if result != nil && errors.Is(err, apperror.ErrRewardDelivery) {
		that.logger.Warn("move applied without reward", "session", result.Snapshot.Key, "error", err)
		respondJSON(w, http.StatusOK, moveResponse{MoveResult: result, Warning: err.Error()})
		return
	}

	if err != nil {
		that.respondError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, moveResponse{MoveResult: result})
}

func (that *Handler) abandon(w http.ResponseWriter, r *http.Request) {
	if err := that.game.Abandon(r.Context(), chi.URLParam(r, "key")); err != nil {
		that.respondError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (that *Handler) getOutcome(w http.ResponseWriter, r *http.Request) {
	outcome, err := that.game.GetOutcome(r.Context(), chi.URLParam(r, "key"))
	if err != nil {
		that.respondError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, outcome)
}

func (that *Handler) getBalance(w http.ResponseWriter, r *http.Request) {
	participant := chi.URLParam(r, "participant")

	balance, err := that.game.Balance(r.Context(), participant)
	if err != nil {
		that.respondError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, balanceResponse{Participant: participant, Balance: balance})
}

func (that *Handler) respondError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusCode(err)
	if status == http.StatusInternalServerError {
		that.logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
	}

	respondJSON(w, status, errorResponse{Error: err.Error(), Code: apperror.Code(err)})
}

func statusCode(err error) int {
	switch apperror.Code(err) {
	case "not_found":
		return http.StatusNotFound
	case "duplicate_session", "invalid_session", "session_busy", "session_full", "not_your_turn":
		return http.StatusConflict
	case "not_a_participant":
		return http.StatusForbidden
	case "illegal_move":
		return http.StatusUnprocessableEntity
	case "unknown_kind", "invalid_participants", "invalid_options", "self_join":
		return http.StatusBadRequest
	case "reward_delivery":
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func respondBadRequest(w http.ResponseWriter, message string) {
	respondJSON(w, http.StatusBadRequest, errorResponse{Error: message, Code: "bad_request"})
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
