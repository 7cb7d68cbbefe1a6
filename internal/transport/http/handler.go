package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/boardhall/lobby-service/internal/domain"
	"github.com/boardhall/lobby-service/internal/notify"
	"github.com/boardhall/lobby-service/internal/postgres"
	httpmw "github.com/boardhall/lobby-service/internal/transport/http/middleware"

	"github.com/go-chi/chi/v5"
)

type Lobby interface {
	NewRoom(ctx context.Context, spec domain.NewRoomSpec, userID int64) (*domain.Room, error)
	JoinRoom(ctx context.Context, userID int64, roomID string) (*domain.Room, domain.AdmitOutcome, error)
	AttachMatch(ctx context.Context, roomID, matchID string) (*domain.Room, error)
	GetRoom(ctx context.Context, roomID string) (*domain.Room, error)
	ListPublicRooms(ctx context.Context, limit int, cursor string) ([]domain.Room, string, error)
}

type Handler struct {
	lobby Lobby
}

func NewHandler(lobby Lobby) *Handler {
	return &Handler{lobby: lobby}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// POST /rooms
func (h *Handler) CreateRoom(w http.ResponseWriter, r *http.Request) {
	userID := httpmw.UserIDFromCtx(r.Context())
	if userID == 0 {
		writeJSON(w, http.StatusUnauthorized, ErrorResponse{Error: "missing user id"})
		return
	}

	var req CreateRoomRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid json"})
		return
	}

	room, err := h.lobby.NewRoom(r.Context(), domain.NewRoomSpec{
		Capacity: req.Capacity,
		GameCode: req.GameCode,
		IsPublic: req.IsPublic,
	}, userID)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidCapacity), errors.Is(err, domain.ErrEmptyGameCode):
			writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		case errors.Is(err, domain.ErrUserNotFound):
			writeJSON(w, http.StatusNotFound, ErrorResponse{Error: "user not found"})
		default:
			slog.Error("handler.CreateRoom:", slog.Any("err", err))
			writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		}
		return
	}

	writeJSON(w, http.StatusCreated, notify.SnapshotFromRoom(room))
}

// GET /rooms?limit=&cursor=
func (h *Handler) ListRooms(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if s := r.URL.Query().Get("limit"); s != "" {
		if n, err := strconv.Atoi(s); err == nil {
			limit = n
		}
	}
	cursor := r.URL.Query().Get("cursor")

	rooms, next, err := h.lobby.ListPublicRooms(r.Context(), limit, cursor)
	if err != nil {
		if errors.Is(err, postgres.ErrInvalidCursor) {
			writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid_cursor"})
			return
		}
		slog.Error("handler.ListRooms:", slog.Any("err", err))
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}

	resp := RoomsListResponse{Items: make([]RoomItem, 0, len(rooms)), NextCursor: next}
	for _, rm := range rooms {
		resp.Items = append(resp.Items, roomItem(rm))
	}
	writeJSON(w, http.StatusOK, resp)
}

// GET /rooms/{id}
func (h *Handler) GetRoom(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	room, err := h.lobby.GetRoom(r.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrRoomNotFound) {
			writeJSON(w, http.StatusNotFound, ErrorResponse{Error: "room not found"})
			return
		}
		slog.Error("handler.GetRoom:", slog.Any("err", err))
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, notify.SnapshotFromRoom(room))
}

// POST /rooms/{id}/join
// Полная, запечатанная и повторная посадка — не ошибки: в ответе всегда
// текущее состояние комнаты, клиент сам сверяет список участников.
func (h *Handler) JoinRoom(w http.ResponseWriter, r *http.Request) {
	roomID := chi.URLParam(r, "id")
	userID := httpmw.UserIDFromCtx(r.Context())
	if userID == 0 {
		writeJSON(w, http.StatusUnauthorized, ErrorResponse{Error: "missing user id"})
		return
	}

	room, _, err := h.lobby.JoinRoom(r.Context(), userID, roomID)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrRoomNotFound):
			writeJSON(w, http.StatusNotFound, ErrorResponse{Error: "room not found"})
		case errors.Is(err, domain.ErrUserNotFound):
			writeJSON(w, http.StatusNotFound, ErrorResponse{Error: "user not found"})
		default:
			slog.Error("handler.JoinRoom:", slog.Any("err", err))
			writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		}
		return
	}

	writeJSON(w, http.StatusOK, notify.SnapshotFromRoom(room))
}

// POST /rooms/{id}/match
func (h *Handler) AttachMatch(w http.ResponseWriter, r *http.Request) {
	roomID := chi.URLParam(r, "id")

	var req AttachMatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.MatchID == "" {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "match_id is required"})
		return
	}

	room, err := h.lobby.AttachMatch(r.Context(), roomID, req.MatchID)
	if err != nil {
		if errors.Is(err, domain.ErrRoomNotFound) {
			writeJSON(w, http.StatusNotFound, ErrorResponse{Error: "room not found"})
			return
		}
		slog.Error("handler.AttachMatch:", slog.Any("err", err))
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, notify.SnapshotFromRoom(room))
}
