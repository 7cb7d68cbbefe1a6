package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/boardhall/lobby-service/internal/domain"
	"github.com/boardhall/lobby-service/internal/notify"
	httpmw "github.com/boardhall/lobby-service/internal/transport/http/middleware"

	"github.com/go-chi/chi/v5"
)

type fakeLobby struct {
	rooms map[string]*domain.Room

	joinOutcome domain.AdmitOutcome
	joinErr     error
	newRoomErr  error
}

func (f *fakeLobby) NewRoom(ctx context.Context, spec domain.NewRoomSpec, userID int64) (*domain.Room, error) {
	if f.newRoomErr != nil {
		return nil, f.newRoomErr
	}
	if spec.Capacity < 1 {
		return nil, domain.ErrInvalidCapacity
	}
	room := &domain.Room{
		ID:       "room-1",
		Capacity: spec.Capacity,
		GameCode: spec.GameCode,
		IsPublic: spec.IsPublic,
		Memberships: []domain.Membership{
			{ID: 1, RoomID: "room-1", UserID: userID, IsCreator: true},
		},
	}
	f.rooms[room.ID] = room
	return room, nil
}

func (f *fakeLobby) JoinRoom(ctx context.Context, userID int64, roomID string) (*domain.Room, domain.AdmitOutcome, error) {
	if f.joinErr != nil {
		return nil, 0, f.joinErr
	}
	room, ok := f.rooms[roomID]
	if !ok {
		return nil, 0, domain.ErrRoomNotFound
	}
	return room, f.joinOutcome, nil
}

func (f *fakeLobby) AttachMatch(ctx context.Context, roomID, matchID string) (*domain.Room, error) {
	room, ok := f.rooms[roomID]
	if !ok {
		return nil, domain.ErrRoomNotFound
	}
	room.MatchID = &matchID
	return room, nil
}

func (f *fakeLobby) GetRoom(ctx context.Context, roomID string) (*domain.Room, error) {
	room, ok := f.rooms[roomID]
	if !ok {
		return nil, domain.ErrRoomNotFound
	}
	return room, nil
}

func (f *fakeLobby) ListPublicRooms(ctx context.Context, limit int, cursor string) ([]domain.Room, string, error) {
	var out []domain.Room
	for _, r := range f.rooms {
		if r.IsPublic {
			out = append(out, *r)
		}
	}
	return out, "", nil
}

func testRouter(lobby Lobby) http.Handler {
	h := NewHandler(lobby)
	r := chi.NewRouter()
	r.Route("/rooms", func(rm chi.Router) {
		rm.Post("/", h.CreateRoom)
		rm.Get("/", h.ListRooms)
		rm.Route("/{id}", func(rr chi.Router) {
			rr.Get("/", h.GetRoom)
			rr.Post("/join", h.JoinRoom)
			rr.Post("/match", h.AttachMatch)
		})
	})
	return r
}

func doRequest(t *testing.T, router http.Handler, method, path, body string, userID int64) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if userID != 0 {
		req = req.WithContext(httpmw.WithUserID(req.Context(), userID))
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestCreateRoom_ReturnsSnapshot(t *testing.T) {
	lobby := &fakeLobby{rooms: map[string]*domain.Room{}}
	router := testRouter(lobby)

	rec := doRequest(t, router, http.MethodPost, "/rooms",
		`{"capacity":2,"game_code":"X","is_public":true}`, 1)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var snap notify.RoomSnapshot
	if err := json.Unmarshal(rec.Body.Bytes(), &snap); err != nil {
		t.Fatalf("decode snapshot: %v", err)
	}
	if snap.ID != "room-1" || len(snap.Memberships) != 1 || !snap.Memberships[0].IsCreator {
		t.Fatalf("unexpected snapshot: %+v", snap)
	}
}

func TestCreateRoom_BadInput(t *testing.T) {
	lobby := &fakeLobby{rooms: map[string]*domain.Room{}}
	router := testRouter(lobby)

	if rec := doRequest(t, router, http.MethodPost, "/rooms", `{"capacity":0,"game_code":"X"}`, 1); rec.Code != http.StatusBadRequest {
		t.Fatalf("zero capacity: expected 400, got %d", rec.Code)
	}
	if rec := doRequest(t, router, http.MethodPost, "/rooms", `not json`, 1); rec.Code != http.StatusBadRequest {
		t.Fatalf("bad json: expected 400, got %d", rec.Code)
	}
	if rec := doRequest(t, router, http.MethodPost, "/rooms", `{"capacity":2,"game_code":"X"}`, 0); rec.Code != http.StatusUnauthorized {
		t.Fatalf("no user: expected 401, got %d", rec.Code)
	}
}

func TestJoinRoom_SilentNoopStillReturnsRoom(t *testing.T) {
	lobby := &fakeLobby{rooms: map[string]*domain.Room{}, joinOutcome: domain.RoomFull}
	router := testRouter(lobby)

	doRequest(t, router, http.MethodPost, "/rooms", `{"capacity":1,"game_code":"X"}`, 1)

	// комната полная — но для клиента это 200 с текущим состоянием
	rec := doRequest(t, router, http.MethodPost, "/rooms/room-1/join", "", 2)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var snap notify.RoomSnapshot
	if err := json.Unmarshal(rec.Body.Bytes(), &snap); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(snap.Memberships) != 1 {
		t.Fatalf("expected unchanged room, got %+v", snap)
	}
}

func TestJoinRoom_UnknownRoomIs404(t *testing.T) {
	lobby := &fakeLobby{rooms: map[string]*domain.Room{}}
	router := testRouter(lobby)

	rec := doRequest(t, router, http.MethodPost, "/rooms/unknown-id/join", "", 2)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestAttachMatch_Validation(t *testing.T) {
	lobby := &fakeLobby{rooms: map[string]*domain.Room{}}
	router := testRouter(lobby)
	doRequest(t, router, http.MethodPost, "/rooms", `{"capacity":2,"game_code":"X"}`, 1)

	if rec := doRequest(t, router, http.MethodPost, "/rooms/room-1/match", `{}`, 1); rec.Code != http.StatusBadRequest {
		t.Fatalf("empty match_id: expected 400, got %d", rec.Code)
	}
	rec := doRequest(t, router, http.MethodPost, "/rooms/room-1/match", `{"match_id":"m1"}`, 1)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var snap notify.RoomSnapshot
	_ = json.Unmarshal(rec.Body.Bytes(), &snap)
	if snap.MatchID == nil || *snap.MatchID != "m1" {
		t.Fatalf("match id missing in snapshot: %+v", snap)
	}
}
