package http

import (
	"time"

	"github.com/boardhall/lobby-service/internal/domain"
)

type CreateRoomRequest struct {
	Capacity int32  `json:"capacity"`
	GameCode string `json:"game_code"`
	IsPublic bool   `json:"is_public"`
}

type AttachMatchRequest struct {
	MatchID string `json:"match_id"`
}

type RoomItem struct {
	ID        string    `json:"id"`
	Capacity  int32     `json:"capacity"`
	GameCode  string    `json:"game_code"`
	IsPublic  bool      `json:"is_public"`
	MatchID   *string   `json:"match_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type RoomsListResponse struct {
	Items      []RoomItem `json:"items"`
	NextCursor string     `json:"next_cursor,omitempty"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

func roomItem(rm domain.Room) RoomItem {
	return RoomItem{
		ID:        rm.ID,
		Capacity:  rm.Capacity,
		GameCode:  rm.GameCode,
		IsPublic:  rm.IsPublic,
		MatchID:   rm.MatchID,
		CreatedAt: rm.CreatedAt,
	}
}
