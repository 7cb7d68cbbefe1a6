package notify

import (
	"github.com/boardhall/lobby-service/internal/domain"
)

// RoomSnapshot — внешнее представление комнаты; рассылается подписчикам
// на каждое изменение состава.
type RoomSnapshot struct {
	ID          string           `json:"id"`
	Capacity    int32            `json:"capacity"`
	GameCode    string           `json:"game_code"`
	IsPublic    bool             `json:"is_public"`
	MatchID     *string          `json:"match_id,omitempty"`
	Memberships []MembershipItem `json:"memberships"`
}

type MembershipItem struct {
	IsCreator bool     `json:"is_creator"`
	User      UserItem `json:"user"`
}

type UserItem struct {
	ID          int64   `json:"id"`
	DisplayName *string `json:"display_name,omitempty"`
	AvatarURL   *string `json:"avatar_url,omitempty"`
}

func Topic(roomID string) string {
	return "room/" + roomID
}

func SnapshotFromRoom(room *domain.Room) RoomSnapshot {
	snap := RoomSnapshot{
		ID:          room.ID,
		Capacity:    room.Capacity,
		GameCode:    room.GameCode,
		IsPublic:    room.IsPublic,
		MatchID:     room.MatchID,
		Memberships: make([]MembershipItem, 0, len(room.Memberships)),
	}
	for _, m := range room.Memberships {
		item := MembershipItem{IsCreator: m.IsCreator, User: UserItem{ID: m.UserID}}
		if m.User != nil {
			item.User.DisplayName = m.User.DisplayName
			item.User.AvatarURL = m.User.AvatarURL
		}
		snap.Memberships = append(snap.Memberships, item)
	}
	return snap
}
