package domain

import "time"

type Room struct {
	ID          string       `db:"id"`
	Capacity    int32        `db:"capacity"`
	GameCode    string       `db:"game_code"`
	IsPublic    bool         `db:"is_public"`
	MatchID     *string      `db:"match_id"`
	CreatedAt   time.Time    `db:"created_at"`
	Memberships []Membership `db:"-"`
}

// Sealed — матч уже создан, новые участники не принимаются.
func (r *Room) Sealed() bool {
	return r.MatchID != nil
}

func (r *Room) HasMember(userID int64) bool {
	for _, m := range r.Memberships {
		if m.UserID == userID {
			return true
		}
	}
	return false
}

// Membership — занятый слот пользователя в комнате.
// ID (bigserial) фиксируется при вступлении и задаёт порядок рассадки.
type Membership struct {
	ID        int64     `db:"id"`
	RoomID    string    `db:"room_id"`
	UserID    int64     `db:"user_id"`
	IsCreator bool      `db:"is_creator"`
	LastSeen  time.Time `db:"last_seen"`

	User *User `db:"-"`
}

type NewRoomSpec struct {
	Capacity int32
	GameCode string
	IsPublic bool
}

// AdmitOutcome — внутренний результат попытки вступления.
// Наружу не отдаётся: контракт JoinRoom — всегда текущее состояние комнаты.
type AdmitOutcome int

const (
	Admitted AdmitOutcome = iota
	AlreadyMember
	RoomFull
	RoomSealed
)

func (o AdmitOutcome) String() string {
	switch o {
	case Admitted:
		return "admitted"
	case AlreadyMember:
		return "already_member"
	case RoomFull:
		return "room_full"
	case RoomSealed:
		return "room_sealed"
	default:
		return "unknown"
	}
}
