package repository

import (
	"context"

	"github.com/boardhall/lobby-service/internal/domain"
)

// RoomLock — поля комнаты, прочитанные под блокировкой её строки.
type RoomLock struct {
	Capacity int32
	MatchID  *string
}

// Tx — доступ к хранилищу в рамках одной открытой транзакции.
// Реализация обязана обеспечивать изоляцию read-check-write по комнате:
// LockRoom держит блокировку до конца транзакции.
type Tx interface {
	CreateRoom(ctx context.Context, room *domain.Room) error
	LockRoom(ctx context.Context, roomID string) (*RoomLock, error)
	InsertMembership(ctx context.Context, m *domain.Membership) (inserted bool, err error)
	CountMemberships(ctx context.Context, roomID string) (int, error)
	MemberExists(ctx context.Context, roomID string, userID int64) (bool, error)
	RoomWithMemberships(ctx context.Context, roomID string) (*domain.Room, error)
	SetMatchID(ctx context.Context, roomID, matchID string) (wrote bool, err error)
	UserByID(ctx context.Context, id int64) (*domain.User, error)
}

// Store — транзакционный примитив плюс чтения вне транзакций.
type Store interface {
	// InTx выполняет fn атомарно: commit при nil, rollback и проброс ошибки иначе.
	InTx(ctx context.Context, fn func(tx Tx) error) error

	RoomWithMemberships(ctx context.Context, roomID string) (*domain.Room, error)
	ListPublicRooms(ctx context.Context, limit int, cursor string) ([]domain.Room, string, error)
	UserByID(ctx context.Context, id int64) (*domain.User, error)
}
