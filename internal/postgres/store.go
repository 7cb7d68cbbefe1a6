package postgres

import (
	"context"

	"github.com/boardhall/lobby-service/internal/domain"
	"github.com/boardhall/lobby-service/internal/pg"
	"github.com/boardhall/lobby-service/internal/repository"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Store реализует repository.Store поверх pgx: транзакции через pg.InTx,
// чтения вне транзакций — от пула.
type Store struct {
	pool *pgxpool.Pool
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

func (s *Store) InTx(ctx context.Context, fn func(tx repository.Tx) error) error {
	return pg.InTx(ctx, s.pool, func(tx pgx.Tx) error {
		return fn(newTxStore(tx))
	})
}

// RoomWithMemberships — читающая транзакция: шапка комнаты и список
// участников приходят одним согласованным снапшотом.
func (s *Store) RoomWithMemberships(ctx context.Context, roomID string) (*domain.Room, error) {
	var room *domain.Room
	err := pg.InTx(ctx, s.pool, func(tx pgx.Tx) error {
		r, err := NewRoomRepositoryFromTx(tx).GetWithMemberships(ctx, roomID)
		if err != nil {
			return err
		}
		room = r
		return nil
	})
	return room, err
}

func (s *Store) ListPublicRooms(ctx context.Context, limit int, cursor string) ([]domain.Room, string, error) {
	return NewRoomRepositoryFromPool(s.pool).ListPublic(ctx, limit, cursor)
}

func (s *Store) UserByID(ctx context.Context, id int64) (*domain.User, error) {
	return NewUserRepositoryFromPool(s.pool).GetByID(ctx, id)
}

// txStore — те же репозитории, привязанные к одной открытой транзакции.
type txStore struct {
	rooms       *RoomRepository
	memberships *MembershipRepository
	users       *UserRepository
}

func newTxStore(tx pgx.Tx) *txStore {
	return &txStore{
		rooms:       NewRoomRepositoryFromTx(tx),
		memberships: NewMembershipRepositoryFromTx(tx),
		users:       NewUserRepositoryFromTx(tx),
	}
}

func (t *txStore) CreateRoom(ctx context.Context, room *domain.Room) error {
	return t.rooms.Create(ctx, room)
}

func (t *txStore) LockRoom(ctx context.Context, roomID string) (*repository.RoomLock, error) {
	return t.rooms.LockForAdmission(ctx, roomID)
}

func (t *txStore) InsertMembership(ctx context.Context, m *domain.Membership) (bool, error) {
	return t.memberships.Insert(ctx, m)
}

func (t *txStore) CountMemberships(ctx context.Context, roomID string) (int, error) {
	return t.memberships.CountInRoom(ctx, roomID)
}

func (t *txStore) MemberExists(ctx context.Context, roomID string, userID int64) (bool, error) {
	return t.memberships.Exists(ctx, roomID, userID)
}

func (t *txStore) RoomWithMemberships(ctx context.Context, roomID string) (*domain.Room, error) {
	return t.rooms.GetWithMemberships(ctx, roomID)
}

func (t *txStore) SetMatchID(ctx context.Context, roomID, matchID string) (bool, error) {
	return t.rooms.SetMatchID(ctx, roomID, matchID)
}

func (t *txStore) UserByID(ctx context.Context, id int64) (*domain.User, error) {
	return t.users.GetByID(ctx, id)
}
