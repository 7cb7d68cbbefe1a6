package postgres

import (
	"context"

	"github.com/boardhall/lobby-service/internal/domain"

	"github.com/jackc/pgx/v5"
)

type MembershipRepository struct {
	q querier
}

func NewMembershipRepositoryFromPool(q querier) *MembershipRepository {
	return &MembershipRepository{q: q}
}

func NewMembershipRepositoryFromTx(tx pgx.Tx) *MembershipRepository {
	return &MembershipRepository{q: tx}
}

// Insert добавляет участие. Уникальность (room_id, user_id) держит БД:
// ON CONFLICT DO NOTHING, возвращаем — была ли вставка.
// Вызывается только под блокировкой строки комнаты (см. LockForAdmission).
func (r *MembershipRepository) Insert(ctx context.Context, m *domain.Membership) (bool, error) {
	err := r.q.QueryRow(ctx, `
		INSERT INTO room_memberships (room_id, user_id, is_creator, last_seen)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (room_id, user_id) DO NOTHING
		RETURNING id
	`, m.RoomID, m.UserID, m.IsCreator, m.LastSeen).Scan(&m.ID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return false, nil
		}
		return false, mapPgError(err)
	}
	return true, nil
}

func (r *MembershipRepository) CountInRoom(ctx context.Context, roomID string) (int, error) {
	var count int
	err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM room_memberships WHERE room_id=$1`, roomID).Scan(&count)
	return count, err
}

func (r *MembershipRepository) Exists(ctx context.Context, roomID string, userID int64) (bool, error) {
	var exists bool
	err := r.q.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM room_memberships WHERE room_id=$1 AND user_id=$2)`,
		roomID, userID).Scan(&exists)
	return exists, err
}

func (r *MembershipRepository) ListByRoom(ctx context.Context, roomID string) ([]domain.Membership, error) {
	rows, err := r.q.Query(ctx,
		`SELECT id, room_id, user_id, is_creator, last_seen FROM room_memberships WHERE room_id=$1 ORDER BY id ASC`,
		roomID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []domain.Membership
	for rows.Next() {
		var m domain.Membership
		if err := rows.Scan(&m.ID, &m.RoomID, &m.UserID, &m.IsCreator, &m.LastSeen); err != nil {
			return nil, err
		}
		list = append(list, m)
	}
	return list, rows.Err()
}
