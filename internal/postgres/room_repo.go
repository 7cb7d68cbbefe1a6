package postgres

import (
	"context"
	"errors"

	"github.com/boardhall/lobby-service/internal/domain"
	"github.com/boardhall/lobby-service/internal/repository"

	"github.com/jackc/pgx/v5"
)

type RoomRepository struct {
	q querier
}

// NewRoomRepositoryFromPool - конструктор от пула (*pgxpool.Pool)
func NewRoomRepositoryFromPool(q querier) *RoomRepository {
	return &RoomRepository{q: q}
}

// NewRoomRepositoryFromTx - конструктор от транзакции (pgx.Tx)
func NewRoomRepositoryFromTx(tx pgx.Tx) *RoomRepository {
	return &RoomRepository{q: tx}
}

func (r *RoomRepository) Create(ctx context.Context, room *domain.Room) error {
	query := `
		INSERT INTO rooms (id, capacity, game_code, is_public)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at`
	err := r.q.QueryRow(ctx, query, room.ID, room.Capacity, room.GameCode, room.IsPublic).
		Scan(&room.CreatedAt)
	if err != nil {
		return mapPgError(err)
	}
	return nil
}

// LockForAdmission блокирует строку комнаты (FOR UPDATE).
// Параллельные транзакции по той же комнате будут ждать — именно это
// защищает лимит мест и уникальность участника от гонок.
func (r *RoomRepository) LockForAdmission(ctx context.Context, roomID string) (*repository.RoomLock, error) {
	var head repository.RoomLock
	err := r.q.QueryRow(ctx,
		`SELECT capacity, match_id FROM rooms WHERE id=$1 FOR UPDATE`,
		roomID).Scan(&head.Capacity, &head.MatchID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrRoomNotFound
		}
		return nil, err
	}
	return &head, nil
}

// GetWithMemberships возвращает комнату вместе с участниками и их
// пользователями одним согласованным чтением. Порядок — по id участия
// (bigserial), то есть по порядку вступления; ранг зафиксирован навсегда.
func (r *RoomRepository) GetWithMemberships(ctx context.Context, roomID string) (*domain.Room, error) {
	var rm domain.Room
	err := r.q.QueryRow(ctx,
		`SELECT id, capacity, game_code, is_public, match_id, created_at FROM rooms WHERE id=$1`,
		roomID).
		Scan(&rm.ID, &rm.Capacity, &rm.GameCode, &rm.IsPublic, &rm.MatchID, &rm.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrRoomNotFound
		}
		return nil, err
	}

	const q = `
SELECT m.id, m.room_id, m.user_id, m.is_creator, m.last_seen,
       u.id, u.display_name, u.avatar_url, u.created_at
FROM room_memberships AS m
JOIN users AS u ON u.id = m.user_id
WHERE m.room_id = $1
ORDER BY m.id ASC`
	rows, err := r.q.Query(ctx, q, roomID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var m domain.Membership
		var u domain.User
		if err := rows.Scan(
			&m.ID, &m.RoomID, &m.UserID, &m.IsCreator, &m.LastSeen,
			&u.ID, &u.DisplayName, &u.AvatarURL, &u.CreatedAt,
		); err != nil {
			return nil, err
		}
		m.User = &u
		rm.Memberships = append(rm.Memberships, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &rm, nil
}

// SetMatchID запечатывает комнату. Пишет только если match_id ещё не
// установлен; возвращает, была ли запись.
func (r *RoomRepository) SetMatchID(ctx context.Context, roomID, matchID string) (bool, error) {
	tag, err := r.q.Exec(ctx,
		`UPDATE rooms SET match_id=$2 WHERE id=$1 AND match_id IS NULL`,
		roomID, matchID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// ListPublic возвращает публичные комнаты с курсорной пагинацией.
func (r *RoomRepository) ListPublic(ctx context.Context, limit int, cursorStr string) ([]domain.Room, string, error) {
	cur, err := DecodeCursor(cursorStr)
	if err != nil {
		return nil, "", err
	}

	query := `
		SELECT id, capacity, game_code, is_public, match_id, created_at
		FROM rooms
		WHERE is_public
		  AND ($1::timestamptz IS NULL OR created_at < $1
		       OR (created_at = $1 AND id < $2))
		ORDER BY created_at DESC, id DESC
		LIMIT $3`

	var createdAt any
	var id any
	if cur != nil {
		createdAt = cur.CreatedAt
		id = cur.ID
	}

	rows, err := r.q.Query(ctx, query, createdAt, id, limit)
	if err != nil {
		return nil, "", err
	}
	defer rows.Close()

	var rooms []domain.Room
	for rows.Next() {
		var rm domain.Room
		if err := rows.Scan(&rm.ID, &rm.Capacity, &rm.GameCode, &rm.IsPublic, &rm.MatchID, &rm.CreatedAt); err != nil {
			return nil, "", err
		}
		rooms = append(rooms, rm)
	}
	if err := rows.Err(); err != nil {
		return nil, "", err
	}

	var nextCursor string
	if len(rooms) == limit {
		last := rooms[len(rooms)-1]
		nextCursor, _ = EncodeCursor(Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
	}

	return rooms, nextCursor, nil
}
