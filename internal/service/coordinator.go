package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/boardhall/lobby-service/internal/domain"
	"github.com/boardhall/lobby-service/internal/notify"
	"github.com/boardhall/lobby-service/internal/repository"
	"github.com/boardhall/lobby-service/pkg/ids"
)

const (
	defaultListLimit = 20
	maxListLimit     = 50
)

/*
Coordinator — координатор состава комнат. Все мутации идут в транзакциях
хранилища; проверки лимита и дубликата выполняются под блокировкой строки
комнаты, поэтому параллельные Join по одной комнате сериализуются на
уровне БД, без блокировок в процессе.

Снапшот публикуется строго после commit: подписчик никогда не увидит
состояние, которое потом откатилось.
*/
type Coordinator struct {
	store    repository.Store
	notifier notify.Notifier
	newID    ids.Generator
	now      func() time.Time
}

func NewCoordinator(store repository.Store, notifier notify.Notifier, newID ids.Generator) *Coordinator {
	return &Coordinator{
		store:    store,
		notifier: notifier,
		newID:    newID,
		now:      time.Now,
	}
}

// SetClock — для тестов.
func (c *Coordinator) SetClock(now func() time.Time) {
	if now != nil {
		c.now = now
	}
}

// NewRoom создаёт комнату и сразу сажает в неё создателя.
// Атомарно: либо комната и участие создателя сохраняются вместе, либо ничего.
func (c *Coordinator) NewRoom(ctx context.Context, spec domain.NewRoomSpec, userID int64) (*domain.Room, error) {
	if err := validateSpec(spec); err != nil {
		return nil, err
	}

	var room *domain.Room
	err := c.store.InTx(ctx, func(tx repository.Tx) error {
		r, err := c.NewRoomWithin(ctx, tx, spec, userID)
		if err != nil {
			return err
		}
		room = r
		return nil
	})
	if err != nil {
		return nil, err
	}

	c.notifier.Publish(ctx, notify.Topic(room.ID), notify.SnapshotFromRoom(room))
	slog.Info("room created",
		"room", room.ID, "game", room.GameCode, "capacity", room.Capacity, "creator", userID)

	return room, nil
}

// NewRoomWithin — то же самое внутри уже открытой транзакции вызывающего.
// Commit/rollback и публикация снапшота остаются за вызывающим.
func (c *Coordinator) NewRoomWithin(ctx context.Context, tx repository.Tx, spec domain.NewRoomSpec, userID int64) (*domain.Room, error) {
	if err := validateSpec(spec); err != nil {
		return nil, err
	}

	user, err := tx.UserByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("resolve user %d: %w", userID, err)
	}

	room := &domain.Room{
		ID:       c.newID(),
		Capacity: spec.Capacity,
		GameCode: spec.GameCode,
		IsPublic: spec.IsPublic,
	}
	if err := tx.CreateRoom(ctx, room); err != nil {
		return nil, fmt.Errorf("create room: %w", err)
	}

	m := &domain.Membership{
		RoomID:    room.ID,
		UserID:    user.ID,
		IsCreator: true,
		LastSeen:  c.now(),
	}
	if _, err := tx.InsertMembership(ctx, m); err != nil {
		return nil, fmt.Errorf("insert creator membership: %w", err)
	}

	// каноничное состояние перечитываем из хранилища, а не собираем в памяти
	full, err := tx.RoomWithMemberships(ctx, room.ID)
	if err != nil {
		return nil, err
	}
	return full, nil
}

/*
JoinRoom сажает пользователя в комнату в одной транзакции.

Тихие no-op по контракту: запечатанная комната, повторный вход и полная
комната возвращают текущее состояние без ошибки. Наружу различие не
отдаётся — AdmitOutcome нужен логам и тестам.
*/
func (c *Coordinator) JoinRoom(ctx context.Context, userID int64, roomID string) (*domain.Room, domain.AdmitOutcome, error) {
	var (
		room    *domain.Room
		outcome domain.AdmitOutcome
	)

	err := c.store.InTx(ctx, func(tx repository.Tx) error {
		lock, err := tx.LockRoom(ctx, roomID)
		if err != nil {
			return err
		}

		switch {
		case lock.MatchID != nil:
			outcome = domain.RoomSealed
		default:
			outcome, err = c.admit(ctx, tx, userID, roomID, lock.Capacity)
			if err != nil {
				return err
			}
		}

		room, err = tx.RoomWithMemberships(ctx, roomID)
		return err
	})
	if err != nil {
		return nil, outcome, err
	}

	if outcome == domain.Admitted {
		c.notifier.Publish(ctx, notify.Topic(roomID), notify.SnapshotFromRoom(room))
	}
	slog.Debug("join room", "room", roomID, "user", userID, "outcome", outcome.String())

	return room, outcome, nil
}

// admit — read-check-write под блокировкой строки комнаты.
func (c *Coordinator) admit(ctx context.Context, tx repository.Tx, userID int64, roomID string, capacity int32) (domain.AdmitOutcome, error) {
	exists, err := tx.MemberExists(ctx, roomID, userID)
	if err != nil {
		return 0, err
	}
	if exists {
		return domain.AlreadyMember, nil
	}

	count, err := tx.CountMemberships(ctx, roomID)
	if err != nil {
		return 0, err
	}
	if count >= int(capacity) {
		return domain.RoomFull, nil
	}

	if _, err := tx.UserByID(ctx, userID); err != nil {
		return 0, fmt.Errorf("resolve user %d: %w", userID, err)
	}

	inserted, err := tx.InsertMembership(ctx, &domain.Membership{
		RoomID:   roomID,
		UserID:   userID,
		LastSeen: c.now(),
	})
	if err != nil {
		return 0, err
	}
	if !inserted {
		// уникальный индекс сработал раньше нас
		return domain.AlreadyMember, nil
	}
	return domain.Admitted, nil
}

// AttachMatch — внешний шаг создания матча: запечатывает комнату.
// Пишет только если match_id ещё не установлен; комната после этого
// никогда не принимает новых участников и не переиспользуется.
func (c *Coordinator) AttachMatch(ctx context.Context, roomID, matchID string) (*domain.Room, error) {
	if strings.TrimSpace(matchID) == "" {
		return nil, fmt.Errorf("match id is required")
	}

	var (
		room  *domain.Room
		wrote bool
	)
	err := c.store.InTx(ctx, func(tx repository.Tx) error {
		if _, err := tx.LockRoom(ctx, roomID); err != nil {
			return err
		}
		var err error
		wrote, err = tx.SetMatchID(ctx, roomID, matchID)
		if err != nil {
			return err
		}
		room, err = tx.RoomWithMemberships(ctx, roomID)
		return err
	})
	if err != nil {
		return nil, err
	}

	if wrote {
		c.notifier.Publish(ctx, notify.Topic(roomID), notify.SnapshotFromRoom(room))
		slog.Info("room sealed", "room", roomID, "match", matchID)
	}

	return room, nil
}

// GetRoom возвращает согласованный снапшот комнаты.
func (c *Coordinator) GetRoom(ctx context.Context, roomID string) (*domain.Room, error) {
	return c.store.RoomWithMemberships(ctx, roomID)
}

// ListPublicRooms — публичные комнаты с курсорной пагинацией.
func (c *Coordinator) ListPublicRooms(ctx context.Context, limit int, cursor string) ([]domain.Room, string, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	return c.store.ListPublicRooms(ctx, limit, cursor)
}

func validateSpec(spec domain.NewRoomSpec) error {
	if spec.Capacity < 1 {
		return domain.ErrInvalidCapacity
	}
	if strings.TrimSpace(spec.GameCode) == "" {
		return domain.ErrEmptyGameCode
	}
	return nil
}
