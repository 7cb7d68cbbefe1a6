package notify

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/redis/go-redis/v9"
)

const redisChannel = "lobby.room_events"

// envelope — обёртка снапшота для межинстансовой доставки.
// src нужен, чтобы инстанс не доставлял себе собственные публикации второй раз.
type envelope struct {
	Src      string       `json:"src"`
	Topic    string       `json:"topic"`
	Snapshot RoomSnapshot `json:"snapshot"`
}

/*
RedisBridge расширяет Hub на несколько инстансов: локальная публикация
уходит подписчикам этого процесса напрямую и в redis-канал; входящие
сообщения других инстансов ретранслируются в локальный Hub.
*/
type RedisBridge struct {
	hub        *Hub
	client     *redis.Client
	instanceID string
	cancel     context.CancelFunc
	done       chan struct{}
}

func NewRedisBridge(hub *Hub, client *redis.Client, instanceID string) *RedisBridge {
	return &RedisBridge{
		hub:        hub,
		client:     client,
		instanceID: instanceID,
		done:       make(chan struct{}),
	}
}

// Run запускает ретрансляцию; блокирует до остановки подписки.
func (b *RedisBridge) Run(ctx context.Context) {
	ctx, b.cancel = context.WithCancel(ctx)
	defer close(b.done)

	sub := b.client.Subscribe(ctx, redisChannel)
	defer func() { _ = sub.Close() }()

	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-sub.Channel():
			if !ok {
				return
			}
			var env envelope
			if err := json.Unmarshal([]byte(msg.Payload), &env); err != nil {
				slog.Warn("notify: bad redis payload", "err", err)
				continue
			}
			if env.Src == b.instanceID {
				continue
			}
			b.hub.Publish(ctx, env.Topic, env.Snapshot)
		}
	}
}

func (b *RedisBridge) Close() {
	if b.cancel != nil {
		b.cancel()
		<-b.done
	}
}

func (b *RedisBridge) Publish(ctx context.Context, topic string, snap RoomSnapshot) {
	b.hub.Publish(ctx, topic, snap)

	data, err := json.Marshal(envelope{Src: b.instanceID, Topic: topic, Snapshot: snap})
	if err != nil {
		slog.Error("notify: marshal envelope", "err", err)
		return
	}
	// best-effort: недоступный redis не должен ломать сам admit
	if err := b.client.Publish(ctx, redisChannel, data).Err(); err != nil {
		slog.Warn("notify: redis publish failed", "topic", topic, "err", err)
	}
}
