package notify

import (
	"context"
	"testing"
)

func snap(id string, members int) RoomSnapshot {
	s := RoomSnapshot{ID: id, Capacity: 4, GameCode: "chess"}
	for i := 0; i < members; i++ {
		s.Memberships = append(s.Memberships, MembershipItem{User: UserItem{ID: int64(i + 1)}})
	}
	return s
}

func TestHub_PublishReachesTopicSubscribersOnly(t *testing.T) {
	h := NewHub()
	ctx := context.Background()

	a := h.Subscribe(Topic("r1"))
	b := h.Subscribe(Topic("r1"))
	other := h.Subscribe(Topic("r2"))

	h.Publish(ctx, Topic("r1"), snap("r1", 2))

	for _, sub := range []*Subscription{a, b} {
		select {
		case got := <-sub.C():
			if got.ID != "r1" || len(got.Memberships) != 2 {
				t.Fatalf("unexpected snapshot: %+v", got)
			}
		default:
			t.Fatal("subscriber did not receive snapshot")
		}
	}

	select {
	case got := <-other.C():
		t.Fatalf("r2 subscriber received foreign snapshot: %+v", got)
	default:
	}
}

func TestHub_UnsubscribeClosesChannelAndStopsDelivery(t *testing.T) {
	h := NewHub()
	ctx := context.Background()

	sub := h.Subscribe(Topic("r1"))
	h.Unsubscribe(sub)

	if _, open := <-sub.C(); open {
		t.Fatal("channel must be closed after Unsubscribe")
	}

	// повторный Unsubscribe не должен паниковать
	h.Unsubscribe(sub)

	h.Publish(ctx, Topic("r1"), snap("r1", 1))
}

func TestHub_SlowSubscriberDoesNotBlockPublish(t *testing.T) {
	h := NewHub()
	ctx := context.Background()

	sub := h.Subscribe(Topic("r1"))
	for i := 0; i < subscriptionBuffer+10; i++ {
		h.Publish(ctx, Topic("r1"), snap("r1", i))
	}

	// буфер полон, лишнее отброшено, приём не блокируется
	received := 0
	for {
		select {
		case <-sub.C():
			received++
			continue
		default:
		}
		break
	}
	if received != subscriptionBuffer {
		t.Fatalf("expected %d buffered snapshots, got %d", subscriptionBuffer, received)
	}
}
