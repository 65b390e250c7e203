package bus

import (
	"errors"
	"testing"
)

func TestBasicPublishSubscribe(t *testing.T) {
	b := New()
	var got any
	_, err := b.Subscribe("score.awarded", func(e Event) error {
		got = e.Data()
		return nil
	})
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	if err = b.Publish(NewEvent("score.awarded", "collector", 40)); err != nil {
		t.Fatalf("publish: %v", err)
	}
	if got != 40 {
		t.Fatalf("handler not called with payload, got %v", got)
	}
}

func TestDeliveryFollowsSubscriptionOrder(t *testing.T) {
	b := New()
	var order []int
	for i := 0; i < 8; i++ {
		_, _ = b.Subscribe("ev", func(Event) error { order = append(order, i); return nil })
	}
	_ = b.Publish(NewEvent("ev", "src", nil))
	if len(order) != 8 {
		t.Fatalf("expected 8 deliveries, got %v", order)
	}
	for i, v := range order {
		if v != i {
			t.Fatalf("delivery out of order: %v", order)
		}
	}
}

func TestHandlerErrorsAreJoined(t *testing.T) {
	b := New()
	errA := errors.New("a")
	errB := errors.New("b")
	_, _ = b.Subscribe("x", func(Event) error { return errA })
	_, _ = b.Subscribe("x", func(Event) error { return errB })
	err := b.Publish(NewEvent("x", "src", nil))
	if !errors.Is(err, errA) || !errors.Is(err, errB) {
		t.Fatalf("expected joined error, got %v", err)
	}
}

func TestCancelStopsDelivery(t *testing.T) {
	b := New()
	calls, other := 0, 0
	sub, _ := b.Subscribe("x", func(Event) error { calls++; return nil })
	_, _ = b.Subscribe("x", func(Event) error { other++; return nil })
	_ = b.Publish(NewEvent("x", "src", nil))
	if err := b.Unsubscribe(sub); err != nil {
		t.Fatalf("unsubscribe: %v", err)
	}
	if err := sub.Cancel(); err != nil {
		t.Fatalf("second cancel: %v", err)
	}
	_ = b.Publish(NewEvent("x", "src", nil))
	if calls != 1 || other != 2 {
		t.Fatalf("cancel did not stop delivery: calls=%d other=%d", calls, other)
	}
	if err := b.Unsubscribe(nil); err != nil {
		t.Fatalf("nil unsubscribe: %v", err)
	}
}

func TestHandlersMayPublishAndCancel(t *testing.T) {
	b := New()
	var chained int
	var self Subscription
	self, _ = b.Subscribe("first", func(Event) error {
		_ = self.Cancel()
		return b.Publish(NewEvent("second", "src", nil))
	})
	_, _ = b.Subscribe("second", func(Event) error { chained++; return nil })

	_ = b.Publish(NewEvent("first", "src", nil))
	_ = b.Publish(NewEvent("first", "src", nil))
	if chained != 1 {
		t.Fatalf("expected one chained delivery, got %d", chained)
	}
}

func TestNilHandlerRejected(t *testing.T) {
	if _, err := New().Subscribe("x", nil); err == nil {
		t.Fatal("expected error for nil handler")
	}
}
