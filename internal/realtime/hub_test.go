package realtime

import "testing"

func TestPublishDeliversToTopicOnly(t *testing.T) {
	h := NewHub[int](0)
	a, cancelA := h.Subscribe("a")
	b, cancelB := h.Subscribe("b")
	defer cancelA()
	defer cancelB()

	h.Publish("a", 1)
	if got := <-a; got != 1 {
		t.Fatalf("got %d, want 1", got)
	}
	select {
	case v := <-b:
		t.Fatalf("topic b received %d", v)
	default:
	}
}

func TestLaggingSubscriberKeepsNewest(t *testing.T) {
	h := NewHub[int](2)
	ch, cancel := h.Subscribe("x")
	defer cancel()

	for i := 1; i <= 5; i++ {
		h.Publish("x", i)
	}
	first, second := <-ch, <-ch
	if first != 4 || second != 5 {
		t.Fatalf("got %d, %d; want 4, 5", first, second)
	}
}

func TestCancelClosesAndIsIdempotent(t *testing.T) {
	h := NewHub[string](1)
	ch, cancel := h.Subscribe("x")
	cancel()
	cancel()
	if _, open := <-ch; open {
		t.Fatal("channel should be closed after cancel")
	}
	if n := h.Subscribers("x"); n != 0 {
		t.Fatalf("subscribers = %d", n)
	}
	h.Publish("x", "no panic")
}
