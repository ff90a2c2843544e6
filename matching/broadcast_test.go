package matching

import (
	"testing"
)

func TestStream_FanOut(t *testing.T) {
	stream := NewStream[int](4)

	first := stream.Subscribe()
	second := stream.Subscribe()
	defer first.Close()
	defer second.Close()

	if stream.SubscriberCount() != 2 {
		t.Fatalf("expected 2 subscribers, got %d", stream.SubscriberCount())
	}

	stream.Publish(7)

	if v := <-first.C(); v != 7 {
		t.Errorf("expected 7, got %d", v)
	}
	if v := <-second.C(); v != 7 {
		t.Errorf("expected 7, got %d", v)
	}
}

func TestStream_LossyPublish(t *testing.T) {
	stream := NewStream[int](1)

	sub := stream.Subscribe()
	defer sub.Close()

	// One fits the buffer, two are dropped.
	stream.Publish(1)
	stream.Publish(2)
	stream.Publish(3)

	if v := <-sub.C(); v != 1 {
		t.Errorf("expected the buffered message, got %d", v)
	}
	if missed := sub.Missed(); missed != 2 {
		t.Errorf("expected 2 missed, got %d", missed)
	}
	if missed := sub.Missed(); missed != 0 {
		t.Errorf("expected missed counter to reset, got %d", missed)
	}
}

func TestStream_CloseUnsubscribes(t *testing.T) {
	stream := NewStream[int](1)

	sub := stream.Subscribe()
	sub.Close()

	if stream.SubscriberCount() != 0 {
		t.Errorf("expected 0 subscribers, got %d", stream.SubscriberCount())
	}

	if _, open := <-sub.C(); open {
		t.Errorf("expected the channel to be closed")
	}

	// A second close is a no-op.
	sub.Close()

	// Publishing after the last unsubscribe must not panic.
	stream.Publish(1)
}
