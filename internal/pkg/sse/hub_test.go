package sse

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHub_PublishReachesTopicOnly(t *testing.T) {
	h := NewHub()

	a, cleanupA := h.Subscribe("org-1:branch-a")
	defer cleanupA()
	b, cleanupB := h.Subscribe("org-1:branch-b")
	defer cleanupB()

	h.Publish("org-1:branch-a", Event{Event: "live", Data: 1})

	select {
	case ev := <-a:
		assert.Equal(t, "org-1:branch-a", ev.Topic)
		assert.Equal(t, "live", ev.Event)
		assert.Equal(t, 1, ev.Data)
	default:
		t.Fatal("expected an event on branch-a")
	}

	select {
	case ev := <-b:
		t.Fatalf("unexpected event on branch-b: %+v", ev)
	default:
	}
}

func TestHub_TopicsAndCounts(t *testing.T) {
	h := NewHub()
	assert.Empty(t, h.Topics())

	_, c1 := h.Subscribe("b")
	_, c2 := h.Subscribe("a")
	_, c3 := h.Subscribe("a")

	assert.Equal(t, []string{"a", "b"}, h.Topics())
	assert.Equal(t, 2, h.SubscriberCount("a"))
	assert.Equal(t, 3, h.TotalSubscribers())

	c2()
	c2()
	c3()
	assert.Equal(t, []string{"b"}, h.Topics())
	assert.Equal(t, 0, h.SubscriberCount("a"))

	c1()
	assert.Equal(t, 0, h.TotalSubscribers())
}

func TestHub_FullBufferDoesNotBlock(t *testing.T) {
	h := NewHub()
	ch, cleanup := h.Subscribe("t")
	defer cleanup()

	for i := 0; i < h.bufferSize+5; i++ {
		h.Publish("t", Event{Event: "live", Data: i})
	}
	require.Len(t, ch, h.bufferSize)

	first := <-ch
	assert.Equal(t, 0, first.Data)
}

func TestHub_CleanupClosesChannel(t *testing.T) {
	h := NewHub()
	ch, cleanup := h.Subscribe("t")
	cleanup()

	_, open := <-ch
	assert.False(t, open)
}
