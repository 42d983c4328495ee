package notify

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func received(sub *Subscription) bool {
	select {
	case <-sub.C:
		return true
	case <-time.After(100 * time.Millisecond):
		return false
	}
}

func TestPublish_ReachesAllSubscribersOfTopic(t *testing.T) {
	hub := NewHub()
	a := hub.Subscribe("session-1")
	b := hub.Subscribe("session-1")
	other := hub.Subscribe("session-2")
	defer a.Close()
	defer b.Close()
	defer other.Close()

	hub.Publish("session-1")

	assert.True(t, received(a))
	assert.True(t, received(b))
	assert.False(t, received(other))
}

func TestPublish_CoalescesWithoutBlocking(t *testing.T) {
	hub := NewHub()
	sub := hub.Subscribe("s")
	defer sub.Close()

	done := make(chan struct{})
	go func() {
		for i := 0; i < 100; i++ {
			hub.Publish("s")
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("publish blocked on a slow subscriber")
	}

	assert.True(t, received(sub))
	assert.False(t, received(sub), "pending signals should coalesce into one")
}

func TestPublish_NoSubscribers(t *testing.T) {
	hub := NewHub()
	assert.NotPanics(t, func() { hub.Publish("nobody") })
}

func TestClose_Unsubscribes(t *testing.T) {
	hub := NewHub()
	sub := hub.Subscribe("s")
	assert.Equal(t, 1, hub.Subscribers("s"))

	sub.Close()
	sub.Close()

	assert.Equal(t, 0, hub.Subscribers("s"))
	hub.Publish("s")
	assert.False(t, received(sub))
}

func TestHub_ConcurrentUse(t *testing.T) {
	hub := NewHub()
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			sub := hub.Subscribe("s")
			hub.Publish("s")
			sub.Close()
		}()
		go func() {
			defer wg.Done()
			hub.Publish("s")
		}()
	}
	wg.Wait()
	assert.Equal(t, 0, hub.Subscribers("s"))
}
