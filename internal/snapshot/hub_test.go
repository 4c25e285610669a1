package snapshot

import (
	"slices"
	"sync"
	"testing"
)

func TestHubDeliversInSubscriptionOrder(t *testing.T) {
	t.Parallel()

	var h Hub[int]
	var got []string
	h.Subscribe(func(v int) { got = append(got, "first") })
	h.Subscribe(func(v int) { got = append(got, "second") })

	h.Publish(1)

	if !slices.Equal(got, []string{"first", "second"}) {
		t.Errorf("delivery order = %v, want [first second]", got)
	}
}

func TestHubCancel(t *testing.T) {
	t.Parallel()

	var h Hub[int]
	var a, b int
	cancelA := h.Subscribe(func(v int) { a += v })
	h.Subscribe(func(v int) { b += v })

	h.Publish(1)
	cancelA()
	cancelA() // second cancel is a no-op
	h.Publish(10)

	if a != 1 {
		t.Errorf("cancelled subscriber total = %d, want 1", a)
	}
	if b != 11 {
		t.Errorf("remaining subscriber total = %d, want 11", b)
	}
}

func TestHubSubscribeDuringPublish(t *testing.T) {
	t.Parallel()

	var h Hub[int]
	calls := 0
	h.Subscribe(func(v int) {
		calls++
		if v == 1 {
			h.Subscribe(func(int) { calls++ })
		}
	})

	h.Publish(1)
	if calls != 1 {
		t.Errorf("calls after first publish = %d, want 1", calls)
	}
	h.Publish(2)
	if calls != 3 {
		t.Errorf("calls after second publish = %d, want 3", calls)
	}
}

func TestHubConcurrentPublish(t *testing.T) {
	t.Parallel()

	var (
		h   Hub[int]
		mu  sync.Mutex
		sum int
	)
	h.Subscribe(func(v int) {
		mu.Lock()
		sum += v
		mu.Unlock()
	})

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			h.Publish(1)
		}()
	}
	wg.Wait()

	if sum != 50 {
		t.Errorf("sum = %d, want 50", sum)
	}
}
