package pool

import (
	"sync/atomic"
	"testing"
	"time"
)

func TestSemaphore_PostBeforeWait(t *testing.T) {
	s := newSemaphore()
	s.post()
	s.post()

	done := make(chan struct{})
	go func() {
		s.wait()
		s.wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("wait() blocked despite pending posts")
	}
}

func TestSemaphore_WaitBlocksUntilPost(t *testing.T) {
	s := newSemaphore()
	var woke int32

	go func() {
		s.wait()
		atomic.StoreInt32(&woke, 1)
	}()

	time.Sleep(20 * time.Millisecond)
	if atomic.LoadInt32(&woke) != 0 {
		t.Fatal("wait() returned without a post")
	}

	s.post()
	deadline := time.Now().Add(time.Second)
	for atomic.LoadInt32(&woke) == 0 {
		if time.Now().After(deadline) {
			t.Fatal("wait() did not return after post")
		}
		time.Sleep(time.Millisecond)
	}
}

func TestSemaphore_OnePostWakesOneWaiter(t *testing.T) {
	s := newSemaphore()
	var woke int32

	for i := 0; i < 3; i++ {
		go func() {
			s.wait()
			atomic.AddInt32(&woke, 1)
		}()
	}

	time.Sleep(20 * time.Millisecond)
	s.post()
	time.Sleep(50 * time.Millisecond)

	if got := atomic.LoadInt32(&woke); got != 1 {
		t.Errorf("woke = %d waiters after one post, want 1", got)
	}

	// Release the remaining waiters so the goroutines exit.
	s.post()
	s.post()
}
