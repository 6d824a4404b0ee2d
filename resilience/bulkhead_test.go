package resilience

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestBulkhead_LimitsConcurrency(t *testing.T) {
	b := NewBulkhead(BulkheadConfig{Name: "scripts", MaxConcurrent: 2, MaxWait: WaitForContext})

	var active, peak int32
	var wg sync.WaitGroup
	for i := 0; i < 6; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := b.Execute(context.Background(), func() error {
				n := atomic.AddInt32(&active, 1)
				for {
					p := atomic.LoadInt32(&peak)
					if n <= p || atomic.CompareAndSwapInt32(&peak, p, n) {
						break
					}
				}
				time.Sleep(10 * time.Millisecond)
				atomic.AddInt32(&active, -1)
				return nil
			})
			if err != nil {
				t.Errorf("expected no error, got %v", err)
			}
		}()
	}
	wg.Wait()

	if peak > 2 {
		t.Errorf("expected at most 2 concurrent holders, got %d", peak)
	}
	if b.InUse() != 0 {
		t.Errorf("expected all slots released, got %d in use", b.InUse())
	}
}

func TestBulkhead_RejectsWhenFull(t *testing.T) {
	var rejected string
	b := NewBulkhead(BulkheadConfig{
		Name:          "scripts",
		MaxConcurrent: 1,
		OnReject:      func(name string) { rejected = name },
	})

	release, err := b.Acquire(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer release()

	if err := b.Execute(context.Background(), func() error { return nil }); !errors.Is(err, ErrBulkheadFull) {
		t.Errorf("expected ErrBulkheadFull, got %v", err)
	}
	if rejected != "scripts" {
		t.Errorf("expected OnReject to be called with name, got %q", rejected)
	}
}

func TestBulkhead_WaitTimeout(t *testing.T) {
	b := NewBulkhead(BulkheadConfig{MaxConcurrent: 1, MaxWait: 20 * time.Millisecond})
	release, _ := b.Acquire(context.Background())
	defer release()

	if _, err := b.Acquire(context.Background()); !errors.Is(err, ErrBulkheadTimeout) {
		t.Errorf("expected ErrBulkheadTimeout, got %v", err)
	}
}

func TestBulkhead_WaitForContextCanceled(t *testing.T) {
	b := NewBulkhead(BulkheadConfig{MaxConcurrent: 1, MaxWait: WaitForContext})
	release, _ := b.Acquire(context.Background())
	defer release()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if _, err := b.Acquire(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected context.DeadlineExceeded, got %v", err)
	}
}

func TestBulkhead_WaitForContextGetsSlot(t *testing.T) {
	b := NewBulkhead(BulkheadConfig{MaxConcurrent: 1, MaxWait: WaitForContext})
	release, _ := b.Acquire(context.Background())

	go func() {
		time.Sleep(10 * time.Millisecond)
		release()
	}()

	second, err := b.Acquire(context.Background())
	if err != nil {
		t.Fatalf("expected slot after release, got %v", err)
	}
	second()
}
