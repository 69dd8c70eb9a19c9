package shutdown

import (
	"context"
	"errors"
	"sync"
	"syscall"
	"testing"
	"time"
)

func recordHooks(h *Handler, order *[]string, mu *sync.Mutex, names ...string) {
	for _, name := range names {
		h.OnShutdown(name, func(context.Context) error {
			mu.Lock()
			*order = append(*order, name)
			mu.Unlock()
			return nil
		})
	}
}

func waitAsync(h *Handler, ctx context.Context) <-chan error {
	errCh := make(chan error, 1)
	go func() { errCh <- h.Wait(ctx) }()
	return errCh
}

func TestNewHandler(t *testing.T) {
	h := NewHandler(5*time.Second, nil)
	if h.timeout != 5*time.Second {
		t.Errorf("timeout = %v, want 5s", h.timeout)
	}
	if h.logger == nil {
		t.Error("logger should default to slog.Default")
	}

	select {
	case <-h.Done():
		t.Error("Done channel should not be closed initially")
	default:
	}
}

func TestHandler_Wait_WithSignal(t *testing.T) {
	h := NewHandler(5*time.Second, nil)

	var order []string
	var mu sync.Mutex
	recordHooks(h, &order, &mu, "store", "admin", "line")

	errCh := waitAsync(h, context.Background())
	time.Sleep(50 * time.Millisecond)
	syscall.Kill(syscall.Getpid(), syscall.SIGINT)

	select {
	case err := <-errCh:
		if err != nil {
			t.Errorf("Wait() returned error: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Wait() did not complete in time")
	}

	mu.Lock()
	defer mu.Unlock()
	want := []string{"line", "admin", "store"}
	if len(order) != len(want) {
		t.Fatalf("hooks called = %v, want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Errorf("hooks called = %v, want %v", order, want)
			break
		}
	}

	select {
	case <-h.Done():
	default:
		t.Error("Done channel should be closed after Wait completes")
	}
}

func TestHandler_Trigger(t *testing.T) {
	h := NewHandler(time.Second, nil)
	called := make(chan struct{}, 1)
	h.OnShutdown("line", func(context.Context) error {
		called <- struct{}{}
		return nil
	})

	errCh := waitAsync(h, context.Background())
	h.Trigger()
	h.Trigger()

	select {
	case err := <-errCh:
		if err != nil {
			t.Errorf("Wait() returned error: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Wait() did not complete after Trigger")
	}
	select {
	case <-called:
	default:
		t.Error("hook was not called")
	}
}

func TestHandler_Wait_ContextCancel(t *testing.T) {
	h := NewHandler(time.Second, nil)
	ctx, cancel := context.WithCancel(context.Background())

	errCh := waitAsync(h, ctx)
	cancel()

	select {
	case <-errCh:
	case <-time.After(2 * time.Second):
		t.Fatal("Wait() did not return after context cancel")
	}
	<-h.Done()
}

func TestHandler_Wait_HookError(t *testing.T) {
	h := NewHandler(5*time.Second, nil)

	errStore := errors.New("close failed")
	errLine := errors.New("drain failed")
	var ranAfterFailure bool

	h.OnShutdown("store", func(context.Context) error { return errStore })
	h.OnShutdown("admin", func(context.Context) error {
		ranAfterFailure = true
		return nil
	})
	h.OnShutdown("line", func(context.Context) error { return errLine })

	errCh := waitAsync(h, context.Background())
	h.Trigger()

	select {
	case err := <-errCh:
		if !errors.Is(err, errStore) || !errors.Is(err, errLine) {
			t.Errorf("Wait() = %v, want both hook errors", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Wait() did not complete in time")
	}
	if !ranAfterFailure {
		t.Error("a failing hook must not stop later hooks")
	}
}

func TestHandler_HookDeadline(t *testing.T) {
	h := NewHandler(50*time.Millisecond, nil)
	var hadDeadline bool
	h.OnShutdown("line", func(ctx context.Context) error {
		_, hadDeadline = ctx.Deadline()
		return nil
	})

	errCh := waitAsync(h, context.Background())
	h.Trigger()
	<-errCh

	if !hadDeadline {
		t.Error("hook context should carry the shutdown deadline")
	}
}

func TestHandler_ConcurrentOnShutdown(t *testing.T) {
	h := NewHandler(5*time.Second, nil)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			h.OnShutdown("noop", func(context.Context) error { return nil })
		}()
	}
	wg.Wait()

	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.hooks) != 10 {
		t.Errorf("expected 10 hooks, got %d", len(h.hooks))
	}
}
