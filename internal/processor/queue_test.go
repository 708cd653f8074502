package processor

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"stripchess/internal/service"
)

// blockingAnalyzer holds every analysis until release is closed
type blockingAnalyzer struct {
	release chan struct{}
	mu      sync.Mutex
	calls   int
}

func (b *blockingAnalyzer) AnalyzeRecord(ctx context.Context, record string, depth int) (*service.Analysis, error) {
	b.mu.Lock()
	b.calls++
	b.mu.Unlock()
	select {
	case <-b.release:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	if record == "fail" {
		return nil, errors.New("boom")
	}
	return &service.Analysis{Record: record, Depth: depth, Score: 7}, nil
}

func waitCtx(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)
	return ctx
}

func TestQueueLifecycle(t *testing.T) {
	analyzer := &blockingAnalyzer{release: make(chan struct{})}
	q, err := NewAnalysisQueue(analyzer, 2, zerolog.Nop())
	if err != nil {
		t.Fatal(err)
	}
	defer q.Shutdown(time.Second)

	ok, err := q.Submit("good", 3)
	if err != nil {
		t.Fatal(err)
	}
	if ok.Status != JobPending || ok.ID == "" {
		t.Errorf("submitted job = %+v", ok)
	}
	bad, err := q.Submit("fail", 1)
	if err != nil {
		t.Fatal(err)
	}

	close(analyzer.release)

	done, err := q.Wait(waitCtx(t), ok.ID)
	if err != nil {
		t.Fatal(err)
	}
	if done.Status != JobDone || done.Analysis == nil || done.Analysis.Score != 7 {
		t.Errorf("finished job = %+v", done)
	}

	failed, err := q.Wait(waitCtx(t), bad.ID)
	if err != nil {
		t.Fatal(err)
	}
	if failed.Status != JobFailed || failed.Err == nil {
		t.Errorf("failed job = %+v", failed)
	}

	if got, found := q.Get(ok.ID); !found || got.Status != JobDone {
		t.Errorf("Get = %+v, %v", got, found)
	}
	if _, found := q.Get("missing"); found {
		t.Error("unknown job should not be found")
	}
	if _, err := q.Wait(waitCtx(t), "missing"); !errors.Is(err, ErrJobNotFound) {
		t.Errorf("err = %v, want ErrJobNotFound", err)
	}
}

func TestQueueWaitTimeout(t *testing.T) {
	analyzer := &blockingAnalyzer{release: make(chan struct{})}
	q, err := NewAnalysisQueue(analyzer, 1, zerolog.Nop())
	if err != nil {
		t.Fatal(err)
	}
	defer func() {
		close(analyzer.release)
		q.Shutdown(time.Second)
	}()

	job, err := q.Submit("slow", 1)
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	got, err := q.Wait(ctx, job.ID)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("err = %v, want deadline exceeded", err)
	}
	if got.Status != JobPending && got.Status != JobRunning {
		t.Errorf("status = %s, want pending or running", got.Status)
	}
}

func TestQueueFull(t *testing.T) {
	analyzer := &blockingAnalyzer{release: make(chan struct{})}
	q, err := NewAnalysisQueue(analyzer, 1, zerolog.Nop())
	if err != nil {
		t.Fatal(err)
	}
	defer func() {
		close(analyzer.release)
		q.Shutdown(5 * time.Second)
	}()

	// one job may be held by the worker, the rest fill the buffer
	var full bool
	for i := 0; i < defaultQueueSize+2; i++ {
		if _, err := q.Submit("job", 1); errors.Is(err, ErrQueueFull) {
			full = true
			break
		} else if err != nil {
			t.Fatal(err)
		}
	}
	if !full {
		t.Error("queue never reported full")
	}
}

func TestQueueShutdown(t *testing.T) {
	analyzer := &blockingAnalyzer{release: make(chan struct{})}
	close(analyzer.release)
	q, err := NewAnalysisQueue(analyzer, 2, zerolog.Nop())
	if err != nil {
		t.Fatal(err)
	}

	results := make(chan Job, 1)
	if _, err := q.SubmitAsync("async", 2, func(j Job) { results <- j }); err != nil {
		t.Fatal(err)
	}
	select {
	case j := <-results:
		if j.Status != JobDone {
			t.Errorf("async job = %+v", j)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("callback not invoked")
	}

	if err := q.Shutdown(time.Second); err != nil {
		t.Fatal(err)
	}
	if _, err := q.Submit("late", 1); !errors.Is(err, ErrShuttingDown) {
		t.Errorf("err = %v, want ErrShuttingDown", err)
	}
	if err := q.Shutdown(time.Second); err != nil {
		t.Errorf("second shutdown: %v", err)
	}
}
