package parallel

import (
	"sync/atomic"
	"testing"
)

func TestRunExecutesAllJobs(t *testing.T) {
	p := NewWorkerPool(4)
	defer p.Close()

	var sum atomic.Int64
	jobs := make([]func(), 100)
	for i := range jobs {
		n := int64(i + 1)
		jobs[i] = func() { sum.Add(n) }
	}
	p.Run(jobs)

	if got := sum.Load(); got != 5050 {
		t.Errorf("sum = %d, want 5050", got)
	}
}

func TestRunEmpty(t *testing.T) {
	p := NewWorkerPool(2)
	defer p.Close()
	p.Run(nil)
}

func TestRunAfterCloseIsInline(t *testing.T) {
	p := NewWorkerPool(2)
	p.Close()

	var n atomic.Int32
	p.Run([]func(){
		func() { n.Add(1) },
		func() { n.Add(1) },
	})
	if n.Load() != 2 {
		t.Errorf("ran %d jobs after close, want 2", n.Load())
	}
}

func TestSubmitAndClose(t *testing.T) {
	p := NewWorkerPool(3)

	var n atomic.Int32
	for i := 0; i < 50; i++ {
		p.Submit(func() { n.Add(1) })
	}
	// Close drains all queued work before returning.
	p.Close()

	if n.Load() != 50 {
		t.Errorf("executed %d of 50 submitted jobs", n.Load())
	}
}

func TestDefaultWorkerCount(t *testing.T) {
	p := NewWorkerPool(0)
	defer p.Close()
	if p.Workers() < 1 {
		t.Errorf("workers = %d", p.Workers())
	}
}

func TestCloseTwice(t *testing.T) {
	p := NewWorkerPool(1)
	p.Close()
	p.Close()
}
