package parallel

import (
	"runtime"
	"sync"
	"sync/atomic"
)

// WorkerPool runs independent geometry jobs across a fixed set of
// goroutines. Flattening and validation both produce per-layer work units
// of very uneven cost (a ground plane merge dwarfs a label layer), so each
// worker owns a queue and steals from the others when its own runs dry.
//
// Thread safety: WorkerPool is safe for concurrent use.
type WorkerPool struct {
	workers int

	// queues holds per-worker job queues. A worker pulls from its own
	// queue first and steals from the others when idle.
	queues []chan func()

	done    chan struct{}
	wg      sync.WaitGroup
	running atomic.Bool
}

// NewWorkerPool creates a pool with the given number of workers. If workers
// is 0 or negative, GOMAXPROCS is used. Workers start immediately.
func NewWorkerPool(workers int) *WorkerPool {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	queueSize := workers * 4
	if queueSize < 8 {
		queueSize = 8
	}

	p := &WorkerPool{
		workers: workers,
		queues:  make([]chan func(), workers),
		done:    make(chan struct{}),
	}
	for i := 0; i < workers; i++ {
		p.queues[i] = make(chan func(), queueSize)
	}

	p.running.Store(true)
	p.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go p.worker(i)
	}
	return p
}

func (p *WorkerPool) worker(id int) {
	defer p.wg.Done()

	own := p.queues[id]
	for {
		select {
		case <-p.done:
			drain(own)
			return
		case job := <-own:
			if job != nil {
				job()
			}
		default:
			if stolen := p.steal(id); stolen != nil {
				stolen()
			} else {
				select {
				case <-p.done:
					drain(own)
					return
				case job := <-own:
					if job != nil {
						job()
					}
				}
			}
		}
	}
}

// drain executes whatever is still queued so Close never drops work.
func drain(queue chan func()) {
	for {
		select {
		case job := <-queue:
			if job != nil {
				job()
			}
		default:
			return
		}
	}
}

// steal takes one job from some other worker's queue, or returns nil.
func (p *WorkerPool) steal(myID int) func() {
	for i := 0; i < p.workers; i++ {
		if i == myID {
			continue
		}
		select {
		case job := <-p.queues[i]:
			return job
		default:
		}
	}
	return nil
}

// Run distributes jobs round-robin across the workers and blocks until
// every job has finished. A closed pool runs the jobs inline instead of
// dropping them.
func (p *WorkerPool) Run(jobs []func()) {
	if len(jobs) == 0 {
		return
	}
	if !p.running.Load() {
		for _, job := range jobs {
			job()
		}
		return
	}

	var wgJobs sync.WaitGroup
	wgJobs.Add(len(jobs))
	for i, fn := range jobs {
		job := fn
		wrapped := func() {
			defer wgJobs.Done()
			job()
		}
		select {
		case p.queues[i%p.workers] <- wrapped:
		case <-p.done:
			wrapped()
		}
	}
	wgJobs.Wait()
}

// Submit queues a single job on the least-loaded worker without waiting
// for it. A closed pool runs the job inline.
func (p *WorkerPool) Submit(fn func()) {
	if fn == nil {
		return
	}
	if !p.running.Load() {
		fn()
		return
	}

	minIdx := 0
	for i := 1; i < p.workers; i++ {
		if len(p.queues[i]) < len(p.queues[minIdx]) {
			minIdx = i
		}
	}
	select {
	case p.queues[minIdx] <- fn:
	case <-p.done:
		fn()
	}
}

// Close stops accepting work, finishes everything already queued, and
// waits for the workers to exit. Safe to call multiple times.
func (p *WorkerPool) Close() {
	if !p.running.CompareAndSwap(true, false) {
		return
	}
	close(p.done)
	p.wg.Wait()
}

// Workers returns the number of worker goroutines.
func (p *WorkerPool) Workers() int {
	return p.workers
}
