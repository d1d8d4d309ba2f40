package hook

import (
	"context"
	"log"
	"sync"
)

// DefaultQueueSize bounds the events waiting for hooks.
const DefaultQueueSize = 32

// Dispatcher runs matching hooks for each event on a single worker
// goroutine, so hooks never block the frame pipeline and run in event order.
type Dispatcher struct {
	manager  *Manager
	executor *Executor
	queue    chan Event

	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	mu      sync.Mutex
	stopped bool

	// onResult is called after every hook run. Used by tests.
	onResult func(h *Hook, ev Event, resp *Response, err error)
}

// NewDispatcher creates a Dispatcher. Call Start before Handle.
func NewDispatcher(manager *Manager, executor *Executor, queueSize int) *Dispatcher {
	if queueSize <= 0 {
		queueSize = DefaultQueueSize
	}
	return &Dispatcher{
		manager:  manager,
		executor: executor,
		queue:    make(chan Event, queueSize),
	}
}

// Start launches the worker.
func (d *Dispatcher) Start(ctx context.Context) {
	d.ctx, d.cancel = context.WithCancel(ctx)
	d.wg.Add(1)
	go d.run()
}

// Stop handles the events already queued, then stops the worker.
func (d *Dispatcher) Stop() {
	d.mu.Lock()
	if d.stopped {
		d.mu.Unlock()
		return
	}
	d.stopped = true
	close(d.queue)
	d.mu.Unlock()

	d.wg.Wait()
	if d.cancel != nil {
		d.cancel()
	}
}

// Handle queues ev. Events are dropped when the queue is full or the
// dispatcher has stopped.
func (d *Dispatcher) Handle(ev Event) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return
	}
	select {
	case d.queue <- ev:
	default:
		log.Printf("Hook queue full, dropping %s event for body %d", ev.Name(), ev.BodyID)
	}
}

func (d *Dispatcher) run() {
	defer d.wg.Done()

	for ev := range d.queue {
		for _, h := range d.manager.For(ev.Name()) {
			resp, err := d.executor.Execute(d.ctx, h, NewRequest(h, ev))
			switch {
			case err != nil:
				log.Printf("Hook %s: %v", h.Manifest.Name, err)
			case !resp.Success:
				log.Printf("Hook %s reported failure: %s", h.Manifest.Name, resp.Error)
			}
			if d.onResult != nil {
				d.onResult(h, ev, resp, err)
			}
		}
	}
}
