package eventboard

import (
	"context"
	"sync"
	"time"
)

// Poller is the handle for a running polling loop. Whoever calls Start owns
// the handle and must Stop it on teardown.
type Poller struct {
	controller *Controller
	cancel     context.CancelFunc
	done       chan struct{}
	inflight   sync.WaitGroup
	stopOnce   sync.Once
}

// Start performs an immediate poll and then polls every PollInterval until
// the returned handle is stopped or ctx is cancelled. Ticks never wait for a
// previous poll: overlapping polls run concurrently.
func (c *Controller) Start(ctx context.Context) *Poller {
	ctx, cancel := context.WithCancel(ctx)
	p := &Poller{
		controller: c,
		cancel:     cancel,
		done:       make(chan struct{}),
	}
	go p.run(ctx, c.opts.PollInterval)
	return p
}

func (p *Poller) run(ctx context.Context, interval time.Duration) {
	defer close(p.done)
	p.launch(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.launch(ctx)
		}
	}
}

func (p *Poller) launch(ctx context.Context) {
	p.inflight.Add(1)
	go func() {
		defer p.inflight.Done()
		_ = p.controller.FetchSnapshot(ctx)
	}()
}

// Refresh runs a manual poll outside the schedule.
func (p *Poller) Refresh(ctx context.Context) error {
	return p.controller.Refresh(ctx)
}

// Controller returns the controller driven by this poller.
func (p *Poller) Controller() *Controller {
	return p.controller
}

// Stop cancels the schedule and any in-flight polls, then waits for them to
// return. It is safe to call more than once.
func (p *Poller) Stop() {
	p.stopOnce.Do(func() {
		p.cancel()
		<-p.done
		p.inflight.Wait()
	})
}

// Done is closed once the schedule loop has exited.
func (p *Poller) Done() <-chan struct{} {
	return p.done
}
