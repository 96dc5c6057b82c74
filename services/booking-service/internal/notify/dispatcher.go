// Package notify hands booking notifications to a sender without making callers wait.
package notify

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/md-rashed-zaman/agendou/libs/events"
)

type Sender interface {
	Send(ctx context.Context, n events.Notification) error
	Name() string
}

type Options struct {
	QueueSize   int
	Workers     int
	SendTimeout time.Duration
}

// Dispatcher owns a bounded queue drained by a fixed set of workers.
type Dispatcher struct {
	sender  Sender
	logger  *slog.Logger
	timeout time.Duration

	mu     sync.RWMutex
	closed bool
	queue  chan events.Notification
	wg     sync.WaitGroup
}

func NewDispatcher(sender Sender, logger *slog.Logger, opts Options) *Dispatcher {
	if opts.QueueSize <= 0 {
		opts.QueueSize = 256
	}
	if opts.Workers <= 0 {
		opts.Workers = 2
	}
	if opts.SendTimeout <= 0 {
		opts.SendTimeout = 15 * time.Second
	}
	d := &Dispatcher{
		sender:  sender,
		logger:  logger,
		timeout: opts.SendTimeout,
		queue:   make(chan events.Notification, opts.QueueSize),
	}
	for i := 0; i < opts.Workers; i++ {
		d.wg.Add(1)
		go d.work()
	}
	return d
}

// Dispatch enqueues n and returns immediately. It reports false when the queue is full
// or the dispatcher is shut down; the notification is then dropped.
func (d *Dispatcher) Dispatch(n events.Notification) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		d.logger.Warn("notification dropped: dispatcher closed", "event_id", n.EventID, "type", n.Type)
		return false
	}
	select {
	case d.queue <- n:
		return true
	default:
		d.logger.Warn("notification dropped: queue full", "event_id", n.EventID, "type", n.Type)
		return false
	}
}

func (d *Dispatcher) work() {
	defer d.wg.Done()
	for n := range d.queue {
		d.send(n)
	}
}

func (d *Dispatcher) send(n events.Notification) {
	ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
	defer cancel()

	if err := d.sender.Send(ctx, n); err != nil {
		d.logger.Error("notification failed", "sender", d.sender.Name(), "event_id", n.EventID, "type", n.Type, "err", err)
		return
	}
	d.logger.Info("notification sent", "sender", d.sender.Name(), "event_id", n.EventID, "type", n.Type)
}

// Shutdown stops accepting notifications and waits for queued ones to be sent or for
// ctx to end.
func (d *Dispatcher) Shutdown(ctx context.Context) error {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		close(d.queue)
	}
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return errors.Join(errors.New("notification queue not drained"), ctx.Err())
	}
}
