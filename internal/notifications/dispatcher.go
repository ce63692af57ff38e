package notifications

import (
	"context"
	"sync"

	"shelfkeeper/pkg/logger"
)

// Dispatcher moves notifications off the request path. Enqueue never blocks;
// a bounded number of workers drain the queue into the sink.
type Dispatcher struct {
	sink    Sender
	policy  RetryPolicy
	queue   chan *EmailNotification
	workers int
	log     *logger.Logger

	mu      sync.Mutex
	started bool
	closed  bool
	wg      sync.WaitGroup
}

type DispatcherOptions struct {
	QueueSize int
	Workers   int
	Policy    RetryPolicy
	Logger    *logger.Logger
}

func NewDispatcher(sink Sender, opts DispatcherOptions) *Dispatcher {
	if opts.QueueSize <= 0 {
		opts.QueueSize = 256
	}
	if opts.Workers <= 0 {
		opts.Workers = 2
	}
	if opts.Logger == nil {
		opts.Logger = logger.GetDefault()
	}
	return &Dispatcher{
		sink:    sink,
		policy:  opts.Policy,
		queue:   make(chan *EmailNotification, opts.QueueSize),
		workers: opts.Workers,
		log:     opts.Logger.WithComponent("notifications.dispatcher"),
	}
}

// Enqueue reports whether the notification was accepted. A full or stopped
// queue drops it.
func (d *Dispatcher) Enqueue(ctx context.Context, notification *EmailNotification) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		d.log.WarnWithContext(ctx, "Dispatcher stopped, dropping notification", nil, dropFields(notification))
		return false
	}

	select {
	case d.queue <- notification:
		return true
	default:
		d.log.WarnWithContext(ctx, "Notification queue full, dropping notification", nil, dropFields(notification))
		return false
	}
}

// Start launches the workers. Workers keep draining after ctx ends until
// Stop closes the queue.
func (d *Dispatcher) Start(ctx context.Context) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.started || d.closed {
		return
	}
	d.started = true

	ctx = context.WithoutCancel(ctx)
	for i := 0; i < d.workers; i++ {
		d.wg.Add(1)
		go func() {
			defer d.wg.Done()
			for notification := range d.queue {
				d.deliver(ctx, notification)
			}
		}()
	}
}

// Stop closes the queue and waits for queued notifications to drain.
func (d *Dispatcher) Stop() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	close(d.queue)
	d.mu.Unlock()

	d.wg.Wait()
}

func (d *Dispatcher) deliver(ctx context.Context, notification *EmailNotification) {
	if err := sendWithRetry(ctx, d.sink, notification, d.policy); err != nil {
		d.log.ErrorWithContext(ctx, "Notification delivery failed", err, map[string]interface{}{
			"notification_id": notification.ID.String(),
			"type":            string(notification.Type),
			"retries":         notification.RetryCount,
		})
	}
}

func dropFields(notification *EmailNotification) map[string]interface{} {
	return map[string]interface{}{
		"notification_id": notification.ID.String(),
		"type":            string(notification.Type),
		"recipient_id":    notification.RecipientID.String(),
	}
}
