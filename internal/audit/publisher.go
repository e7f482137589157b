package audit

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"github.com/mssola/useragent"

	"kycdsl/pkg/requestcontext"
)

var (
	ErrBufferFull = errors.New("audit buffer full")
	ErrClosed     = errors.New("audit publisher closed")
)

// Publisher captures structured audit events. Synchronous by default; with
// WithAsyncBuffer events are queued and a Worker persists them in the
// background, so a slow sink never stalls a request.
type Publisher struct {
	store  Store
	logger *slog.Logger

	bufferSize int
	inbox      chan Event
	done       chan struct{}
	mu         sync.RWMutex
	closed     bool
}

type Option func(*Publisher)

func WithAsyncBuffer(size int) Option {
	return func(p *Publisher) {
		p.bufferSize = size
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(p *Publisher) {
		p.logger = logger
	}
}

func NewPublisher(store Store, opts ...Option) *Publisher {
	p := &Publisher{store: store}
	for _, opt := range opts {
		opt(p)
	}
	if p.bufferSize > 0 {
		p.inbox = make(chan Event, p.bufferSize)
		p.done = make(chan struct{})
		worker := NewWorker(store, p.inbox, p.logger)
		go func() {
			defer close(p.done)
			_ = worker.Run(context.Background())
		}()
	}
	return p
}

// Emit stamps the event with an ID, time and request metadata taken from
// ctx, then persists or queues it.
func (p *Publisher) Emit(ctx context.Context, event Event) error {
	event = enrich(ctx, event)

	if p.inbox == nil {
		return p.store.Append(ctx, event)
	}

	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrClosed
	}
	select {
	case p.inbox <- event:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	default:
		if p.logger != nil {
			p.logger.WarnContext(ctx, "audit buffer full, dropping event",
				"action", event.Action,
				"case_name", event.CaseName,
			)
		}
		return ErrBufferFull
	}
}

// Close stops accepting events and waits for queued ones to be written.
func (p *Publisher) Close() {
	if p.inbox == nil {
		return
	}
	p.mu.Lock()
	if !p.closed {
		p.closed = true
		close(p.inbox)
	}
	p.mu.Unlock()
	<-p.done
}

func enrich(ctx context.Context, event Event) Event {
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = requestcontext.Now(ctx)
	}
	if event.Actor == "" {
		event.Actor = requestcontext.Actor(ctx)
	}
	if event.RequestID == "" {
		event.RequestID = requestcontext.RequestID(ctx)
	}
	if event.ClientIP == "" {
		event.ClientIP = requestcontext.ClientIP(ctx)
	}
	if event.UserAgent == "" {
		event.UserAgent = requestcontext.UserAgent(ctx)
	}
	if event.Client == "" && event.UserAgent != "" {
		event.Client = describeClient(event.UserAgent)
	}
	return event
}

// describeClient condenses a User-Agent header into "name version on os".
// Non-browser agents such as curl keep their product token.
func describeClient(raw string) string {
	ua := useragent.New(raw)
	name, version := ua.Browser()
	if name == "" {
		return raw
	}
	desc := name
	if version != "" {
		desc += " " + version
	}
	if platform := ua.OS(); platform != "" {
		desc += " on " + platform
	}
	if ua.Bot() {
		desc += " (bot)"
	}
	return desc
}
