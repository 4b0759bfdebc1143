package audit

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Extractor pulls a value out of a request context.
type Extractor func(context.Context) (string, bool)

// Recorder builds events and hands them to a Storage.
type Recorder struct {
	storage   Storage
	requestID Extractor
	filter    *MetadataFilter
	now       func() time.Time
}

type Option func(*Recorder)

func WithRequestIDExtractor(fn Extractor) Option {
	return func(r *Recorder) { r.requestID = fn }
}

// WithMetadataFilter replaces the default filter.
func WithMetadataFilter(f *MetadataFilter) Option {
	return func(r *Recorder) {
		if f != nil {
			r.filter = f
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(r *Recorder) {
		if now != nil {
			r.now = now
		}
	}
}

func NewRecorder(storage Storage, opts ...Option) *Recorder {
	if storage == nil {
		panic("audit: storage cannot be nil")
	}
	r := &Recorder{
		storage: storage,
		filter:  NewMetadataFilter(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Record stores one event for action.
func (r *Recorder) Record(ctx context.Context, action Action, result Result, opts ...EventOption) error {
	event := Event{
		ID:        uuid.New(),
		Action:    action,
		Result:    result,
		CreatedAt: r.now().UTC(),
	}
	if r.requestID != nil {
		if id, ok := r.requestID(ctx); ok {
			event.RequestID = id
		}
	}
	for _, opt := range opts {
		opt(&event)
	}
	if err := event.Validate(); err != nil {
		return err
	}
	event.Metadata = r.filter.Apply(event.Metadata)

	return r.storage.Store(ctx, event)
}

// Find returns events matching c.
func (r *Recorder) Find(ctx context.Context, c Criteria) ([]Event, error) {
	return r.storage.Query(ctx, c)
}
