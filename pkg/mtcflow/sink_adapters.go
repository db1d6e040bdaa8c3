package mtcflow

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// ErrChannelStoreClosed is returned when a channel store is written to after being closed.
var ErrChannelStoreClosed = errors.New("mtcflow: channel store closed")

// MeasurementHandler is invoked with every normalized batch.
type MeasurementHandler func([]Measurement) error

// NewCallbackStore adapts a MeasurementHandler into a full Store so callers
// can consume records without defining structs. Dictionary writes are
// accepted and dropped.
func NewCallbackStore(name string, fn MeasurementHandler) Store {
	if name == "" {
		name = "callback"
	}
	return &callbackStore{inProcess: inProcess{name: name}, fn: fn}
}

// NewChannelStore exposes batches via a channel; it returns the store, the read-only channel,
// and a close function that the caller should invoke during shutdown.
func NewChannelStore(name string, buffer int) (Store, <-chan []Measurement, func()) {
	if name == "" {
		name = "channel"
	}
	if buffer < 0 {
		buffer = 0
	}
	ch := make(chan []Measurement, buffer)
	s := &channelStore{
		inProcess: inProcess{name: name},
		ch:        ch,
		closed:    make(chan struct{}),
	}
	return s, ch, func() { s.close() }
}

// inProcess supplies the parts of Store that an in-process consumer does not
// care about.
type inProcess struct{ name string }

func (p inProcess) Name() string                            { return p.name }
func (p inProcess) Status(context.Context) error            { return nil }
func (p inProcess) Version(context.Context) (string, error) { return p.name, nil }

func (p inProcess) WriteEquipment(context.Context, []Device) (WriteResult, error) {
	return WriteResult{Outcome: WriteOK}, nil
}

func (p inProcess) WriteDataItems(context.Context, []DataItem) (WriteResult, error) {
	return WriteResult{Outcome: WriteOK}, nil
}

type callbackStore struct {
	inProcess
	fn MeasurementHandler
}

func (s *callbackStore) WriteMeasurements(_ context.Context, records []Measurement) (WriteResult, error) {
	if s.fn == nil {
		return WriteResult{Outcome: WriteStorageFailure}, fmt.Errorf("callback store %q: nil handler", s.name)
	}
	if len(records) == 0 {
		return WriteResult{Outcome: WriteOK}, nil
	}
	if err := s.fn(copyBatch(records)); err != nil {
		return WriteResult{Outcome: WriteStorageFailure}, err
	}
	return WriteResult{Outcome: WriteOK}, nil
}

type channelStore struct {
	inProcess
	ch     chan []Measurement
	closed chan struct{}
	once   sync.Once
	mu     sync.RWMutex
}

func (s *channelStore) WriteMeasurements(ctx context.Context, records []Measurement) (WriteResult, error) {
	// ch is only closed under the write lock, after closed.
	s.mu.RLock()
	defer s.mu.RUnlock()

	select {
	case <-s.closed:
		return WriteResult{Outcome: WriteStorageFailure}, ErrChannelStoreClosed
	default:
	}

	if len(records) == 0 {
		return WriteResult{Outcome: WriteOK}, nil
	}

	select {
	case <-s.closed:
		return WriteResult{Outcome: WriteStorageFailure}, ErrChannelStoreClosed
	case <-ctx.Done():
		return WriteResult{Outcome: WriteStorageFailure}, ctx.Err()
	case s.ch <- copyBatch(records):
		return WriteResult{Outcome: WriteOK}, nil
	}
}

func (s *channelStore) close() {
	s.once.Do(func() {
		close(s.closed)
		s.mu.Lock()
		close(s.ch)
		s.mu.Unlock()
	})
}

func copyBatch(records []Measurement) []Measurement {
	return append([]Measurement(nil), records...)
}
