package pipeline

import (
	"context"
	"errors"
	"sync"

	"github.com/ghalamif/mtcflow/internal/domain"
	"github.com/ghalamif/mtcflow/internal/ports"
)

type sampleResult struct {
	snap *domain.Snapshot
	err  error
}

type fakeAgent struct {
	mu         sync.Mutex
	catalog    *domain.Catalog
	probeErr   error
	current    *domain.Snapshot
	currentErr error
	samples    []sampleResult
	froms      []domain.Cursor
	calls      chan domain.Cursor
}

func (a *fakeAgent) Probe(context.Context) (*domain.Catalog, error) {
	if a.probeErr != nil {
		return nil, a.probeErr
	}
	return a.catalog, nil
}

func (a *fakeAgent) Current(context.Context) (*domain.Snapshot, error) {
	if a.currentErr != nil {
		return nil, a.currentErr
	}
	return a.current, nil
}

func (a *fakeAgent) Sample(_ context.Context, from domain.Cursor) (*domain.Snapshot, error) {
	a.mu.Lock()
	a.froms = append(a.froms, from)
	var res sampleResult
	if len(a.samples) > 0 {
		res = a.samples[0]
		a.samples = a.samples[1:]
	} else {
		res.err = errors.New("no more samples")
	}
	a.mu.Unlock()

	if a.calls != nil {
		a.calls <- from
	}
	return res.snap, res.err
}

func (a *fakeAgent) requestedFroms() []domain.Cursor {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]domain.Cursor(nil), a.froms...)
}

type fakeStore struct {
	mu          sync.Mutex
	statusErr   error
	versionErr  error
	result      ports.WriteResult
	writeErr    error
	equipment   [][]domain.Device
	dataItems   [][]domain.DataItem
	measurement [][]domain.Measurement
}

func (s *fakeStore) Name() string                 { return "fake" }
func (s *fakeStore) Status(context.Context) error { return s.statusErr }

func (s *fakeStore) Version(context.Context) (string, error) {
	if s.versionErr != nil {
		return "", s.versionErr
	}
	return "1.0.0", nil
}

func (s *fakeStore) WriteEquipment(_ context.Context, d []domain.Device) (ports.WriteResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.equipment = append(s.equipment, d)
	return s.result, s.writeErr
}

func (s *fakeStore) WriteDataItems(_ context.Context, d []domain.DataItem) (ports.WriteResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dataItems = append(s.dataItems, d)
	return s.result, s.writeErr
}

func (s *fakeStore) WriteMeasurements(_ context.Context, m []domain.Measurement) (ports.WriteResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.measurement = append(s.measurement, m)
	return s.result, s.writeErr
}

func (s *fakeStore) batches() [][]domain.Measurement {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([][]domain.Measurement(nil), s.measurement...)
}

type logEntry struct {
	level string
	msg   string
	err   error
}

type recordingObs struct {
	mu       sync.Mutex
	logs     []logEntry
	counters map[string]float64
	writes   map[string][]ports.WriteResult
}

func newRecordingObs() *recordingObs {
	return &recordingObs{counters: map[string]float64{}, writes: map[string][]ports.WriteResult{}}
}

func (o *recordingObs) add(level, msg string, err error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.logs = append(o.logs, logEntry{level: level, msg: msg, err: err})
}

func (o *recordingObs) LogInfo(msg string, _ ...ports.Field)                { o.add("info", msg, nil) }
func (o *recordingObs) LogWarn(msg string, _ ...ports.Field)                { o.add("warn", msg, nil) }
func (o *recordingObs) LogError(msg string, err error, _ ...ports.Field)    { o.add("error", msg, err) }
func (o *recordingObs) LogCritical(msg string, err error, _ ...ports.Field) { o.add("critical", msg, err) }
func (o *recordingObs) ObserveLatency(string, float64)                      {}
func (o *recordingObs) SetGauge(string, float64)                            {}

func (o *recordingObs) IncCounter(name string, v float64) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.counters[name] += v
}

func (o *recordingObs) RecordWrite(endpoint string, res ports.WriteResult) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.writes[endpoint] = append(o.writes[endpoint], res)
}

func (o *recordingObs) count(msg string) int {
	o.mu.Lock()
	defer o.mu.Unlock()
	n := 0
	for _, l := range o.logs {
		if l.msg == msg {
			n++
		}
	}
	return n
}

func (o *recordingObs) counter(name string) float64 {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.counters[name]
}
