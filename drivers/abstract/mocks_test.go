package abstract

import (
	"context"
	"sync"
	"time"

	"github.com/datazip-inc/greenhouse-tap/destination"
	"github.com/datazip-inc/greenhouse-tap/types"
)

const memoryWriterType types.DestinationType = "memory"

// memorySink records what every memory writer received
type memorySink struct {
	mu      sync.Mutex
	records map[string][]types.RawRecord
	states  int
	closed  int
}

var sink = &memorySink{records: map[string][]types.RawRecord{}}

func (s *memorySink) reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = map[string][]types.RawRecord{}
	s.states = 0
	s.closed = 0
}

func (s *memorySink) get(stream string) []types.RawRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]types.RawRecord(nil), s.records[stream]...)
}

type MemoryConfig struct{}

func (c *MemoryConfig) Validate() error {
	return nil
}

// MemoryWriter is a test writer keeping records in memory
type MemoryWriter struct {
	config *MemoryConfig
	stream types.StreamInterface
}

func (w *MemoryWriter) GetConfigRef() destination.Config {
	w.config = &MemoryConfig{}
	return w.config
}

func (w *MemoryWriter) Spec() any {
	return map[string]any{}
}

func (w *MemoryWriter) Type() string {
	return string(memoryWriterType)
}

func (w *MemoryWriter) Check(_ context.Context) error {
	return nil
}

func (w *MemoryWriter) Setup(_ context.Context, stream types.StreamInterface, _ *destination.Options) error {
	w.stream = stream
	return nil
}

func (w *MemoryWriter) Write(_ context.Context, records []types.RawRecord) error {
	sink.mu.Lock()
	defer sink.mu.Unlock()
	sink.records[w.stream.Name()] = append(sink.records[w.stream.Name()], records...)
	return nil
}

func (w *MemoryWriter) WriteState(_ context.Context, _ *types.State) error {
	sink.mu.Lock()
	defer sink.mu.Unlock()
	sink.states++
	return nil
}

func (w *MemoryWriter) Close(_ context.Context) error {
	sink.mu.Lock()
	defer sink.mu.Unlock()
	sink.closed++
	return nil
}

func init() {
	destination.RegisteredWriters[memoryWriterType] = func() destination.Writer {
		return &MemoryWriter{config: &MemoryConfig{}}
	}
}

// createTestWriterPool creates a real WriterPool with memory writers for testing
func createTestWriterPool(ctx context.Context, batchSize int64) (*destination.WriterPool, error) {
	sink.reset()
	return destination.NewWriterPool(ctx, &types.WriterConfig{
		Type:         memoryWriterType,
		WriterConfig: map[string]any{},
		BatchSize:    batchSize,
	})
}

// Mock implementations for testing

type MockDriver struct {
	getStreamNamesFunc           func(ctx context.Context) ([]string, error)
	produceSchemaFunc            func(ctx context.Context, stream string) (*types.Stream, error)
	backfillFunc                 func(ctx context.Context, stream types.StreamInterface, streamCtx types.StreamContext, cb BackfillMsgFn) error
	streamIncrementalChangesFunc func(ctx context.Context, stream types.StreamInterface, bookmark *time.Time, cb BackfillMsgFn) error
	childContextFunc             func(child string, parent map[string]any) (types.StreamContext, error)
	checkErr                     error
	startDate                    *time.Time
	state                        *types.State
}

func (m *MockDriver) GetConfigRef() Config {
	return nil
}

func (m *MockDriver) Spec() any {
	return nil
}

func (m *MockDriver) Type() string {
	return "mock"
}

func (m *MockDriver) Setup(_ context.Context) error {
	return nil
}

func (m *MockDriver) Check(_ context.Context) error {
	return m.checkErr
}

func (m *MockDriver) SetupState(state *types.State) {
	m.state = state
}

func (m *MockDriver) MaxRetries() int {
	return 1
}

func (m *MockDriver) StartDate() *time.Time {
	return m.startDate
}

func (m *MockDriver) GetStreamNames(ctx context.Context) ([]string, error) {
	if m.getStreamNamesFunc != nil {
		return m.getStreamNamesFunc(ctx)
	}
	return nil, nil
}

func (m *MockDriver) ProduceSchema(ctx context.Context, stream string) (*types.Stream, error) {
	if m.produceSchemaFunc != nil {
		return m.produceSchemaFunc(ctx, stream)
	}
	return types.NewStream(stream, "test", nil), nil
}

func (m *MockDriver) Backfill(ctx context.Context, stream types.StreamInterface, streamCtx types.StreamContext, cb BackfillMsgFn) error {
	if m.backfillFunc != nil {
		return m.backfillFunc(ctx, stream, streamCtx, cb)
	}
	return nil
}

func (m *MockDriver) StreamIncrementalChanges(ctx context.Context, stream types.StreamInterface, bookmark *time.Time, cb BackfillMsgFn) error {
	if m.streamIncrementalChangesFunc != nil {
		return m.streamIncrementalChangesFunc(ctx, stream, bookmark, cb)
	}
	return nil
}

func (m *MockDriver) ChildContext(child string, parent map[string]any) (types.StreamContext, error) {
	if m.childContextFunc != nil {
		return m.childContextFunc(child, parent)
	}
	return types.StreamContext{"parent_id": parent["id"]}, nil
}

// emit feeds the records to the callback in order
func emit(ctx context.Context, cb BackfillMsgFn, records ...map[string]any) error {
	for _, record := range records {
		if err := cb(ctx, record); err != nil {
			return err
		}
	}
	return nil
}
