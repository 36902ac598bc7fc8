package destination

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/datazip-inc/greenhouse-tap/constants"
	"github.com/datazip-inc/greenhouse-tap/types"
	"github.com/datazip-inc/greenhouse-tap/utils"
	"github.com/datazip-inc/greenhouse-tap/utils/logger"
)

type (
	NewFunc func() Writer

	Options struct {
		Identifier string
		Number     int64
	}

	ThreadOptions func(opt *Options)

	WriterPool struct {
		batchSize     int64
		recordCount   atomic.Int64
		threadCounter atomic.Int64
		config        any     // respective writer config
		init          NewFunc // To initialize exclusive destination threads
		checked       Writer  // instance used for check, also publishes state
		tmu           sync.Mutex
	}

	// WriterThread buffers the records of one stream and flushes them in batches
	WriterThread struct {
		pool    *WriterPool
		stream  types.StreamInterface
		writer  Writer
		buffer  []types.RawRecord
		options *Options
		closed  bool
	}
)

var RegisteredWriters = map[types.DestinationType]NewFunc{}

func WithIdentifier(identifier string) ThreadOptions {
	return func(opt *Options) {
		opt.Identifier = identifier
	}
}

// NewWriterPool checks the destination once and hands out writer threads
func NewWriterPool(ctx context.Context, config *types.WriterConfig) (*WriterPool, error) {
	newfunc, found := RegisteredWriters[config.Type]
	if !found {
		return nil, fmt.Errorf("invalid destination type has been passed [%s]", config.Type)
	}

	adapter, err := initWriter(newfunc, config.WriterConfig)
	if err != nil {
		return nil, err
	}

	if err := adapter.Check(ctx); err != nil {
		return nil, fmt.Errorf("failed to test destination: %s", err)
	}

	batchSize := utils.Ternary(config.BatchSize > 0, config.BatchSize, int64(constants.DefaultBatchSize)).(int64)
	return &WriterPool{
		batchSize: batchSize,
		config:    config.WriterConfig,
		init:      newfunc,
		checked:   adapter,
	}, nil
}

func initWriter(newfunc NewFunc, config any) (Writer, error) {
	adapter := newfunc()
	if config != nil {
		if err := utils.Unmarshal(config, adapter.GetConfigRef()); err != nil {
			return nil, err
		}
	}
	if err := adapter.GetConfigRef().Validate(); err != nil {
		return nil, fmt.Errorf("invalid %s config: %s", adapter.Type(), err)
	}

	return adapter, nil
}

// NewWriter initializes a dedicated writer for the stream
func (w *WriterPool) NewWriter(ctx context.Context, stream types.StreamInterface, options ...ThreadOptions) (*WriterThread, error) {
	opts := &Options{Number: w.threadCounter.Add(1)}
	for _, one := range options {
		one(opts)
	}

	w.tmu.Lock() // lock for concurrent access of w.config
	defer w.tmu.Unlock()

	writer, err := initWriter(w.init, w.config)
	if err != nil {
		return nil, err
	}
	if err := writer.Setup(ctx, stream, opts); err != nil {
		return nil, fmt.Errorf("failed to setup writer thread[%d] for stream %s: %s", opts.Number, stream.ID(), err)
	}

	return &WriterThread{
		pool:    w,
		stream:  stream,
		writer:  writer,
		buffer:  make([]types.RawRecord, 0, w.batchSize),
		options: opts,
	}, nil
}

// WriteState publishes the state through the destination when it supports it
func (w *WriterPool) WriteState(ctx context.Context, state *types.State) error {
	stateWriter, ok := w.checked.(StateWriter)
	if !ok {
		return nil
	}

	return stateWriter.WriteState(ctx, state)
}

// TotalRecords returns the records handed to writers so far
func (w *WriterPool) TotalRecords() int64 {
	return w.recordCount.Load()
}

func (t *WriterThread) Push(ctx context.Context, record types.RawRecord) error {
	if t.closed {
		return fmt.Errorf("writer thread[%d] of stream %s already closed", t.options.Number, t.stream.ID())
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	t.buffer = append(t.buffer, record)
	if int64(len(t.buffer)) >= t.pool.batchSize {
		return t.flush(ctx)
	}

	return nil
}

// Close flushes the remaining records and releases the writer
func (t *WriterThread) Close(ctx context.Context) error {
	if t.closed {
		return nil
	}
	t.closed = true

	flushErr := t.flush(ctx)
	if err := t.writer.Close(ctx); err != nil {
		return fmt.Errorf("failed to close writer thread[%d]: %s", t.options.Number, err)
	}

	return flushErr
}

func (t *WriterThread) flush(ctx context.Context) error {
	if len(t.buffer) == 0 {
		return nil
	}

	if err := t.writer.Write(ctx, t.buffer); err != nil {
		return fmt.Errorf("failed to write records of stream %s: %s", t.stream.ID(), err)
	}
	t.pool.recordCount.Add(int64(len(t.buffer)))
	logger.Debugf("Thread[%d]: flushed %d records of stream %s", t.options.Number, len(t.buffer), t.stream.ID())
	t.buffer = t.buffer[:0]

	return nil
}
