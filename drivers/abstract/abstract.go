package abstract

import (
	"context"
	"fmt"
	"sort"

	"github.com/datazip-inc/greenhouse-tap/constants"
	"github.com/datazip-inc/greenhouse-tap/destination"
	"github.com/datazip-inc/greenhouse-tap/types"
	"github.com/datazip-inc/greenhouse-tap/utils"
	"github.com/datazip-inc/greenhouse-tap/utils/logger"
)

type AbstractDriver struct { //nolint:gosec,revive
	driver DriverInterface
	state  *types.State
}

var DefaultColumns = map[string]types.DataType{
	constants.OlakeID:        types.String,
	constants.OlakeTimestamp: types.Timestamp,
	constants.OpType:         types.String,
}

func NewAbstractDriver(driver DriverInterface) *AbstractDriver {
	return &AbstractDriver{
		driver: driver,
		state:  types.NewState(types.StreamType),
	}
}

func (a *AbstractDriver) SetupState(state *types.State) {
	if state == nil {
		state = types.NewState(types.StreamType)
	}
	a.state = state
	a.driver.SetupState(state)
}

func (a *AbstractDriver) GetConfigRef() Config {
	return a.driver.GetConfigRef()
}

func (a *AbstractDriver) Spec() any {
	return a.driver.Spec()
}

func (a *AbstractDriver) Type() string {
	return a.driver.Type()
}

func (a *AbstractDriver) Setup(ctx context.Context) error {
	return a.driver.Setup(ctx)
}

func (a *AbstractDriver) Check(ctx context.Context) error {
	return a.driver.Check(ctx)
}

// ClearState drops the bookmarks of the given streams, the next sync of each
// starts from start_date
func (a *AbstractDriver) ClearState(streams []types.StreamInterface) *types.State {
	for _, stream := range streams {
		a.state.ResetCursor(stream.Self())
		logger.Infof("Cleared bookmark of stream %s", stream.ID())
	}

	return a.state
}

// Discover produces every stream with the default columns and sync mode set
func (a *AbstractDriver) Discover(ctx context.Context) ([]*types.Stream, error) {
	streams, err := a.driver.GetStreamNames(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get stream names: %s", err)
	}

	finalStreams := make([]*types.Stream, 0, len(streams))
	err = utils.ForEach(streams, func(name string) error {
		stream, err := a.driver.ProduceSchema(ctx, name)
		if err != nil {
			return fmt.Errorf("failed to produce schema for stream %s: %s", name, err)
		}

		// add default columns
		for column, typ := range DefaultColumns {
			stream.UpsertField(column, typ, true)
		}

		// priority to default sync mode (incremental -> full_refresh)
		if stream.SupportedSyncModes.Exists(types.INCREMENTAL) {
			stream.SyncMode = types.INCREMENTAL
			stream.CursorField = stream.SelectedCursorField()
		} else {
			stream.SyncMode = types.FULLREFRESH
		}

		finalStreams = append(finalStreams, stream)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return finalStreams, nil
}

// Read syncs the streams one at a time. A parent runs before its children so
// the child contexts can be gathered from the parent's records; a child whose
// parent is not selected still drives a silent pass over the parent.
func (a *AbstractDriver) Read(ctx context.Context, pool *destination.WriterPool, streams []types.StreamInterface) error {
	children := make(map[string][]types.StreamInterface)
	var parents []types.StreamInterface
	for _, stream := range streams {
		if stream.GetStream().IsChild() {
			children[stream.GetStream().ParentStream] = append(children[stream.GetStream().ParentStream], stream)
			continue
		}
		parents = append(parents, stream)
	}

	for _, stream := range parents {
		collector := newContextCollector(a.driver, children[stream.Name()])
		delete(children, stream.Name())

		if err := a.syncStream(ctx, pool, stream, collector.Collect); err != nil {
			return err
		}
		if err := a.syncChildren(ctx, pool, collector); err != nil {
			return err
		}
	}

	// orphans whose parent was not selected
	orphanParents := make([]string, 0, len(children))
	for parentName := range children {
		orphanParents = append(orphanParents, parentName)
	}
	sort.Strings(orphanParents)
	for _, parentName := range orphanParents {
		orphans := children[parentName]
		parent, err := a.unselectedParent(ctx, parentName)
		if err != nil {
			return err
		}

		collector := newContextCollector(a.driver, orphans)
		logger.Infof("Reading parent stream %s for %d child stream(s) without emitting it", parent.ID(), len(orphans))
		if err := a.driver.Backfill(ctx, parent, nil, collector.Collect); err != nil {
			return fmt.Errorf("failed to read parent stream %s: %s", parent.ID(), err)
		}
		if err := a.syncChildren(ctx, pool, collector); err != nil {
			return err
		}
	}

	logger.Infof("Total records synced: %d", pool.TotalRecords())
	return nil
}

func (a *AbstractDriver) syncStream(ctx context.Context, pool *destination.WriterPool, stream types.StreamInterface, onRecord BackfillMsgFn) error {
	switch stream.GetSyncMode() {
	case types.INCREMENTAL:
		if err := a.Incremental(ctx, pool, stream, onRecord); err != nil {
			return fmt.Errorf("failed to run incremental sync of stream %s: %s", stream.ID(), err)
		}
	default:
		if err := a.Backfill(ctx, pool, stream, []types.StreamContext{nil}, onRecord); err != nil {
			return fmt.Errorf("failed to run full refresh of stream %s: %s", stream.ID(), err)
		}
	}

	return nil
}

func (a *AbstractDriver) syncChildren(ctx context.Context, pool *destination.WriterPool, collector *contextCollector) error {
	return utils.ForEach(collector.children, func(child types.StreamInterface) error {
		contexts := collector.contexts[child.ID()]
		logger.Infof("Syncing child stream %s for %d parent record(s)", child.ID(), len(contexts))
		if err := a.Backfill(ctx, pool, child, contexts, nil); err != nil {
			return fmt.Errorf("failed to run full refresh of child stream %s: %s", child.ID(), err)
		}
		return nil
	})
}

func (a *AbstractDriver) unselectedParent(ctx context.Context, name string) (types.StreamInterface, error) {
	stream, err := a.driver.ProduceSchema(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("failed to produce parent stream %s: %s", name, err)
	}
	stream.SyncMode = types.FULLREFRESH

	return stream.Wrap(), nil
}

// contextCollector gathers the contexts of each child while its parent is read
type contextCollector struct {
	driver   DriverInterface
	children []types.StreamInterface
	contexts map[string][]types.StreamContext
}

func newContextCollector(driver DriverInterface, children []types.StreamInterface) *contextCollector {
	return &contextCollector{
		driver:   driver,
		children: children,
		contexts: make(map[string][]types.StreamContext),
	}
}

func (c *contextCollector) Collect(_ context.Context, record map[string]any) error {
	for _, child := range c.children {
		streamCtx, err := c.driver.ChildContext(child.Name(), record)
		if err != nil {
			return fmt.Errorf("failed to build context of child stream %s: %s", child.ID(), err)
		}
		c.contexts[child.ID()] = append(c.contexts[child.ID()], streamCtx)
	}

	return nil
}

// generateThreadID creates a unique thread ID for a stream
func generateThreadID(streamID string) string {
	return fmt.Sprintf("%s_%s", streamID, utils.ULID())
}

// closeWriter closes the writer and folds its error into err
func closeWriter(ctx context.Context, writer *destination.WriterThread, err *error) {
	if closeErr := writer.Close(ctx); closeErr != nil {
		*err = utils.Ternary(*err == nil, closeErr, fmt.Errorf("%s: prev error: %w", closeErr, *err)).(error)
	}

	// check for panics
	if r := recover(); r != nil {
		*err = utils.Ternary(*err == nil, fmt.Errorf("panic recovered: %v", r), fmt.Errorf("%v: prev error: %w", r, *err)).(error)
	}
}
