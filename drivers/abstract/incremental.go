package abstract

import (
	"context"
	"fmt"
	"time"

	"github.com/datazip-inc/greenhouse-tap/destination"
	"github.com/datazip-inc/greenhouse-tap/types"
	"github.com/datazip-inc/greenhouse-tap/utils"
	"github.com/datazip-inc/greenhouse-tap/utils/logger"
	"github.com/datazip-inc/greenhouse-tap/utils/typeutils"
)

// Incremental reads the records changed since the stream's bookmark. The new
// bookmark is the highest replication value seen and is committed only after
// every record reached the writer.
func (a *AbstractDriver) Incremental(ctx context.Context, pool *destination.WriterPool, stream types.StreamInterface, onRecord BackfillMsgFn) (err error) {
	cursor := stream.Cursor()
	if cursor == "" {
		return fmt.Errorf("cursor field not specified for incremental sync")
	}

	bookmark, err := a.startBookmark(stream)
	if err != nil {
		return err
	}
	logger.Infof("Starting incremental sync for stream[%s] from %s", stream.ID(), formatBookmark(bookmark))

	threadID := generateThreadID(stream.ID())
	inserter, err := pool.NewWriter(ctx, stream, destination.WithIdentifier(threadID))
	if err != nil {
		return fmt.Errorf("failed to create new writer thread: %s", err)
	}
	logger.Infof("Thread[%s]: created incremental writer for stream %s", threadID, stream.ID())

	// the bookmark never moves backwards
	maxCursor := bookmark
	defer func() {
		closeWriter(ctx, inserter, &err)
		if err != nil {
			return
		}
		err = a.commitBookmark(ctx, pool, stream, cursor, maxCursor)
	}()

	return a.driver.StreamIncrementalChanges(ctx, stream, bookmark, func(ctx context.Context, record map[string]any) error {
		value, err := typeutils.ReformatTimestamp(record[cursor])
		if err != nil {
			return fmt.Errorf("record of stream %s carries invalid %s[%v]: %s", stream.ID(), cursor, record[cursor], err)
		}
		if maxCursor == nil || value.After(*maxCursor) {
			maxCursor = &value
		}

		if onRecord != nil {
			if err := onRecord(ctx, record); err != nil {
				return err
			}
		}

		olakeID := utils.GetKeysHash(record, stream.GetStream().SourceDefinedPrimaryKey.Array()...)
		return inserter.Push(ctx, types.CreateRawRecord(olakeID, record, "u", time.Now().UTC()))
	})
}

// startBookmark prefers the stored bookmark over the configured start date
func (a *AbstractDriver) startBookmark(stream types.StreamInterface) (*time.Time, error) {
	stored := a.state.GetCursor(stream.Self(), stream.Cursor())
	if stored == nil {
		return a.driver.StartDate(), nil
	}

	bookmark, err := typeutils.ReformatTimestamp(stored)
	if err != nil {
		return nil, fmt.Errorf("invalid bookmark %v in state of stream %s: %s", stored, stream.ID(), err)
	}

	return &bookmark, nil
}

func (a *AbstractDriver) commitBookmark(ctx context.Context, pool *destination.WriterPool, stream types.StreamInterface, cursor string, bookmark *time.Time) error {
	if bookmark == nil {
		logger.Warnf("no bookmark for stream %s, nothing synced yet", stream.ID())
		return nil
	}

	a.state.SetCursor(stream.Self(), cursor, typeutils.FormatCursorValue(*bookmark))
	if err := a.state.Persist(); err != nil {
		return err
	}
	logger.Infof("Bookmark of stream %s advanced to %s", stream.ID(), formatBookmark(bookmark))

	if err := pool.WriteState(ctx, a.state); err != nil {
		return fmt.Errorf("failed to write state: %s", err)
	}

	return nil
}

func formatBookmark(bookmark *time.Time) string {
	if bookmark == nil {
		return "the beginning"
	}

	return bookmark.UTC().Format(time.RFC3339)
}
