package abstract

import (
	"context"
	"fmt"
	"time"

	"github.com/datazip-inc/greenhouse-tap/destination"
	"github.com/datazip-inc/greenhouse-tap/types"
	"github.com/datazip-inc/greenhouse-tap/utils"
	"github.com/datazip-inc/greenhouse-tap/utils/logger"
)

// Backfill reads every record of the stream once per context into a single
// writer; top-level streams pass a single nil context
func (a *AbstractDriver) Backfill(ctx context.Context, pool *destination.WriterPool, stream types.StreamInterface, contexts []types.StreamContext, onRecord BackfillMsgFn) (err error) {
	threadID := generateThreadID(stream.ID())
	inserter, err := pool.NewWriter(ctx, stream, destination.WithIdentifier(threadID))
	if err != nil {
		return fmt.Errorf("failed to create new writer thread: %s", err)
	}
	logger.Infof("Thread[%s]: starting full refresh for stream %s", threadID, stream.ID())
	defer closeWriter(ctx, inserter, &err)

	primaryKeys := stream.GetStream().SourceDefinedPrimaryKey.Array()
	return utils.ForEach(contexts, func(streamCtx types.StreamContext) error {
		return a.driver.Backfill(ctx, stream, streamCtx, func(ctx context.Context, record map[string]any) error {
			if onRecord != nil {
				if err := onRecord(ctx, record); err != nil {
					return err
				}
			}

			olakeID := utils.GetKeysHash(record, primaryKeys...)
			return inserter.Push(ctx, types.CreateRawRecord(olakeID, record, "r", time.Now().UTC()))
		})
	})
}
