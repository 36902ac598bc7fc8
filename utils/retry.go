package utils

import (
	"context"
	"errors"
	"time"

	"github.com/datazip-inc/greenhouse-tap/constants"
	"github.com/datazip-inc/greenhouse-tap/utils/logger"
)

// RetryOnBackoff runs f up to attempts times, doubling sleep after each failure.
// Errors wrapping constants.ErrNonRetryable and a done context end the loop early.
func RetryOnBackoff(ctx context.Context, attempts int, sleep time.Duration, f func() error) (err error) {
	if attempts < 1 {
		attempts = 1
	}

	for cur := 0; cur < attempts; cur++ {
		if err = f(); err == nil {
			return nil
		}
		if errors.Is(err, constants.ErrNonRetryable) || ctx.Err() != nil {
			break
		}
		if cur != attempts-1 {
			logger.Infof("retry attempt[%d], retrying after %.2f seconds due to err: %s", cur+1, sleep.Seconds(), err)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(sleep):
			}
			sleep *= 2
		}
	}

	return err
}
