package abstract

import (
	"context"
	"time"

	"github.com/datazip-inc/greenhouse-tap/types"
)

type BackfillMsgFn func(ctx context.Context, message map[string]any) error

type Config interface {
	Validate() error
}

type DriverInterface interface {
	GetConfigRef() Config
	Spec() any
	Type() string
	// specific to test & setup; Setup builds the client without calling the API
	Setup(ctx context.Context) error
	Check(ctx context.Context) error
	SetupState(state *types.State)
	// sync artifacts
	MaxRetries() int
	// bookmark of incremental streams without state, nil reads everything
	StartDate() *time.Time
	// specific to discover
	GetStreamNames(ctx context.Context) ([]string, error)
	ProduceSchema(ctx context.Context, stream string) (*types.Stream, error)
	// specific to full refresh; streamCtx is nil unless the stream is a child
	Backfill(ctx context.Context, stream types.StreamInterface, streamCtx types.StreamContext, cb BackfillMsgFn) error
	// incremental specific; bookmark is nil on the first run without start date
	StreamIncrementalChanges(ctx context.Context, stream types.StreamInterface, bookmark *time.Time, cb BackfillMsgFn) error
	// specific to child streams
	ChildContext(child string, parent map[string]any) (types.StreamContext, error)
}
