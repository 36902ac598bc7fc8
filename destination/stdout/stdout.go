package stdout

import (
	"context"
	"fmt"

	"github.com/datazip-inc/greenhouse-tap/constants"
	"github.com/datazip-inc/greenhouse-tap/destination"
	"github.com/datazip-inc/greenhouse-tap/types"
	"github.com/datazip-inc/greenhouse-tap/utils/flatten"
	"github.com/datazip-inc/greenhouse-tap/utils/logger"
)

type Config struct {
	// skip the _olake_* bookkeeping columns in records
	SkipMetadata bool `json:"skip_metadata,omitempty" jsonschema:"title=Skip Metadata,description=Emit records without the _olake_* bookkeeping columns"`
	// flatten nested objects into top level columns
	Normalization bool `json:"normalization,omitempty" jsonschema:"title=Normalization,description=Flatten nested objects into top level keys"`
}

func (c *Config) Validate() error {
	return nil
}

// Stdout prints SCHEMA, RECORD and STATE messages as JSON lines
type Stdout struct {
	config *Config
	stream types.StreamInterface
}

func (s *Stdout) GetConfigRef() destination.Config {
	s.config = &Config{}
	return s.config
}

func (s *Stdout) Spec() any {
	return Config{}
}

func (s *Stdout) Type() string {
	return string(types.Stdout)
}

func (s *Stdout) Check(_ context.Context) error {
	return nil
}

// Setup announces the stream's schema before any of its records
func (s *Stdout) Setup(_ context.Context, stream types.StreamInterface, _ *destination.Options) error {
	s.stream = stream
	logger.Output(types.NewSchemaMessage(stream))
	return nil
}

func (s *Stdout) Write(ctx context.Context, records []types.RawRecord) error {
	for _, record := range records {
		if err := ctx.Err(); err != nil {
			return err
		}

		data := record.Data
		if s.config.Normalization {
			flattened, err := flatten.NewFlattener().FlattenObject(data)
			if err != nil {
				return fmt.Errorf("failed to flatten record %s: %s", record.OlakeID, err)
			}
			data = flattened
		}
		if !s.config.SkipMetadata {
			withMetadata := make(map[string]any, len(data)+3)
			for key, value := range data {
				withMetadata[key] = value
			}
			data = withMetadata
			data[constants.OlakeID] = record.OlakeID
			data[constants.OlakeTimestamp] = record.OlakeTimestamp
			data[constants.OpType] = record.OperationType
		}
		logger.Output(types.NewRecordMessage(s.stream.Name(), data, record.OlakeTimestamp))
	}

	return nil
}

func (s *Stdout) WriteState(_ context.Context, state *types.State) error {
	state.RLock()
	defer state.RUnlock()

	logger.Output(types.Message{
		Type:  types.StateMessage,
		State: state,
	})
	return nil
}

func (s *Stdout) Close(_ context.Context) error {
	return nil
}

func init() {
	destination.RegisteredWriters[types.Stdout] = func() destination.Writer {
		return &Stdout{config: &Config{}}
	}
}
