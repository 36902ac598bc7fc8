package protocol

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/datazip-inc/greenhouse-tap/constants"
	"github.com/datazip-inc/greenhouse-tap/drivers/abstract"
	"github.com/datazip-inc/greenhouse-tap/types"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// offlineDriver serves discovery only; any API access fails the test
type offlineDriver struct {
	t *testing.T
}

func (d *offlineDriver) GetConfigRef() abstract.Config { return nil }
func (d *offlineDriver) Spec() any                     { return nil }
func (d *offlineDriver) Type() string                  { return "offline" }
func (d *offlineDriver) SetupState(_ *types.State)     {}
func (d *offlineDriver) MaxRetries() int               { return 1 }
func (d *offlineDriver) StartDate() *time.Time         { return nil }

func (d *offlineDriver) Setup(_ context.Context) error {
	d.t.Error("setup must not run")
	return nil
}

func (d *offlineDriver) Check(_ context.Context) error {
	d.t.Error("check must not run")
	return nil
}

func (d *offlineDriver) GetStreamNames(_ context.Context) ([]string, error) {
	return []string{"candidates", "jobs"}, nil
}

func (d *offlineDriver) ProduceSchema(_ context.Context, name string) (*types.Stream, error) {
	stream := types.NewStream(name, "greenhouse", nil).
		WithPrimaryKey("id").
		WithSyncMode(types.FULLREFRESH, types.INCREMENTAL).
		WithCursorField("updated_at")
	stream.UpsertField("id", types.Int64, false)
	stream.UpsertField("updated_at", types.Timestamp, true)
	return stream, nil
}

func (d *offlineDriver) Backfill(_ context.Context, _ types.StreamInterface, _ types.StreamContext, _ abstract.BackfillMsgFn) error {
	d.t.Error("backfill must not run")
	return nil
}

func (d *offlineDriver) StreamIncrementalChanges(_ context.Context, _ types.StreamInterface, _ *time.Time, _ abstract.BackfillMsgFn) error {
	d.t.Error("incremental read must not run")
	return nil
}

func (d *offlineDriver) ChildContext(_ string, _ map[string]any) (types.StreamContext, error) {
	return nil, nil
}

const clearStateFixture = `{
  "type": "STREAM",
  "streams": [
    {"stream": "candidates", "namespace": "greenhouse", "sync_mode": "incremental", "state": {"updated_at": "2024-01-01T00:00:00Z"}},
    {"stream": "jobs", "namespace": "greenhouse", "sync_mode": "incremental", "state": {"updated_at": "2024-02-01T00:00:00Z"}}
  ]
}`

func TestClearState(t *testing.T) {
	tests := []struct {
		name     string
		streams  string
		cleared  []string
		retained []string
	}{
		{
			name:     "selected streams only",
			streams:  `{"selected_streams": {"greenhouse": [{"stream_name": "candidates"}]}, "streams": [{"stream": {"name": "candidates", "namespace": "greenhouse", "sync_mode": "incremental", "cursor_field": "updated_at"}}]}`,
			cleared:  []string{"2024-01-01T00:00:00Z"},
			retained: []string{"jobs", "2024-02-01T00:00:00Z"},
		},
		{
			name:    "every stream without a streams file",
			cleared: []string{"candidates", "jobs"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			defer func(prevConnector *abstract.AbstractDriver, prevConfig, prevState, prevStreams, prevPath string) {
				connector, configPath, statePath, streamsPath = prevConnector, prevConfig, prevState, prevStreams
				viper.Set(constants.StatePath, prevPath)
			}(connector, configPath, statePath, streamsPath, viper.GetString(constants.StatePath))

			dir := t.TempDir()
			connector = abstract.NewAbstractDriver(&offlineDriver{t: t})
			configPath = notSet
			statePath = filepath.Join(dir, "state.json")
			require.NoError(t, os.WriteFile(statePath, []byte(clearStateFixture), 0o600))
			streamsPath = ""
			if tt.streams != "" {
				streamsPath = filepath.Join(dir, "streams.json")
				require.NoError(t, os.WriteFile(streamsPath, []byte(tt.streams), 0o600))
			}
			viper.Set(constants.StatePath, statePath)

			require.NoError(t, clearCmd.PreRunE(clearCmd, nil))
			require.NoError(t, clearCmd.RunE(clearCmd, nil))

			data, err := os.ReadFile(statePath)
			require.NoError(t, err)
			for _, value := range tt.cleared {
				assert.NotContains(t, string(data), value)
			}
			for _, value := range tt.retained {
				assert.Contains(t, string(data), value)
			}
		})
	}
}

func TestClearStateRequiresStatePath(t *testing.T) {
	defer func(prev string) { statePath = prev }(statePath)
	statePath = ""

	err := clearCmd.PreRunE(clearCmd, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--state not passed")
}
