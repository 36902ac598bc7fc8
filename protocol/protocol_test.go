package protocol

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/datazip-inc/greenhouse-tap/destination/parquet"
	"github.com/datazip-inc/greenhouse-tap/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReflectSpec(t *testing.T) {
	spec, err := reflectSpec(parquet.Config{})
	require.NoError(t, err)

	assert.Equal(t, "object", spec["type"])
	properties, ok := spec["properties"].(map[string]any)
	require.True(t, ok)
	for _, key := range []string{"local_path", "s3_bucket", "s3_region", "compression"} {
		assert.Contains(t, properties, key)
	}

	localPath := properties["local_path"].(map[string]any)
	assert.Equal(t, "Local Path", localPath["title"])
	assert.Contains(t, spec["required"], "local_path")
	assert.NotContains(t, spec["required"], "s3_bucket")
}

func TestLoadDestinationConfig(t *testing.T) {
	defer func(path string, size int64) {
		destinationConfigPath, batchSize = path, size
	}(destinationConfigPath, batchSize)
	batchSize = 250

	t.Run("defaults to stdout", func(t *testing.T) {
		destinationConfigPath = notSet
		config, err := loadDestinationConfig()
		require.NoError(t, err)
		assert.Equal(t, types.Stdout, config.Type)
		assert.Equal(t, int64(250), config.BatchSize)
	})

	t.Run("file keeps its batch size", func(t *testing.T) {
		destinationConfigPath = filepath.Join(t.TempDir(), "destination.json")
		require.NoError(t, os.WriteFile(destinationConfigPath, []byte(`{"type": "parquet", "batch_size": 10, "writer": {"local_path": "/tmp/out"}}`), 0o600))

		config, err := loadDestinationConfig()
		require.NoError(t, err)
		assert.Equal(t, types.Parquet, config.Type)
		assert.Equal(t, int64(10), config.BatchSize)
	})

	t.Run("missing file", func(t *testing.T) {
		destinationConfigPath = filepath.Join(t.TempDir(), "absent.json")
		_, err := loadDestinationConfig()
		require.Error(t, err)
	})
}

func TestCommandContext(t *testing.T) {
	defer func(value int64) { timeout = value }(timeout)

	timeout = -1
	ctx, cancel := commandContext(context.Background())
	_, hasDeadline := ctx.Deadline()
	assert.False(t, hasDeadline)
	cancel()

	timeout = 30
	ctx, cancel = commandContext(context.Background())
	defer cancel()
	deadline, hasDeadline := ctx.Deadline()
	require.True(t, hasDeadline)
	assert.WithinDuration(t, time.Now().Add(30*time.Second), deadline, 5*time.Second)
}
