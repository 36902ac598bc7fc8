package types

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/datazip-inc/greenhouse-tap/constants"
	"github.com/datazip-inc/greenhouse-tap/utils/logger"
	json "github.com/goccy/go-json"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewStreamBuilders(t *testing.T) {
	stream := NewStream("activity_feed", "greenhouse", nil).
		WithSyncMode(FULLREFRESH, INCREMENTAL, FULLREFRESH).
		WithPrimaryKey("id", "candidate_id").
		WithCursorField("updated_at").
		WithParent("candidates", map[string]string{"candidate_id": "id"})

	assert.Equal(t, "greenhouse.activity_feed", stream.ID())
	assert.Equal(t, []SyncMode{FULLREFRESH, INCREMENTAL}, stream.SupportedSyncModes.Array())
	assert.Equal(t, []string{"id", "candidate_id"}, stream.SourceDefinedPrimaryKey.Array())
	assert.True(t, stream.IsChild())
	assert.Equal(t, "id", stream.ParentContext["candidate_id"])
	assert.NotNil(t, stream.Schema)
}

func TestSelectedCursorField(t *testing.T) {
	tests := []struct {
		name     string
		mode     SyncMode
		selected string
		expected string
	}{
		{name: "full refresh has no cursor", mode: FULLREFRESH, selected: "updated_at", expected: ""},
		{name: "selected cursor wins", mode: INCREMENTAL, selected: "created_at", expected: "created_at"},
		{name: "falls back to first available", mode: INCREMENTAL, selected: "", expected: "updated_at"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			stream := NewStream("jobs", "greenhouse", nil).WithCursorField("updated_at", "created_at")
			stream.SyncMode = tc.mode
			stream.CursorField = tc.selected
			assert.Equal(t, tc.expected, stream.SelectedCursorField())
			assert.Equal(t, tc.expected, stream.Wrap().Cursor())
		})
	}
}

func TestUpsertField(t *testing.T) {
	stream := NewStream("users", "greenhouse", nil)
	stream.UpsertField(constants.OlakeID, String, false)
	stream.UpsertField("updated_at", Timestamp, true)

	typ, err := stream.Schema.GetType("updated_at")
	require.NoError(t, err)
	assert.Equal(t, Timestamp, typ)

	found, prop := stream.Schema.GetProperty("updated_at")
	require.True(t, found)
	assert.True(t, prop.Nullable())

	_, prop = stream.Schema.GetProperty(constants.OlakeID)
	assert.False(t, prop.Nullable())
}

func TestConfiguredStreamValidate(t *testing.T) {
	source := NewStream("candidates", "greenhouse", nil).
		WithSyncMode(FULLREFRESH, INCREMENTAL).
		WithPrimaryKey("id").
		WithCursorField("updated_at")

	tests := []struct {
		name      string
		mode      SyncMode
		cursor    string
		keys      []string
		expectErr string
	}{
		{name: "valid incremental", mode: INCREMENTAL, cursor: "updated_at", keys: []string{"id"}},
		{name: "valid full refresh", mode: FULLREFRESH, keys: []string{"id"}},
		{name: "unsupported mode", mode: SyncMode("cdc"), expectErr: "invalid sync mode"},
		{name: "unknown cursor", mode: INCREMENTAL, cursor: "created_at", expectErr: "invalid cursor field"},
		{name: "extra primary keys", mode: FULLREFRESH, keys: []string{"id", "name"}, expectErr: "primary keys"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			configured := NewStream("candidates", "greenhouse", nil).WithPrimaryKey(tc.keys...)
			configured.SyncMode = tc.mode
			configured.CursorField = tc.cursor

			err := configured.Wrap().Validate(source)
			if tc.expectErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.expectErr)
		})
	}
}

func TestStreamsToMap(t *testing.T) {
	stream1 := NewStream("users", "greenhouse", nil)
	stream2 := NewStream("offers", "greenhouse", nil)

	streamMap := StreamsToMap(stream1, stream2)
	assert.Len(t, streamMap, 2)
	assert.Same(t, stream1, streamMap[stream1.ID()])
	assert.Same(t, stream2, streamMap[stream2.ID()])
}

func TestLogCatalog(t *testing.T) {
	tempDir := t.TempDir()
	viper.Set(constants.ConfigFolder, tempDir)
	viper.Set(constants.NoSave, false)
	t.Cleanup(func() { viper.Set(constants.ConfigFolder, "") })

	var out bytes.Buffer
	logger.SetOutput(&out)
	t.Cleanup(func() { logger.SetOutput(os.Stdout) })

	streams := []*Stream{
		NewStream("users", "greenhouse", nil),
		NewStream("offers", "greenhouse", nil),
	}
	LogCatalog(streams)

	content, err := os.ReadFile(filepath.Join(tempDir, "streams.json"))
	require.NoError(t, err, "LogCatalog should create the streams file")

	var savedCatalog Catalog
	require.NoError(t, json.Unmarshal(content, &savedCatalog))
	assert.Len(t, savedCatalog.Streams, 2)
	assert.Len(t, savedCatalog.SelectedStreams["greenhouse"], 2)

	assert.True(t, strings.HasPrefix(out.String(), `{"type":"CATALOG"`))
}
