package driver

import (
	"testing"

	"github.com/datazip-inc/greenhouse-tap/types"
	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChildContext(t *testing.T) {
	spec := &StreamSpec{Name: "activity_feed", Path: "/candidates/{candidate_id}/activity_feed", Context: map[string]string{"candidate_id": "id"}}

	ctx, err := spec.ChildContext(map[string]any{"id": json.Number("4521"), "first_name": "Ada"})
	require.NoError(t, err)
	assert.Equal(t, types.StreamContext{"candidate_id": json.Number("4521")}, ctx)

	_, err = spec.ChildContext(map[string]any{"first_name": "Ada"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "carries no id")

	_, err = spec.ChildContext(map[string]any{"id": nil})
	require.Error(t, err)
}

func TestResolvePath(t *testing.T) {
	spec := &StreamSpec{Name: "activity_feed", Path: "/candidates/{candidate_id}/activity_feed"}

	tests := []struct {
		name     string
		ctx      types.StreamContext
		expected string
		err      bool
	}{
		{name: "number", ctx: types.StreamContext{"candidate_id": json.Number("4521")}, expected: "/candidates/4521/activity_feed"},
		{name: "int", ctx: types.StreamContext{"candidate_id": 7}, expected: "/candidates/7/activity_feed"},
		{name: "escaped", ctx: types.StreamContext{"candidate_id": "a/b c"}, expected: "/candidates/a%2Fb%20c/activity_feed"},
		{name: "missing", ctx: nil, err: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path, err := spec.ResolvePath(tt.ctx)
			if tt.err {
				require.Error(t, err)
				assert.Contains(t, err.Error(), "{candidate_id}")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, path)
		})
	}

	path, err := (&StreamSpec{Path: "/candidates"}).ResolvePath(nil)
	require.NoError(t, err)
	assert.Equal(t, "/candidates", path)
}

func TestPostProcess(t *testing.T) {
	record := PostProcess(map[string]any{"id": 1, "subject": "Note"}, types.StreamContext{"candidate_id": json.Number("4521")})
	assert.Equal(t, map[string]any{"id": 1, "subject": "Note", "candidate_id": json.Number("4521")}, record)

	record = PostProcess(map[string]any{"id": 1}, nil)
	assert.Equal(t, map[string]any{"id": 1}, record)
}
