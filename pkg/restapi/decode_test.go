package restapi

import (
	"strings"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRecords(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		expected []map[string]any
	}{
		{
			name: "list yields each element in order",
			body: `[{"id": 1}, {"id": 2}]`,
			expected: []map[string]any{
				{"id": json.Number("1")},
				{"id": json.Number("2")},
			},
		},
		{
			name:     "object yields one record",
			body:     `{"id": 1}`,
			expected: []map[string]any{{"id": json.Number("1")}},
		},
		{name: "empty list", body: `[]`, expected: []map[string]any{}},
		{name: "scalar", body: `42`},
		{name: "string", body: `"ok"`},
		{name: "null", body: `null`},
		{name: "empty body", body: ``},
		{
			name:     "non object elements are dropped",
			body:     `[1, {"id": 3}, "x", null]`,
			expected: []map[string]any{{"id": json.Number("3")}},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			records, err := ParseRecords(strings.NewReader(tc.body))
			require.NoError(t, err)
			assert.Len(t, records, len(tc.expected))
			for idx := range tc.expected {
				assert.Equal(t, tc.expected[idx], records[idx])
			}
		})
	}
}

func TestParseRecordsKeepsPrecision(t *testing.T) {
	records, err := ParseRecords(strings.NewReader(`[{"id": 4000123456789012345, "amount": 0.1000000000000000055511151231257827}]`))
	require.NoError(t, err)
	require.Len(t, records, 1)

	assert.Equal(t, json.Number("4000123456789012345"), records[0]["id"])
	assert.Equal(t, json.Number("0.1000000000000000055511151231257827"), records[0]["amount"])
}

func TestParseRecordsMalformed(t *testing.T) {
	_, err := ParseRecords(strings.NewReader(`[{"id": 1}`))
	assert.Error(t, err)
}
