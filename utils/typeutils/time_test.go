package typeutils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTimestamp(t *testing.T) {
	expected := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		input   string
		want    time.Time
		wantErr bool
	}{
		{name: "rfc3339 zulu", input: "2024-01-01T00:00:00Z", want: expected},
		{name: "numeric offset", input: "2024-01-01T05:30:00+05:30", want: expected},
		{name: "compact offset", input: "2024-01-01T00:00:00+0000", want: expected},
		{name: "fractional seconds", input: "2024-01-01T00:00:00.123456Z", want: expected.Add(123456 * time.Microsecond)},
		{name: "no offset is utc", input: "2024-01-01T00:00:00", want: expected},
		{name: "date only", input: "2024-01-01", want: expected},
		{name: "surrounding spaces", input: "  2024-01-01T00:00:00Z ", want: expected},
		{name: "empty", input: "", wantErr: true},
		{name: "garbage", input: "yesterday", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseTimestamp(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "expected %s, got %s", tt.want, got)
			assert.Equal(t, time.UTC, got.Location())
		})
	}
}

func TestReformatTimestamp(t *testing.T) {
	ts := time.Date(2024, 3, 4, 5, 6, 7, 0, time.UTC)

	got, err := ReformatTimestamp("2024-03-04T05:06:07Z")
	require.NoError(t, err)
	assert.True(t, ts.Equal(got))

	got, err = ReformatTimestamp(ts.In(time.FixedZone("X", 3600)))
	require.NoError(t, err)
	assert.Equal(t, ts, got)

	_, err = ReformatTimestamp(nil)
	assert.ErrorIs(t, err, ErrNullValue)

	_, err = ReformatTimestamp(42)
	assert.Error(t, err)
}

func TestFormatCursorValue(t *testing.T) {
	ts := time.Date(2024, 3, 4, 5, 6, 7, 500, time.FixedZone("X", 3600))
	assert.Equal(t, "2024-03-04T04:06:07.0000005Z", FormatCursorValue(ts))
	assert.Equal(t, "plain", FormatCursorValue("plain"))
	assert.Nil(t, FormatCursorValue(nil))
}
