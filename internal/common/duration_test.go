package common

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestDuration_UnmarshalText(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected time.Duration
		wantErr  bool
	}{
		{
			name:     "milliseconds",
			input:    "250ms",
			expected: 250 * time.Millisecond,
		},
		{
			name:     "seconds",
			input:    "30s",
			expected: 30 * time.Second,
		},
		{
			name:     "minutes",
			input:    "5m",
			expected: 5 * time.Minute,
		},
		{
			name:     "complex duration",
			input:    "1h30m45s",
			expected: 1*time.Hour + 30*time.Minute + 45*time.Second,
		},
		{
			name:     "zero duration",
			input:    "0s",
			expected: 0,
		},
		{
			name:    "invalid format - no unit",
			input:   "100",
			wantErr: true,
		},
		{
			name:    "invalid format - garbage",
			input:   "fifteen seconds",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var d Duration
			err := d.UnmarshalText([]byte(tt.input))
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, d.Duration)
		})
	}
}

func TestDuration_JSON(t *testing.T) {
	type wrapper struct {
		Interval Duration `json:"interval"`
	}

	var w wrapper
	require.NoError(t, json.Unmarshal([]byte(`{"interval":"15s"}`), &w))
	assert.Equal(t, 15*time.Second, w.Interval.Duration)

	// Plain numbers are nanoseconds.
	require.NoError(t, json.Unmarshal([]byte(`{"interval":1000000000}`), &w))
	assert.Equal(t, time.Second, w.Interval.Duration)

	out, err := json.Marshal(wrapper{Interval: NewDuration(90 * time.Second)})
	require.NoError(t, err)
	assert.JSONEq(t, `{"interval":"1m30s"}`, string(out))
}

func TestDuration_YAML(t *testing.T) {
	type wrapper struct {
		Interval Duration `yaml:"interval"`
	}

	var w wrapper
	require.NoError(t, yaml.Unmarshal([]byte("interval: 2m\n"), &w))
	assert.Equal(t, 2*time.Minute, w.Interval.Duration)

	require.Error(t, yaml.Unmarshal([]byte("interval: [1, 2]\n"), &w))
}
