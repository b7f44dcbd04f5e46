package rpc

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseSuggestedBlockRange(t *testing.T) {
	tests := []struct {
		name     string
		errMsg   string
		wantFrom uint64
		wantTo   uint64
		wantOK   bool
	}{
		{
			name:     "valid range",
			errMsg:   "Query returned more than 20000 results. Try with this block range [0x7dfd25, 0x7e0fcc].",
			wantFrom: 0x7dfd25,
			wantTo:   0x7e0fcc,
			wantOK:   true,
		},
		{
			name:     "no space after comma",
			errMsg:   "Try with this block range [0x1,0x2]",
			wantFrom: 1,
			wantTo:   2,
			wantOK:   true,
		},
		{
			name:   "empty message",
			errMsg: "",
			wantOK: false,
		},
		{
			name:   "no range present",
			errMsg: "Query returned more than 20000 results.",
			wantOK: false,
		},
		{
			name:   "malformed range",
			errMsg: "Try with this block range [0x7dfd25]",
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			from, to, ok := ParseSuggestedBlockRange(tt.errMsg)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, tt.wantFrom, from)
				assert.Equal(t, tt.wantTo, to)
			}
		})
	}
}
