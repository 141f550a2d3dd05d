package cluster

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDecodeReply(t *testing.T) {
	t.Parallel()
	tests := map[string]struct {
		input   string
		kind    reply
		payload string
	}{
		"row": {
			input:   `ROW {"key":"r1"}`,
			kind:    replyRow,
			payload: `{"key":"r1"}`,
		},
		"end": {
			input: "END",
			kind:  replyEnd,
		},
		"error": {
			input:   "ERROR: table not found",
			kind:    replyError,
			payload: "table not found",
		},
		"too short": {
			input: "OK",
			kind:  replyUnknown,
		},
		"row marker without space": {
			input: "ROWS",
			kind:  replyUnknown,
		},
		"unknown marker": {
			input: "WHAT is this",
			kind:  replyUnknown,
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			req := require.New(t)
			kind, payload := decodeReply([]byte(tc.input))
			req.Equal(tc.kind, kind)
			if tc.payload != "" {
				req.Equal(tc.payload, string(payload))
			}
		})
	}
}
