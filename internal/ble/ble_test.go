package ble

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDiscoveryError(t *testing.T) {
	type testCase struct {
		name     string
		err      error
		expected string
	}

	failed := errors.New("att timeout")
	cases := []testCase{
		{
			name:     "underlying failure is wrapped",
			err:      failed,
			expected: "discover report service: att timeout",
		},
		{
			name:     "empty result has its own message",
			err:      nil,
			expected: "receiver does not expose the report service",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := discoveryError("report service", tc.err)
			assert.EqualError(t, err, tc.expected)
			if tc.err != nil {
				assert.ErrorIs(t, err, tc.err)
			}
		})
	}
}
