package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestServerWriteTimeout(t *testing.T) {
	tests := []struct {
		name       string
		nlgTimeout time.Duration
		want       time.Duration
	}{
		{"default generation timeout", 20 * time.Second, 70 * time.Second},
		{"short generation timeout", time.Second, 13 * time.Second},
		{"no generation deadline", 0, unboundedWriteTimeout},
		{"negative generation timeout", -time.Second, unboundedWriteTimeout},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, serverWriteTimeout(tc.nlgTimeout))
		})
	}
}
