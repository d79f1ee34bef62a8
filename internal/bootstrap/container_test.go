package bootstrap

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRetryAttempts(t *testing.T) {
	tests := []struct {
		name string
		in   int
		want uint
	}{
		{"negative clamps to one", -3, 1},
		{"zero clamps to one", 0, 1},
		{"positive passes through", 3, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, retryAttempts(tt.in))
		})
	}
}
