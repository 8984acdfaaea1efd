package goroutineid

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		stack string
		want  int64
	}{
		{"goroutine 123 [running]:\n", 123},
		{"goroutine 1 [running]:\nmain.main()", 1},
		{"goroutine x [running]:\n", 0},
		{"something else\n", 0},
		{"", 0},
	}
	for _, tt := range tests {
		require.Equal(t, tt.want, parse([]byte(tt.stack)), "stack %q", tt.stack)
	}
}

func TestGetDiffersAcrossGoroutines(t *testing.T) {
	here := Get()
	require.Greater(t, here, int64(0))

	other := make(chan int64)
	go func() { other <- Get() }()
	require.NotEqual(t, here, <-other)
}
