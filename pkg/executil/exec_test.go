package executil

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRealExecutor_Run(t *testing.T) {
	e := &RealExecutor{}

	out, err := e.Run(context.Background(), "echo", "hello")
	require.NoError(t, err)
	assert.Equal(t, "hello", strings.TrimSpace(string(out)))
}

func TestRealExecutor_RunDir(t *testing.T) {
	e := &RealExecutor{}
	dir := t.TempDir()

	out, err := e.RunDir(context.Background(), dir, "pwd")
	require.NoError(t, err)
	assert.Contains(t, strings.TrimSpace(string(out)), dir)
}

func TestRealExecutor_RunError(t *testing.T) {
	e := &RealExecutor{}

	_, err := e.Run(context.Background(), "false")
	assert.Error(t, err)
}
