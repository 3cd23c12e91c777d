package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v3"
)

func TestExitCode(t *testing.T) {
	assert.Equal(t, 1, exitCode(errors.New("rpc down")))
	assert.Equal(t, 3, exitCode(cli.Exit("bad flag", 3)))
	assert.Equal(t, 2, exitCode(fmt.Errorf("deposit-sol: %w", cli.Exit("bad arg", 2))))
}

func TestMetricsWrittenAfterArgumentError(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	metricsPath := filepath.Join(t.TempDir(), "metrics.prom")

	App = initApp()
	t.Cleanup(func() { App = nil })
	err := App.cliCmd.Run(context.Background(), []string{"jito-stake-pool", "--metrics-file", metricsPath, "list"})
	App.writeMetrics()

	require.Error(t, err)
	assert.ErrorContains(t, err, "missing required argument <pool>")
	assert.Equal(t, 1, exitCode(err))
	_, statErr := os.Stat(metricsPath)
	assert.NoError(t, statErr)
}
