package main

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"
)

func TestSetupLogger(t *testing.T) {
	run := func(level string) error {
		app := &cli.App{
			Flags: []cli.Flag{
				&cli.StringFlag{Name: "log-level", Value: "info"},
			},
			Before: setupLogger,
			Action: func(*cli.Context) error { return nil },
		}
		return app.Run([]string{"archivit", "--log-level", level})
	}

	t.Run("valid levels", func(t *testing.T) {
		for _, level := range []string{"debug", "info", "warn", "error", "WARN"} {
			assert.NoError(t, run(level), level)
		}
		assert.True(t, slog.Default().Enabled(context.Background(), slog.LevelError))
	})

	t.Run("invalid level", func(t *testing.T) {
		err := run("verbose")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid log level")
	})
}

func TestAIFlagDefaults(t *testing.T) {
	flags := aiFlags()
	byName := map[string]string{}
	for _, flag := range flags {
		f, ok := flag.(*cli.StringFlag)
		require.True(t, ok)
		byName[f.Name] = f.Value
	}

	assert.Equal(t, "http://localhost:11434", byName["host"])
	assert.Equal(t, "llava:latest", byName["caption-model"])
	assert.Equal(t, "embeddinggemma", byName["embedding-model"])
}

func TestScanCommandRequiresDirectory(t *testing.T) {
	app := &cli.App{
		Commands: []*cli.Command{
			{
				Name:   "scan",
				Action: scanCommand,
				Flags:  append(aiFlags(), dbFlag()),
			},
		},
	}

	err := app.Run([]string{"archivit", "scan"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "directory")
}

func TestSearchCommandRequiresQuery(t *testing.T) {
	app := &cli.App{
		Commands: []*cli.Command{
			{
				Name:   "search",
				Action: searchCommand,
				Flags:  append(aiFlags(), dbFlag()),
			},
		},
	}

	err := app.Run([]string{"archivit", "search"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "query")
}
