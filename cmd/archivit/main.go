// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/poiesic/archivit"
	"github.com/poiesic/archivit/ai"
	"github.com/poiesic/archivit/ingestion"
	"github.com/poiesic/archivit/reprocess"
	"github.com/poiesic/archivit/search"
)

func main() {
	app := &cli.App{
		Name:  "archivit",
		Usage: "Content-addressed image archive with AI-generated descriptions",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:      "scan",
				Usage:     "Scan a directory tree and archive every new image in it",
				ArgsUsage: "<directory>",
				Action:    scanCommand,
				Flags: append(aiFlags(),
					dbFlag(),
					&cli.IntFlag{
						Name:  "workers",
						Usage: "Number of concurrent captioning workers",
					},
				),
			},
			{
				Name:      "search",
				Usage:     "Search the archive by text or by meaning",
				ArgsUsage: "<query>",
				Action:    searchCommand,
				Flags: append(aiFlags(),
					dbFlag(),
					&cli.StringFlag{
						Name:    "mode",
						Aliases: []string{"m"},
						Usage:   "Search mode: lexical or semantic",
						Value:   "lexical",
					},
					&cli.IntFlag{
						Name:    "page",
						Aliases: []string{"p"},
						Usage:   "Result page number",
						Value:   1,
					},
					&cli.Float64Flag{
						Name:  "threshold",
						Usage: "Minimum cosine similarity for semantic hits",
						Value: search.DefaultThreshold,
					},
				),
			},
			{
				Name:   "describe",
				Usage:  "Regenerate image descriptions with the vision model",
				Action: describeCommand,
				Flags: append(aiFlags(),
					dbFlag(),
					&cli.BoolFlag{
						Name:  "missing-only",
						Usage: "Only describe images whose captioning previously failed",
						Value: true,
					},
					batchSizeFlag("images"),
					reportIntervalFlag("images"),
				),
			},
			{
				Name:   "reembed",
				Usage:  "Regenerate all description embeddings with the configured model",
				Action: reembedCommand,
				Flags: append(aiFlags(),
					dbFlag(),
					batchSizeFlag("descriptions"),
					reportIntervalFlag("descriptions"),
					&cli.IntFlag{
						Name:  "max-retries",
						Usage: "Maximum retry attempts for failed operations",
						Value: 3,
					},
					&cli.DurationFlag{
						Name:  "retry-delay",
						Usage: "Base delay for exponential backoff",
						Value: 1 * time.Second,
					},
				),
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func dbFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "db",
		Aliases: []string{"d"},
		Usage:   "Path to the archive database file",
		Value:   "./archive.db",
	}
}

func aiFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  "host",
			Usage: "Model service host URL",
			Value: "http://localhost:11434",
		},
		&cli.StringFlag{
			Name:  "caption-model",
			Usage: "Vision model used to describe images",
			Value: "llava:latest",
		},
		&cli.StringFlag{
			Name:  "embedding-model",
			Usage: "Embedding model used for semantic search",
			Value: "embeddinggemma",
		},
	}
}

func batchSizeFlag(unit string) cli.Flag {
	return &cli.IntFlag{
		Name:  "batch-size",
		Usage: fmt.Sprintf("Number of %s to process in each batch", unit),
		Value: 100,
	}
}

func reportIntervalFlag(unit string) cli.Flag {
	return &cli.IntFlag{
		Name:  "report-interval",
		Usage: fmt.Sprintf("Report progress every N %s", unit),
		Value: 100,
	}
}

func openArchive(c *cli.Context) (*archivit.Archive, error) {
	aiConfig := ai.NewConfig(
		ai.WithHost(c.String("host")),
		ai.WithCaptionModel(c.String("caption-model")),
		ai.WithEmbeddingModel(c.String("embedding-model")),
	)
	if err := aiConfig.Validate(); err != nil {
		return nil, fmt.Errorf("invalid AI configuration: %w", err)
	}

	a, err := archivit.Open(c.String("db"), archivit.WithAIConfig(aiConfig))
	if err != nil {
		return nil, fmt.Errorf("failed to open archive: %w", err)
	}
	return a, nil
}

func scanCommand(c *cli.Context) error {
	if c.NArg() != 1 {
		return fmt.Errorf("expected exactly one directory argument")
	}
	root := c.Args().First()

	a, err := openArchive(c)
	if err != nil {
		return err
	}
	defer a.Close()

	var opts []ingestion.Option
	if workers := c.Int("workers"); workers > 0 {
		opts = append(opts, ingestion.WithPoolSize(workers))
	}

	pipeline, err := a.NewIngestionPipeline(opts...)
	if err != nil {
		return fmt.Errorf("failed to create pipeline: %w", err)
	}
	defer pipeline.Release()

	result, err := pipeline.Ingest(context.Background(), root)
	if err != nil {
		return fmt.Errorf("scan failed: %w", err)
	}

	fmt.Printf("Scanned %s in %v\n", root, result.Elapsed.Round(time.Millisecond))
	fmt.Printf("  processed: %d\n", result.Processed)
	fmt.Printf("  existing:  %d\n", result.Existing)
	fmt.Printf("  failed:    %d\n", result.Failed)
	return nil
}

func searchCommand(c *cli.Context) error {
	if c.NArg() < 1 {
		return fmt.Errorf("expected a query argument")
	}
	query := strings.Join(c.Args().Slice(), " ")

	a, err := openArchive(c)
	if err != nil {
		return err
	}
	defer a.Close()

	searcher, err := a.NewSearcher(search.WithThreshold(float32(c.Float64("threshold"))))
	if err != nil {
		return fmt.Errorf("failed to create searcher: %w", err)
	}

	ctx := context.Background()
	var page *search.Page
	switch mode := c.String("mode"); mode {
	case "lexical":
		page, err = searcher.Lexical(ctx, query, c.Int("page"))
	case "semantic":
		page, err = searcher.Semantic(ctx, query, c.Int("page"))
	default:
		return fmt.Errorf("invalid mode %q: must be lexical or semantic", mode)
	}
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	fmt.Printf("Found %d hits (page %d, %d per page)\n", page.Total, page.PageNum, page.PerPage)
	for i, hit := range page.Results {
		rank := (page.PageNum-1)*page.PerPage + i + 1
		fmt.Printf("%d: %s [%0.3f]\n", rank, hit.Record.Filepath, hit.Score)
		if hit.Record.Description != "" {
			fmt.Printf("   %s\n", hit.Record.Description)
		}
	}
	return nil
}

func describeCommand(c *cli.Context) error {
	a, err := openArchive(c)
	if err != nil {
		return err
	}
	defer a.Close()

	config := &reprocess.Config{
		BatchSize:      c.Int("batch-size"),
		ReportInterval: c.Int("report-interval"),
		MaxRetries:     3,
		RetryDelay:     time.Second,
	}
	if config.BatchSize <= 0 {
		return fmt.Errorf("batch-size must be greater than 0")
	}

	rc, err := a.NewRecaptioner(config, os.Stderr, c.Bool("missing-only"))
	if err != nil {
		return fmt.Errorf("failed to create recaptioner: %w", err)
	}

	result, err := rc.Run(context.Background())
	if err != nil {
		return fmt.Errorf("describe failed: %w", err)
	}
	if result.Failed > 0 {
		fmt.Fprintf(os.Stderr, "%d images could not be described; rerun with --missing-only to retry\n", result.Failed)
	}
	return nil
}

func reembedCommand(c *cli.Context) error {
	a, err := openArchive(c)
	if err != nil {
		return err
	}
	defer a.Close()

	config := &reprocess.Config{
		BatchSize:      c.Int("batch-size"),
		ReportInterval: c.Int("report-interval"),
		MaxRetries:     c.Int("max-retries"),
		RetryDelay:     c.Duration("retry-delay"),
	}
	if config.BatchSize <= 0 {
		return fmt.Errorf("batch-size must be greater than 0")
	}
	if config.ReportInterval <= 0 {
		return fmt.Errorf("report-interval must be greater than 0")
	}
	if config.MaxRetries <= 0 {
		return fmt.Errorf("max-retries must be greater than 0")
	}

	reembedder, err := a.NewReembedder(config, os.Stderr)
	if err != nil {
		return fmt.Errorf("failed to create reembedder: %w", err)
	}

	fmt.Fprintf(os.Stderr, "Database: %s\n", c.String("db"))
	fmt.Fprintf(os.Stderr, "Embedding model: %s\n\n", c.String("embedding-model"))

	if err := reembedder.Run(context.Background()); err != nil {
		return fmt.Errorf("reembedding failed: %w", err)
	}
	return nil
}

func setupLogger(c *cli.Context) error {
	levelStr := strings.ToLower(c.String("log-level"))

	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}
