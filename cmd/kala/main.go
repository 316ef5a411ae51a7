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
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"strings"

	"github.com/poiesic/kala/ai"
	"github.com/poiesic/kala/ai/openai"
	"github.com/poiesic/kala/config"
	"github.com/urfave/cli/v2"
)

// configKey is the App.Metadata key holding the loaded *config.Config.
const configKey = "config"

// newEmbedder builds the embedder for commands that need one. Tests replace it.
var newEmbedder = openai.NewEmbedder

func main() {
	app := newApp(os.Stdin, os.Stdout, os.Stderr)
	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp(stdin io.Reader, stdout, stderr io.Writer) *cli.App {
	return &cli.App{
		Name:      "kala",
		Usage:     "Load product catalogues into searchable collections",
		Reader:    stdin,
		Writer:    stdout,
		ErrWriter: stderr,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
			&cli.StringFlag{
				Name:    "config",
				Usage:   "Path to a TOML configuration file",
				EnvVars: []string{"KALA_CONFIG"},
			},
			&cli.StringFlag{
				Name:    "db",
				Aliases: []string{"d"},
				Usage:   "Path to the store directory (default \"" + config.DefaultStorePath + "\")",
			},
		},
		Before: func(c *cli.Context) error {
			if err := setupLogger(c); err != nil {
				return err
			}
			return loadConfig(c)
		},
		Commands: []*cli.Command{
			{
				Name:   "ingest",
				Usage:  "Clean a CSV file and write it to a collection in batches",
				Action: ingestCommand,
				Flags: append([]cli.Flag{
					&cli.StringFlag{
						Name:    "data",
						Aliases: []string{"f"},
						Usage:   "Path to the CSV file",
					},
					&cli.StringFlag{
						Name:    "collection",
						Aliases: []string{"c"},
						Usage:   "Collection name",
					},
					&cli.IntFlag{
						Name:    "batch-size",
						Aliases: []string{"b"},
						Usage:   "Number of records per batch",
					},
					&cli.BoolFlag{
						Name:  "upsert",
						Usage: "Overwrite records whose id is already stored",
					},
					&cli.StringFlag{
						Name:  "delimiter",
						Usage: "CSV field delimiter",
					},
					&cli.StringFlag{
						Name:  "normalizer",
						Usage: "Text normalizer (persian, none)",
					},
					&cli.BoolFlag{
						Name:  "embed",
						Usage: "Embed titles while ingesting",
					},
					&cli.IntFlag{
						Name:  "embed-concurrency",
						Usage: "Concurrent embedding requests per batch",
					},
				}, embeddingFlags()...),
			},
			{
				Name:      "query",
				Usage:     "Search a collection",
				ArgsUsage: "<text>",
				Action:    queryCommand,
				Flags: append([]cli.Flag{
					collectionFlag(),
					&cli.IntFlag{
						Name:    "limit",
						Aliases: []string{"n"},
						Usage:   "Maximum number of results",
						Value:   10,
					},
					&cli.Float64Flag{
						Name:  "min-similarity",
						Usage: "Drop results below this cosine similarity",
					},
				}, embeddingFlags()...),
			},
			{
				Name:   "count",
				Usage:  "Print the number of documents in a collection",
				Action: countCommand,
				Flags:  []cli.Flag{collectionFlag()},
			},
			{
				Name:   "collections",
				Usage:  "List collections",
				Action: collectionsCommand,
			},
			{
				Name:   "reembed",
				Usage:  "Recompute the vectors of every document in a collection",
				Action: reembedCommand,
				Flags: append([]cli.Flag{
					collectionFlag(),
					&cli.IntFlag{
						Name:  "batch-size",
						Usage: "Number of documents to process in each batch",
					},
					&cli.IntFlag{
						Name:  "report-interval",
						Usage: "Report progress every N documents",
						Value: 100,
					},
					&cli.IntFlag{
						Name:  "max-retries",
						Usage: "Maximum attempts per embedding call",
					},
					&cli.DurationFlag{
						Name:  "retry-delay",
						Usage: "Base delay for exponential backoff",
					},
				}, embeddingFlags()...),
			},
			{
				Name:  "config",
				Usage: "Manage the configuration file",
				Subcommands: []*cli.Command{
					{
						Name:      "init",
						Usage:     "Write a configuration file with default values",
						ArgsUsage: "[path]",
						Action:    configInitCommand,
						Flags: []cli.Flag{
							&cli.BoolFlag{
								Name:  "force",
								Usage: "Overwrite an existing file",
							},
						},
					},
				},
			},
		},
	}
}

func collectionFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "collection",
		Aliases: []string{"c"},
		Usage:   "Collection name",
	}
}

func embeddingFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  "embedding-host",
			Usage: "Embedding service host URL",
		},
		&cli.StringFlag{
			Name:  "embedding-model",
			Usage: "Embedding model name",
		},
	}
}

func setupLogger(c *cli.Context) error {
	// Get log level from flag and normalize to lowercase
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

	logger := slog.New(slog.NewTextHandler(c.App.ErrWriter, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}

func loadConfig(c *cli.Context) error {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return err
	}
	if c.IsSet("db") {
		cfg.Store.Path = c.String("db")
	}
	if c.App.Metadata == nil {
		c.App.Metadata = map[string]interface{}{}
	}
	c.App.Metadata[configKey] = cfg
	return nil
}

func appConfig(c *cli.Context) *config.Config {
	if cfg, ok := c.App.Metadata[configKey].(*config.Config); ok {
		return cfg
	}
	return config.Default()
}

// embeddingConfig applies embedding flags over the file configuration.
func embeddingConfig(c *cli.Context, cfg *config.Config) *ai.Config {
	host := cfg.Embedding.Host
	if c.IsSet("embedding-host") {
		host = c.String("embedding-host")
	}
	model := cfg.Embedding.Model
	if c.IsSet("embedding-model") {
		model = c.String("embedding-model")
	}
	return ai.NewConfig(
		ai.WithEmbeddingHost(host),
		ai.WithEmbeddingModel(model),
		ai.WithToken(cfg.Embedding.Token),
	)
}
