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
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/poiesic/trialmatch"
	"github.com/poiesic/trialmatch/ai"
	"github.com/poiesic/trialmatch/core"
	"github.com/poiesic/trialmatch/ingestion"
	"github.com/poiesic/trialmatch/matching"
	"github.com/poiesic/trialmatch/server"
	"github.com/poiesic/trialmatch/trials"
	"github.com/urfave/cli/v2"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "trialmatch",
		Usage: "Screen patients against clinical trial eligibility criteria",
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
				Name:      "ingest-patient",
				Usage:     "Build and store patient profiles from FHIR bundle files or directories",
				ArgsUsage: "<bundle.json|dir>...",
				Action:    ingestPatientCommand,
				Flags: append(serviceFlags(),
					&cli.StringFlag{
						Name:  "patient-id",
						Usage: "Patient id to store under (single bundle only)",
					},
				),
			},
			{
				Name:      "upload-trials",
				Usage:     "Upsert trials from a JSON file",
				ArgsUsage: "<trials.json>",
				Action:    uploadTrialsCommand,
				Flags:     serviceFlags(),
			},
			{
				Name:   "match",
				Usage:  "Score one patient against candidate trials",
				Action: matchCommand,
				Flags: append(serviceFlags(), append(matchFlags(),
					&cli.StringFlag{
						Name:     "patient-id",
						Aliases:  []string{"p"},
						Usage:    "Patient to match",
						Required: true,
					},
				)...),
			},
			{
				Name:      "match-batch",
				Usage:     "Match several patients, or every stored patient with --all",
				ArgsUsage: "[patient-id]...",
				Action:    matchBatchCommand,
				Flags: append(serviceFlags(), append(matchFlags(),
					&cli.BoolFlag{
						Name:  "all",
						Usage: "Match every stored patient",
					},
					&cli.IntFlag{
						Name:  "workers",
						Usage: "Number of patients matched concurrently",
						Value: 4,
					},
				)...),
			},
			{
				Name:   "latest",
				Usage:  "Print the newest match run for a patient",
				Action: latestCommand,
				Flags: append(serviceFlags(),
					&cli.StringFlag{
						Name:     "patient-id",
						Aliases:  []string{"p"},
						Usage:    "Patient to look up",
						Required: true,
					},
				),
			},
			{
				Name:   "serve",
				Usage:  "Serve the JSON API over HTTP",
				Action: serveCommand,
				Flags: append(serviceFlags(),
					&cli.StringFlag{
						Name:    "addr",
						Usage:   "Listen address",
						Value:   ":8080",
						EnvVars: []string{"TRIALMATCH_ADDR"},
					},
					&cli.StringFlag{
						Name:    "admin-secret",
						Usage:   "Token required in X-Admin-Token for trial uploads (open when empty)",
						EnvVars: []string{"APP_ADMIN_SECRET"},
					},
					&cli.DurationFlag{
						Name:  "shutdown-timeout",
						Usage: "Grace period for in-flight requests on shutdown",
						Value: 10 * time.Second,
					},
				),
			},
		},
	}
}

// serviceFlags are shared by every command that opens the database.
func serviceFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "db",
			Aliases: []string{"d"},
			Usage:   "Path to BadgerDB database directory",
			Value:   "./trialmatch_data",
			EnvVars: []string{"TRIALMATCH_DB"},
		},
		&cli.StringFlag{
			Name:    "backend",
			Usage:   "AI backend (openai, huggingface, gemini)",
			Value:   string(ai.BackendOpenAI),
			EnvVars: []string{"TRIALMATCH_BACKEND"},
		},
		&cli.StringFlag{
			Name:  "embedding-host",
			Usage: "Embedding service host URL (backend default when unset)",
		},
		&cli.StringFlag{
			Name:  "completion-host",
			Usage: "Completion service host URL (backend default when unset)",
		},
		&cli.StringFlag{
			Name:  "embedding-model",
			Usage: "Embedding model name (backend default when unset)",
		},
		&cli.StringFlag{
			Name:  "completion-model",
			Usage: "Completion model name (backend default when unset)",
		},
		&cli.StringFlag{
			Name:  "ner-model",
			Usage: "Token classification model for the huggingface backend",
		},
		&cli.StringFlag{
			Name:    "api-key",
			Usage:   "API key for hosted backends",
			EnvVars: []string{"HF_TOKEN", "GEMINI_API_KEY"},
		},
		&cli.IntFlag{
			Name:  "max-new-tokens",
			Usage: "Completion length bound for criteria parsing",
			Value: ai.DefaultMaxNewTokens,
		},
		&cli.StringFlag{
			Name:    "data-dir",
			Usage:   "Directory holding the bulk AACT trial tables",
			Value:   trials.DefaultDatasetDir,
			EnvVars: []string{"AACT_DATA_DIR"},
		},
		&cli.IntFlag{
			Name:    "num-random-trials",
			Usage:   "Default trial count for random mode",
			Value:   matching.DefaultNumTrials,
			EnvVars: []string{"NUM_RANDOM_TRIALS"},
		},
		&cli.Int64Flag{
			Name:  "embedding-cache",
			Usage: "Bytes of embeddings to memoize across runs (0 disables)",
		},
	}
}

func matchFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "mode",
			Aliases: []string{"m"},
			Usage:   "Trial selection mode (demo, random)",
			Value:   string(core.MatchModeDemo),
		},
		&cli.IntFlag{
			Name:    "num-trials",
			Aliases: []string{"n"},
			Usage:   "Trials to sample in random mode (0 uses --num-random-trials)",
		},
	}
}

// aiConfigFromFlags applies backend defaults first, then any explicit overrides.
func aiConfigFromFlags(c *cli.Context) (*ai.Config, error) {
	backend, err := ai.ParseBackend(c.String("backend"))
	if err != nil {
		return nil, err
	}

	opts := []ai.ConfigOption{
		ai.WithBackend(backend),
		ai.WithAPIKey(c.String("api-key")),
		ai.WithMaxNewTokens(c.Int("max-new-tokens")),
	}
	if v := c.String("embedding-host"); v != "" {
		opts = append(opts, ai.WithEmbeddingHost(v))
	}
	if v := c.String("completion-host"); v != "" {
		opts = append(opts, ai.WithCompletionHost(v))
	}
	if v := c.String("embedding-model"); v != "" {
		opts = append(opts, ai.WithEmbeddingModel(v))
	}
	if v := c.String("completion-model"); v != "" {
		opts = append(opts, ai.WithCompletionModel(v))
	}
	if v := c.String("ner-model"); v != "" {
		opts = append(opts, ai.WithNERModel(v))
	}

	config := ai.NewConfig(opts...)
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid AI configuration: %w", err)
	}
	return config, nil
}

func openService(c *cli.Context, extra ...trialmatch.Option) (*trialmatch.Service, error) {
	aiConfig, err := aiConfigFromFlags(c)
	if err != nil {
		return nil, err
	}

	opts := []trialmatch.Option{
		trialmatch.WithAIConfig(aiConfig),
		trialmatch.WithDatasetDir(c.String("data-dir")),
		trialmatch.WithNumRandomTrials(c.Int("num-random-trials")),
	}
	if n := c.Int64("embedding-cache"); n > 0 {
		opts = append(opts, trialmatch.WithEmbeddingCache(n))
	}
	opts = append(opts, extra...)

	svc, err := trialmatch.NewService(c.Context, c.String("db"), opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to open service: %w", err)
	}
	return svc, nil
}

func ingestPatientCommand(c *cli.Context) error {
	if c.NArg() == 0 {
		return errors.New("at least one bundle file or directory is required")
	}

	inputs, err := readBundles(c.Args().Slice())
	if err != nil {
		return err
	}
	if len(inputs) == 0 {
		return errors.New("no patient bundles found")
	}
	if id := c.String("patient-id"); id != "" {
		if len(inputs) > 1 {
			return errors.New("--patient-id requires a single bundle")
		}
		inputs[0].PatientID = id
	}

	svc, err := openService(c)
	if err != nil {
		return err
	}
	defer svc.Close()

	failed := 0
	for _, res := range svc.Ingestion().IngestPatients(c.Context, inputs) {
		if res.Err != nil {
			failed++
			slog.Error("failed to ingest bundle", "source", res.Source, "err", res.Err)
			continue
		}
		fmt.Fprintf(c.App.Writer, "%s\t%s\n", res.Record.PatientID, res.Source)
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d bundles failed", failed, len(inputs))
	}
	return nil
}

// readBundles loads bundle files. Directories contribute their *.json files,
// minus Synthea's hospital and practitioner bundles which hold no patient.
func readBundles(paths []string) ([]ingestion.BundleInput, error) {
	var files []string
	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			files = append(files, path)
			continue
		}
		matches, err := filepath.Glob(filepath.Join(path, "*.json"))
		if err != nil {
			return nil, err
		}
		for _, m := range matches {
			name := strings.ToLower(filepath.Base(m))
			if strings.HasPrefix(name, "hospital") || strings.HasPrefix(name, "practitioner") {
				continue
			}
			files = append(files, m)
		}
	}

	inputs := make([]ingestion.BundleInput, 0, len(files))
	for _, f := range files {
		data, err := os.ReadFile(f)
		if err != nil {
			return nil, err
		}
		inputs = append(inputs, ingestion.BundleInput{Source: f, Data: data})
	}
	return inputs, nil
}

func uploadTrialsCommand(c *cli.Context) error {
	if c.NArg() != 1 {
		return errors.New("exactly one trials file is required")
	}
	data, err := os.ReadFile(c.Args().First())
	if err != nil {
		return err
	}
	items, err := parseTrialUploads(data)
	if err != nil {
		return err
	}

	svc, err := openService(c)
	if err != nil {
		return err
	}
	defer svc.Close()

	n, err := svc.UploadTrials(c.Context, items)
	if err != nil {
		return fmt.Errorf("upload failed: %w", err)
	}
	fmt.Fprintf(c.App.Writer, "upserted %d of %d trials\n", n, len(items))
	return nil
}

// parseTrialUploads accepts a bare array or an object with a "trials" array.
// Elements that are not trial objects are dropped.
func parseTrialUploads(data []byte) ([]ingestion.TrialUpload, error) {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		var wrapped struct {
			Trials []json.RawMessage `json:"trials"`
		}
		if err := json.Unmarshal(data, &wrapped); err != nil {
			return nil, fmt.Errorf("trials file must hold a JSON list or {\"trials\": [...]}: %w", err)
		}
		raw = wrapped.Trials
	}

	items := make([]ingestion.TrialUpload, 0, len(raw))
	for _, r := range raw {
		var item ingestion.TrialUpload
		if err := json.Unmarshal(r, &item); err != nil {
			continue
		}
		items = append(items, item)
	}
	return items, nil
}

func matchCommand(c *cli.Context) error {
	mode, err := core.ParseMatchMode(c.String("mode"))
	if err != nil {
		return err
	}

	svc, err := openService(c)
	if err != nil {
		return err
	}
	defer svc.Close()

	record, err := svc.RunMatching(c.Context, c.String("patient-id"), mode, c.Int("num-trials"))
	if err != nil {
		return fmt.Errorf("matching failed: %w", err)
	}
	return printJSON(c.App.Writer, record)
}

func matchBatchCommand(c *cli.Context) error {
	mode, err := core.ParseMatchMode(c.String("mode"))
	if err != nil {
		return err
	}
	ids := c.Args().Slice()
	if len(ids) == 0 && !c.Bool("all") {
		return errors.New("pass patient ids or --all")
	}

	svc, err := openService(c,
		trialmatch.WithPoolSize(c.Int("workers")),
		trialmatch.WithProgress(c.App.ErrWriter))
	if err != nil {
		return err
	}
	defer svc.Close()

	if c.Bool("all") {
		patients, err := svc.ListPatients(c.Context, 0)
		if err != nil {
			return err
		}
		for _, p := range patients {
			ids = append(ids, p.PatientID)
		}
	}

	results := svc.RunBatch(c.Context, ids, mode, c.Int("num-trials"))
	failed := 0
	out := make([]any, len(results))
	for i, res := range results {
		if res.Err != nil {
			failed++
			out[i] = map[string]string{"patient_id": res.PatientID, "error": res.Err.Error()}
			continue
		}
		out[i] = res.Record
	}
	if err := printJSON(c.App.Writer, out); err != nil {
		return err
	}
	if failed > 0 {
		slog.Warn("batch finished with failures", "failed", failed, "total", len(results))
	}
	return nil
}

func latestCommand(c *cli.Context) error {
	svc, err := openService(c)
	if err != nil {
		return err
	}
	defer svc.Close()

	record, err := svc.LatestMatches(c.Context, c.String("patient-id"))
	if err != nil {
		return err
	}
	if record == nil {
		fmt.Fprintf(c.App.ErrWriter, "no match runs for %s\n", c.String("patient-id"))
		return nil
	}
	return printJSON(c.App.Writer, record)
}

func serveCommand(c *cli.Context) error {
	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	svc, err := openService(c)
	if err != nil {
		return err
	}
	defer svc.Close()

	srv := &http.Server{
		Addr:              c.String("addr"),
		Handler:           server.New(svc, server.WithAdminSecret(c.String("admin-secret"))),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("listening", "addr", srv.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	slog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), c.Duration("shutdown-timeout"))
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func setupLogger(c *cli.Context) error {
	level, err := parseLevel(c.String("log-level"))
	if err != nil {
		return err
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}

func parseLevel(s string) (slog.Level, error) {
	switch levelStr := strings.ToLower(s); levelStr {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}
}
