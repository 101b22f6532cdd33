package main

//
//  scheinfirmen-at converts the Austrian BMF Scheinfirmen (shell company)
//  list into three cross-consistent machine-readable formats, archives
//  snapshots to PostgreSQL, and serves the archive over a small REST API.
//
//  Modes (selected via --mode flag):
//    - convert: download (or read) the raw extract, parse, validate, write
//      CSV/JSONL/XML plus schema documents, and verify the outputs agree.
//    - archive: run acquisition+parse+validate, then persist the snapshot
//      to PostgreSQL.
//    - api:     start the REST API exposing the archived snapshots.
//

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/arjoma/scheinfirmen-at/config"
	"github.com/arjoma/scheinfirmen-at/internal/app"
	"github.com/arjoma/scheinfirmen-at/internal/convert"
	"github.com/arjoma/scheinfirmen-at/internal/domain/models"
	"github.com/arjoma/scheinfirmen-at/internal/download"
	"github.com/arjoma/scheinfirmen-at/internal/logger"
	"github.com/arjoma/scheinfirmen-at/internal/parser"
	"github.com/arjoma/scheinfirmen-at/internal/schema"
	"github.com/arjoma/scheinfirmen-at/internal/stats"
	"github.com/arjoma/scheinfirmen-at/internal/storage"
	"github.com/arjoma/scheinfirmen-at/internal/validate"
	"github.com/arjoma/scheinfirmen-at/internal/verify"
)

// Exit codes of the convert pipeline. Each failing stage maps to its own
// non-zero code so callers can tell them apart; validation warnings never
// cause a non-zero exit.
const (
	exitAcquire  = 1
	exitParse    = 2
	exitValidate = 3
	exitVerify   = 4
	exitArchive  = 5
)

// startServer initializes and starts the HTTP server in a separate goroutine.
func startServer(router http.Handler, port string) *http.Server {
	server := &http.Server{
		Addr:              ":" + port,
		Handler:           router,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		logger.L().Info().Str("port", port).Msg("server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.L().Fatal().Err(err).Msg("server failed to start")
		}
	}()

	return server
}

// gracefulShutdown terminates the HTTP server and cleans up resources when
// an OS interrupt signal (SIGINT, SIGTERM) is received.
func gracefulShutdown(ctx context.Context, server *http.Server, cleanup func()) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	<-quit
	logger.L().Info().Msg("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.L().Fatal().Err(err).Msg("server forced to shutdown")
	}

	cleanup()
	logger.L().Info().Msg("server exited gracefully")
}

// acquire returns the raw extract bytes, either from a local file or by
// downloading from the configured URL.
func acquire(ctx context.Context, input, url string) ([]byte, error) {
	if input != "" {
		logger.L().Info().Str("file", input).Msg("reading local input")
		return os.ReadFile(input)
	}
	logger.L().Info().Str("url", url).Msg("downloading extract")
	return download.Fetch(ctx, url, download.Options{})
}

// parseAndValidate runs the parse and validate stages, exiting the process
// on the first fatal stage. Warnings are logged and never fatal.
func parseAndValidate(raw []byte, minRows int) *models.Batch {
	batch, err := parser.Parse(raw)
	if err != nil {
		logger.L().Error().Err(err).Msg("parse failed")
		os.Exit(exitParse)
	}
	logger.L().Info().
		Int("records", batch.RawRowCount).
		Str("stand", batch.StandDatum).
		Str("zeit", batch.StandZeit).
		Msg("parsed extract")

	report := validate.Validate(batch, validate.Options{
		MinRows:           minRows,
		KennzifferPattern: config.AppConfig.Pipeline.KennzifferPattern,
	})
	for _, w := range report.Warnings {
		logger.L().Warn().Str("finding", w.String()).Msg("validation warning")
	}
	if !report.OK() {
		for _, e := range report.Errors {
			logger.L().Error().Str("finding", e.String()).Msg("validation error")
		}
		logger.L().Error().Int("errors", len(report.Errors)).Msg("validation failed")
		os.Exit(exitValidate)
	}
	logger.L().Info().Int("warnings", len(report.Warnings)).Msg("validation passed")

	return batch
}

// runConvert executes the full pipeline: acquire, parse, validate, serialize,
// verify, and optionally generate the stats report.
func runConvert(ctx context.Context, input, url, out string, minRows int, skipVerify bool, statsPath string) {
	raw, err := acquire(ctx, input, url)
	if err != nil {
		logger.L().Error().Err(err).Msg("acquisition failed")
		os.Exit(exitAcquire)
	}

	batch := parseAndValidate(raw, minRows)

	paths := verify.Paths{
		CSV:   filepath.Join(out, "scheinfirmen.csv"),
		JSONL: filepath.Join(out, "scheinfirmen.jsonl"),
		XML:   filepath.Join(out, "scheinfirmen.xml"),
	}
	jsonSchemaPath := filepath.Join(out, "scheinfirmen.json-schema.json")
	xsdPath := filepath.Join(out, "scheinfirmen.xsd")

	writers := []struct {
		label string
		path  string
		write func(*models.Batch, string) (int, error)
	}{
		{"csv", paths.CSV, convert.WriteCSV},
		{"jsonl", paths.JSONL, convert.WriteJSONL},
		{"xml", paths.XML, convert.WriteXML},
	}
	for _, w := range writers {
		n, err := w.write(batch, w.path)
		if err != nil {
			logger.L().Fatal().Err(err).Str("format", w.label).Msg("write failed")
		}
		logger.L().Debug().Str("format", w.label).Int("rows", n).Str("path", w.path).Msg("artifact written")
	}

	if err := schema.WriteJSONSchema(jsonSchemaPath); err != nil {
		logger.L().Fatal().Err(err).Msg("write json schema failed")
	}
	if err := schema.WriteXSD(xsdPath); err != nil {
		logger.L().Fatal().Err(err).Msg("write xsd failed")
	}

	if !skipVerify {
		verifyErrs := verify.Verify(paths, batch.RawRowCount)
		verifyErrs = append(verifyErrs, verify.VerifySchemas(paths.JSONL, paths.XML, jsonSchemaPath, xsdPath)...)
		if len(verifyErrs) > 0 {
			for _, ve := range verifyErrs {
				logger.L().Error().Str("finding", ve).Msg("verification error")
			}
			logger.L().Error().Msg("cross-format verification failed, outputs may be inconsistent")
			os.Exit(exitVerify)
		}
		logger.L().Info().Int("records", batch.RawRowCount).Msg("verification passed")
	}

	if statsPath != "" {
		if err := stats.Generate(paths.JSONL, statsPath); err != nil {
			logger.L().Warn().Err(err).Msg("stats generation failed (non-fatal)")
		}
	}

	fmt.Printf("OK: wrote %d records to %s/ (Stand: %s %s)\n",
		batch.RawRowCount, out, batch.StandDatum, batch.StandZeit)
}

// runArchive executes acquisition, parse and validate, then persists the
// snapshot to PostgreSQL. A Stand already archived is skipped unless --force.
func runArchive(ctx context.Context, input, url string, minRows int, force bool) {
	raw, err := acquire(ctx, input, url)
	if err != nil {
		logger.L().Error().Err(err).Msg("acquisition failed")
		os.Exit(exitAcquire)
	}

	batch := parseAndValidate(raw, minRows)

	db, err := app.InitPostgres(config.AppConfig)
	if err != nil {
		logger.L().Error().Err(err).Msg("db connect error")
		os.Exit(exitArchive)
	}
	defer func() { _ = db.Close() }()

	if err := app.Migrate(db); err != nil {
		logger.L().Error().Err(err).Msg("migrations failed")
		os.Exit(exitArchive)
	}

	repo := storage.NewSnapshotRepository(db)

	exists, err := repo.HasSnapshotForStand(batch.StandDatum)
	if err != nil {
		logger.L().Error().Err(err).Msg("check snapshot log failed")
		os.Exit(exitArchive)
	}
	if exists && !force {
		logger.L().Info().Str("stand", batch.StandDatum).Msg("snapshot already archived")
		return
	}
	if exists && force {
		if err := repo.DeleteRecordsByStand(batch.StandDatum); err != nil {
			logger.L().Error().Err(err).Msg("delete existing snapshot failed")
			os.Exit(exitArchive)
		}
	}

	if err := repo.InsertRecordsBatch(batch.StandDatum, batch.Records); err != nil {
		logger.L().Error().Err(err).Msg("insert snapshot failed")
		os.Exit(exitArchive)
	}
	if err := repo.UpsertSnapshotLog(batch.StandDatum, batch.StandZeit, batch.RawRowCount); err != nil {
		logger.L().Error().Err(err).Msg("update snapshot log failed")
		os.Exit(exitArchive)
	}

	logger.L().Info().
		Str("stand", batch.StandDatum).
		Int("records", batch.RawRowCount).
		Bool("force", force).
		Msg("snapshot archived")
}

func main() {
	ctx := context.Background()

	// Load configuration from environment or .env file
	config.LoadConfig()

	// Initialize JSON logger
	logger.Init()

	// Parse CLI flags (override config defaults if provided)
	mode := flag.String("mode", "convert", "Mode: convert, archive or api")
	input := flag.String("input", "", "Use a local file instead of downloading")
	url := flag.String("url", config.AppConfig.Pipeline.SourceURL, "URL to download the extract from")
	out := flag.String("out", config.AppConfig.Pipeline.OutputDir, "Output directory for converted files")
	minRows := flag.Int("min-rows", config.AppConfig.Pipeline.MinRows, "Minimum expected record count")
	skipVerify := flag.Bool("skip-verify", false, "Skip cross-format verification step")
	statsPath := flag.String("stats", "", "Generate a Markdown statistics report (e.g. data/STATS.md)")
	force := flag.Bool("force", false, "Re-archive a Stand even if already archived")
	port := flag.String("port", config.AppConfig.Server.Port, "Port for API mode")
	flag.Parse()

	switch *mode {
	case "convert":
		logger.L().Info().Msg("running convert pipeline")
		runConvert(ctx, *input, *url, *out, *minRows, *skipVerify, *statsPath)

	case "archive":
		logger.L().Info().Msg("running archive")
		runArchive(ctx, *input, *url, *minRows, *force)

	case "api":
		logger.L().Info().Msg("starting API server")
		router, cleanup, err := app.InitializeApp()
		if err != nil {
			logger.L().Fatal().Err(err).Msg("app init error")
		}
		server := startServer(router, *port)
		gracefulShutdown(ctx, server, cleanup)

	default:
		logger.L().Fatal().Str("mode", *mode).Msg("unknown mode")
	}
}
