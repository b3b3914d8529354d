// Command bridge-import loads a wiktextract dump into the translation graph.
// It resolves bridge-language headwords and their source- and target-language
// translations to word IDs, stores the directed edges in batches, and finally
// derives direct source -> target edges through the bridge language.
//
// Usage:
//
//	bridge-import [flags] [input.jsonl | input.jsonl.gz | s3://bucket/key]
//
// Flags:
//
//	--log-level      debug|info|warning|error|critical (overrides config)
//	--dry-run        parse and resolve in memory without writing to the store
//	--db-driver      postgres|sqlite
//	--db-name        database name (default: dictdb)
//	--db-host        database host
//	--db-user        database user
//	--db-password    database password
//	--import-config  path to importer YAML config file
//	--version        print the build version and exit
//
// Exit codes: 0 = run completed (per-record problems are in the error
// summary), 1 = setup failure or unreadable input.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/heartmarshall/lexibridge/internal/adapter/memory"
	"github.com/heartmarshall/lexibridge/internal/adapter/postgres"
	"github.com/heartmarshall/lexibridge/internal/adapter/postgres/lexicon"
	"github.com/heartmarshall/lexibridge/internal/adapter/source"
	"github.com/heartmarshall/lexibridge/internal/adapter/sqlite"
	"github.com/heartmarshall/lexibridge/internal/app"
	"github.com/heartmarshall/lexibridge/internal/app/bridge"
	"github.com/heartmarshall/lexibridge/internal/config"
	"github.com/heartmarshall/lexibridge/pkg/ctxutil"
)

// Compile-time interface assertions.
var (
	_ bridge.Store = (*lexicon.Repo)(nil)
	_ bridge.Store = (*sqlite.Store)(nil)
	_ bridge.Store = (*memory.Store)(nil)
)

func main() {
	os.Exit(run())
}

func run() int {
	logLevelFlag := flag.String("log-level", "", "log level: debug, info, warning, error, critical")
	dryRunFlag := flag.Bool("dry-run", false, "process the file without writing to the store")
	dbDriverFlag := flag.String("db-driver", "", "store driver: postgres or sqlite")
	dbNameFlag := flag.String("db-name", "", "database name")
	dbHostFlag := flag.String("db-host", "", "database host")
	dbUserFlag := flag.String("db-user", "", "database user")
	dbPasswordFlag := flag.String("db-password", "", "database password")
	importConfigFlag := flag.String("import-config", "", "path to importer YAML config file")
	versionFlag := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *versionFlag {
		fmt.Println(app.BuildVersion())
		return 0
	}

	_ = godotenv.Load()

	appCfg, err := config.Load()
	if err != nil {
		log.Printf("load app config: %v", err)
		return 1
	}

	// CLI flags override config.
	if *logLevelFlag != "" {
		appCfg.Log.Level = *logLevelFlag
	}
	overrideString(&appCfg.Database.Driver, *dbDriverFlag)
	overrideString(&appCfg.Database.Name, *dbNameFlag)
	overrideString(&appCfg.Database.Host, *dbHostFlag)
	overrideString(&appCfg.Database.User, *dbUserFlag)
	overrideString(&appCfg.Database.Password, *dbPasswordFlag)
	if err := appCfg.Validate(); err != nil {
		log.Printf("invalid configuration: %v", err)
		return 1
	}

	logger, logCloser := app.NewLogger(appCfg.Log)
	defer logCloser.Close()

	importCfg, err := bridge.LoadConfig(*importConfigFlag)
	if err != nil {
		logger.Error("load import config", slog.String("error", err.Error()))
		return 1
	}
	if *dryRunFlag {
		importCfg.DryRun = true
	}
	if flag.NArg() > 0 {
		importCfg.InputPath = flag.Arg(0)
	}
	if err := importCfg.Validate(); err != nil {
		logger.Error("invalid import config", slog.String("error", err.Error()))
		return 1
	}

	runID := uuid.NewString()
	ctx := ctxutil.WithRunID(context.Background(), runID)
	logger = logger.With(slog.String("run_id", runID))
	logger.Info("starting import",
		slog.String("version", app.BuildVersion()),
		slog.String("input", importCfg.InputPath),
		slog.Bool("dry_run", importCfg.DryRun),
	)

	errSummary, err := bridge.CreateErrorSummary(importCfg.ErrorSummaryPath, importCfg.RawSnippetLen)
	if err != nil {
		logger.Error("open error summary", slog.String("error", err.Error()))
		fmt.Fprintf(os.Stderr, "ERROR: %v\n", err)
		return 1
	}
	defer func() {
		if err := errSummary.Close(); err != nil {
			logger.Error("close error summary", slog.String("error", err.Error()))
		}
	}()

	input, err := source.Open(ctx, importCfg.InputPath, appCfg.Storage)
	if err != nil {
		logger.Error("open input", slog.String("error", err.Error()))
		fmt.Fprintf(os.Stderr, "ERROR: %v\n", err)
		return 1
	}
	defer input.Close()

	store, closeStore, err := openStore(ctx, logger, appCfg.Database, importCfg.DryRun)
	if err != nil {
		logger.Error("connect to store", slog.String("error", err.Error()))
		fmt.Fprintf(os.Stderr, "ERROR: %v\n", err)
		return 1
	}
	defer closeStore()

	session, err := bridge.NewSession(logger, store, errSummary, *importCfg)
	if err != nil {
		logger.Error("create import session", slog.String("error", err.Error()))
		return 1
	}

	fmt.Printf("Processing file: %s\n", importCfg.InputPath)
	stats, runErr := session.Run(ctx, source.Lines(input))

	if err := stats.WriteSummary(os.Stdout, importCfg.DryRun); err != nil {
		logger.Warn("write summary", slog.String("error", err.Error()))
	}
	fmt.Println("Import process finished.")

	if runErr != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %v\n", runErr)
		return 1
	}
	return 0
}

// openStore returns the store for this run and a function releasing it.
// Live Postgres runs hold a single acquired connection for their lifetime.
func openStore(ctx context.Context, logger *slog.Logger, cfg config.DatabaseConfig, dryRun bool) (bridge.Store, func(), error) {
	if dryRun {
		logger.Info("dry run: using in-memory store, nothing will be written")
		return memory.New(), func() {}, nil
	}

	if err := cfg.CheckCredentials(); err != nil {
		return nil, nil, err
	}

	switch cfg.Driver {
	case config.DriverSQLite:
		db, err := sqlite.Open(ctx, cfg.ConnString())
		if err != nil {
			return nil, nil, err
		}
		logger.Info("connected to sqlite", slog.String("database", cfg.Name))
		return sqlite.New(db), func() { db.Close() }, nil

	default:
		fmt.Printf("Attempting to connect to database '%s' as user '%s'...\n", cfg.Name, cfg.User)
		pool, err := postgres.NewPool(ctx, cfg)
		if err != nil {
			return nil, nil, err
		}
		conn, err := pool.Acquire(ctx)
		if err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("acquire connection: %w", err)
		}
		fmt.Printf("Successfully connected to database '%s'.\n", cfg.Name)
		release := func() {
			conn.Release()
			pool.Close()
		}
		return lexicon.New(conn, postgres.NewTxManager(conn)), release, nil
	}
}

func overrideString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
