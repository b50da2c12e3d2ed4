package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/JonMunkholm/regdef/internal/catalog"
	"github.com/JonMunkholm/regdef/internal/config"
	"github.com/JonMunkholm/regdef/internal/logging"
	"github.com/JonMunkholm/regdef/internal/registers"
	"github.com/JonMunkholm/regdef/internal/store"
	"github.com/JonMunkholm/regdef/internal/web"
)

// Exit codes.
const (
	exitOK    = 0
	exitError = 1
	exitUsage = 2
)

// env is the process environment as run sees it.
type env struct {
	getenv func(string) string
	dotenv bool // A .env file was loaded
}

// ExitError ends a run with a specific exit code.
type ExitError struct {
	Code  int
	Err   error
	Quiet bool // Already reported, e.g. by the flag package
}

func (e *ExitError) Error() string { return e.Err.Error() }

func (e *ExitError) Unwrap() error { return e.Err }

func usageError(format string, args ...any) error {
	return &ExitError{Code: exitUsage, Err: fmt.Errorf(format, args...)}
}

// options holds the parsed command line.
type options struct {
	groups           string
	lang             string
	format           string
	delimiter        string
	comment          string
	lazyQuotes       bool
	trimLeadingSpace bool
	serve            bool
	save             bool
	logLevel         string
	logFormat        string

	path string
	set  map[string]bool // Flags given explicitly
}

func parseFlags(args []string, stderr io.Writer) (*options, error) {
	o := &options{set: make(map[string]bool)}

	fs := flag.NewFlagSet("regcat", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "Usage: regcat [flags] regs-file.csv\n\nFlags:\n")
		fs.PrintDefaults()
	}

	fs.StringVar(&o.groups, "g", "", "group filter: comma separates alternatives, & joins required groups (e.g. main,status&grid)")
	fs.StringVar(&o.lang, "lang", "", "description locale (overrides REGCAT_LANG)")
	fs.StringVar(&o.format, "format", string(catalog.FormatText), "output format: text, json or yaml")
	fs.StringVar(&o.delimiter, "delimiter", "", "CSV field delimiter (overrides CSV_DELIMITER)")
	fs.StringVar(&o.comment, "comment", "", "CSV comment character (overrides CSV_COMMENT)")
	fs.BoolVar(&o.lazyQuotes, "lazy-quotes", false, "accept quotes inside unquoted fields")
	fs.BoolVar(&o.trimLeadingSpace, "trim-leading-space", false, "ignore leading white space in fields")
	fs.BoolVar(&o.serve, "serve", false, "serve the catalog over HTTP until interrupted")
	fs.BoolVar(&o.save, "save", false, "store the catalog in PostgreSQL (requires DATABASE_URL)")
	fs.StringVar(&o.logLevel, "log-level", "", "log level: debug, info, warn or error (overrides LOG_LEVEL)")
	fs.StringVar(&o.logFormat, "log-format", "", "log format: text or json (overrides LOG_FORMAT)")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil, err
		}
		return nil, &ExitError{Code: exitUsage, Err: err, Quiet: true}
	}
	fs.Visit(func(f *flag.Flag) { o.set[f.Name] = true })

	if fs.NArg() != 1 {
		fs.Usage()
		return nil, usageError("expected one register file, got %d arguments", fs.NArg())
	}
	o.path = fs.Arg(0)
	return o, nil
}

// apply overrides cfg with the flags given on the command line.
func (o *options) apply(cfg *config.Config) {
	if o.set["lang"] {
		cfg.Reader.Lang = o.lang
	}
	if o.set["delimiter"] {
		cfg.Reader.Delimiter = o.delimiter
	}
	if o.set["comment"] {
		cfg.Reader.Comment = o.comment
	}
	if o.set["lazy-quotes"] {
		cfg.Reader.LazyQuotes = o.lazyQuotes
	}
	if o.set["trim-leading-space"] {
		cfg.Reader.TrimLeadingSpace = o.trimLeadingSpace
	}
	if o.set["log-level"] {
		cfg.Logging.Level = o.logLevel
	}
	if o.set["log-format"] {
		cfg.Logging.Format = o.logFormat
	}
}

// run executes one invocation and returns the process exit code.
func run(ctx context.Context, args []string, e env, stdout, stderr io.Writer) int {
	err := execute(ctx, args, e, stdout, stderr)
	if err == nil || errors.Is(err, flag.ErrHelp) {
		return exitOK
	}

	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		if !exitErr.Quiet {
			fmt.Fprintf(stderr, "regcat: %v\n", exitErr.Err)
		}
		return exitErr.Code
	}

	fmt.Fprintf(stderr, "regcat: %s\n", registers.FormatUserError(err))
	if !registers.IsUserFacing(err) {
		fmt.Fprintf(stderr, "  %v\n", err)
	}
	return exitError
}

func execute(ctx context.Context, args []string, e env, stdout, stderr io.Writer) error {
	opts, err := parseFlags(args, stderr)
	if err != nil {
		return err
	}

	cfg, err := config.LoadFrom(e.getenv)
	if err != nil {
		return &ExitError{Code: exitError, Err: err}
	}
	// The environment was valid, so a failure now comes from the flags
	opts.apply(cfg)
	if err := cfg.Validate(); err != nil {
		return &ExitError{Code: exitUsage, Err: err}
	}

	logger := logging.Setup(stderr, cfg.Logging.Level, cfg.Logging.Format)
	if e.dotenv {
		logger.Debug("loaded .env file")
	}
	logger.Debug("configuration loaded", "config", cfg.String())

	format, err := catalog.ParseFormat(opts.format)
	if err != nil {
		return usageError("%v", err)
	}
	filter, err := catalog.ParseGroupFilter(opts.groups)
	if err != nil {
		return usageError("%v", err)
	}
	if opts.save && !cfg.Database.Enabled() {
		return usageError("-save requires DATABASE_URL")
	}

	c, err := catalog.Load(ctx, opts.path, catalog.Options{
		Dialect: cfg.Reader.Dialect(),
		Lang:    cfg.Reader.Lang,
		Logger:  logger,
	})
	if err != nil {
		return err
	}

	var st *store.Store
	if opts.save || (opts.serve && cfg.Database.Enabled()) {
		pool, err := store.Open(ctx, cfg.Database)
		if err != nil {
			return err
		}
		defer pool.Close()

		st = store.New(pool)
		if err := st.EnsureSchema(ctx); err != nil {
			return err
		}
	}
	if opts.save {
		if _, err := st.SaveCatalog(ctx, c); err != nil {
			return err
		}
	}

	if err := catalog.Write(stdout, format, c.Filter(filter)); err != nil {
		return fmt.Errorf("write catalog: %w", err)
	}

	if !opts.serve {
		return nil
	}

	webOpts := web.Options{Server: cfg.Server, Reader: cfg.Reader}
	if st != nil {
		webOpts.Store = st
	}
	return serve(ctx, web.NewServer(c, webOpts), cfg.Server.ShutdownTimeout)
}

// server is the part of *web.Server that serve drives.
type server interface {
	Start() error
	Shutdown(ctx context.Context) error
}

// serve runs srv until ctx is cancelled, then shuts it down within timeout.
func serve(ctx context.Context, srv server, timeout time.Duration) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
	}

	slog.Info("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serve: %w", err)
	}

	slog.Info("server stopped")
	return nil
}
