package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/lmittmann/tint"
	"github.com/peterbourgon/ff/v4"
	"github.com/peterbourgon/ff/v4/ffhelp"

	httpapi "github.com/litesql/mssql-mcp/internal/http"
	"github.com/litesql/mssql-mcp/internal/mcp"
	"github.com/litesql/mssql-mcp/internal/mssql"
)

var (
	version string = "dev"
	commit  string = "none"
	date    string = "unknown"
)

var (
	fs   *ff.FlagSet
	port *uint

	connectionString *string
	maxRows          *int
	logLevel         *string
)

func main() {
	_ = godotenv.Load()

	fs = ff.NewFlagSet("mssql-mcp")
	port = fs.Uint('p', "port", 0, "HTTP server port (0 serves the stdio transport)")
	connectionString = fs.String('s', "connection-string", "", "Default SQL Server connection string (overrides MSSQL_CONNECTION_STRING)")
	maxRows = fs.IntLong("max-rows", 100, "Row cap injected into SELECT statements without a TOP clause")
	logLevel = fs.StringLong("log-level", "info", "Log level (debug|info|warn|error)")
	printVersion := fs.BoolLong("version", "Print version information and exit")
	_ = fs.String('c', "config", "", "config file (optional)")

	if err := ff.Parse(fs, os.Args[1:],
		ff.WithEnvVarPrefix("MSSQL_MCP"),
		ff.WithConfigFileFlag("config"),
		ff.WithConfigFileParser(ff.PlainParser),
	); err != nil {
		fmt.Printf("%s\n", ffhelp.Flags(fs))
		fmt.Printf("err=%v\n", err)
		return
	}

	if *printVersion {
		fmt.Println("mssql-mcp")
		fmt.Printf("Version: %s\n", version)
		fmt.Printf("Commit: %s\n", commit)
		fmt.Printf("Date: %s\n", date)
		return
	}

	if err := run(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// stdout belongs to the stdio transport, so logs go to stderr.
	slog.SetDefault(slog.New(tint.NewHandler(os.Stderr, &tint.Options{
		Level: parseLogLevel(*logLevel),
	})))

	settings := mssql.LoadSettings(os.Environ())
	if *connectionString != "" {
		settings.DefaultConnectionString = *connectionString
	}
	client := mssql.NewClient(settings)
	defer client.CloseAll()

	srv := mcp.NewServer(client, mcp.Config{
		Version: version,
		MaxRows: *maxRows,
	})

	if *port == 0 {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		slog.Info("starting MCP server on stdio", "version", version, "commit", commit, "date", date)
		return srv.Run(ctx)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", httpapi.HealthzHandler)
	mux.HandleFunc("GET /connections", httpapi.ConnectionsHandler(client))
	mux.Handle("/mcp", srv.HTTPHandler())

	server := http.Server{
		Addr:    fmt.Sprintf(":%d", *port),
		Handler: mux,
	}

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-done
		slog.Warn("signal detected...", "signal", sig)
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			slog.Error("HTTP server shutdown failed", "error", err)
		}
	}()

	slog.Info("starting MCP HTTP server", "port", *port, "version", version, "commit", commit, "date", date)
	return server.ListenAndServe()
}

func parseLogLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
