// Package main is the command-line client for the Slack Audit Logs API.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"

	"slackaudit/auditlogs"
	"slackaudit/config"
	"slackaudit/internal/archive"
	"slackaudit/internal/httpclient"
	"slackaudit/internal/logging"
	"slackaudit/internal/observability"
	"slackaudit/internal/version"
)

const usage = `Usage: slackaudit [-config path] <command> [flags]

Commands:
  schemas   list the object types the API returns
  actions   list the actions the API can report
  logs      fetch audit entries (see "slackaudit logs -h")
  version   print version information
`

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// run executes the CLI and returns the process exit code.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("slackaudit", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprint(stderr, usage)
		fs.PrintDefaults()
	}
	configPath := fs.String("config", "", "path to a YAML config file (default: config.yaml or config/config.yaml)")
	versionFlag := fs.Bool("version", false, "print version information")
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	rest := fs.Args()
	if *versionFlag || (len(rest) > 0 && rest[0] == "version") {
		fmt.Fprintln(stdout, version.Info())
		return 0
	}
	if len(rest) == 0 {
		fs.Usage()
		return 2
	}

	command, cmdArgs := rest[0], rest[1:]
	var logsCmd *logsCommand
	switch command {
	case "schemas", "actions":
		if len(cmdArgs) > 0 {
			fmt.Fprintf(stderr, "%s takes no arguments\n", command)
			return 2
		}
	case "logs":
		var err error
		logsCmd, err = parseLogsCommand(cmdArgs, stderr)
		if err != nil {
			if errors.Is(err, flag.ErrHelp) {
				return 0
			}
			return 2
		}
	default:
		fmt.Fprintf(stderr, "unknown command %q\n\n", command)
		fs.Usage()
		return 2
	}

	loaded, err := config.LoadFile(*configPath)
	if err != nil {
		fmt.Fprintf(stderr, "failed to load config: %v\n", err)
		return 1
	}
	cfg := loaded.Config

	logger, err := logging.New(logging.Options{Level: cfg.Log.Level, Format: cfg.Log.Format, Out: stderr})
	if err != nil {
		fmt.Fprintf(stderr, "failed to set up logging: %v\n", err)
		return 1
	}
	slog.SetDefault(logger)
	if loaded.Path != "" {
		logger.Debug("loaded config file", "path", loaded.Path)
	}

	var registry *prometheus.Registry
	var hooks auditlogs.Hooks
	if cfg.Metrics.Enabled {
		registry = prometheus.NewRegistry()
		hooks = observability.NewPrometheusHooks(registry)
	}

	client, session, err := newClient(cfg, logger, hooks)
	if err != nil {
		logger.Error("failed to create client", "error", err)
		return 1
	}
	defer session.Close()

	var resp *auditlogs.Response
	switch command {
	case "schemas":
		resp, err = client.Schemas(ctx)
	case "actions":
		resp, err = client.Actions(ctx)
	case "logs":
		resp, err = client.Logs(ctx, logsCmd.filter(), logsCmd.callOptions()...)
	}
	code := report(resp, err, stdout, logger)

	if code == 0 && logsCmd != nil && (logsCmd.archive || cfg.Archive.Enabled) {
		if err := archiveResponse(ctx, cfg, resp, logger); err != nil {
			logger.Error("failed to archive audit entries", "error", err)
			code = 1
		}
	}

	if registry != nil && cfg.Metrics.Textfile != "" {
		if err := observability.WriteTextfile(cfg.Metrics.Textfile, registry); err != nil {
			logger.Error("failed to write metrics textfile", "path", cfg.Metrics.Textfile, "error", err)
			code = 1
		}
	}
	return code
}

// newClient builds the API client and the session it borrows for the whole run.
func newClient(cfg *config.Config, logger *slog.Logger, hooks auditlogs.Hooks) (*auditlogs.Client, *auditlogs.Session, error) {
	if cfg.API.Token == "" {
		return nil, nil, errors.New("api token is required (set SLACK_AUDIT_TOKEN or api.token)")
	}

	tlsConfig, err := httpclient.LoadTLSConfig(httpclient.TLSOptions{
		CAFile:             cfg.API.TLS.CAFile,
		CertFile:           cfg.API.TLS.CertFile,
		KeyFile:            cfg.API.TLS.KeyFile,
		ServerName:         cfg.API.TLS.ServerName,
		InsecureSkipVerify: cfg.API.TLS.InsecureSkipVerify,
	})
	if err != nil {
		return nil, nil, err
	}

	sessionCfg := auditlogs.SessionConfig{
		Timeout:   cfg.API.TimeoutDuration(),
		TLSConfig: tlsConfig,
		Proxy:     cfg.API.Proxy,
		TrustEnv:  cfg.API.TrustEnv,
	}
	if ba := cfg.API.BasicAuth; ba != nil && ba.Username != "" {
		sessionCfg.BasicAuth = &auditlogs.BasicAuth{Username: ba.Username, Password: ba.Password}
	}
	session, err := auditlogs.NewSession(sessionCfg)
	if err != nil {
		return nil, nil, err
	}

	client, err := auditlogs.New(cfg.API.Token,
		auditlogs.WithBaseURL(cfg.API.BaseURL),
		auditlogs.WithTimeout(cfg.API.TimeoutDuration()),
		auditlogs.WithTLSConfig(tlsConfig),
		auditlogs.WithProxy(cfg.API.Proxy),
		auditlogs.WithTrustEnv(cfg.API.TrustEnv),
		auditlogs.WithSession(session),
		auditlogs.WithDefaultHeaders(cfg.API.DefaultHeaders),
		auditlogs.WithUserAgentPrefix(cfg.API.UserAgentPrefix),
		auditlogs.WithUserAgentSuffix(cfg.API.UserAgentSuffix),
		auditlogs.WithLogger(logger),
		auditlogs.WithHooks(hooks),
	)
	if err != nil {
		_ = session.Close()
		return nil, nil, err
	}
	return client, session, nil
}

// report prints the response body and maps the outcome to an exit code.
func report(resp *auditlogs.Response, err error, stdout io.Writer, logger *slog.Logger) int {
	if err != nil {
		if apiErr, ok := auditlogs.AsAPIError(err); ok && apiErr.Response != nil {
			logger.Error("request failed", "error", err, "status", apiErr.Response.StatusCode)
			fmt.Fprintln(stdout, apiErr.Response.RawBody)
			return 1
		}
		logger.Error("request failed", "error", err)
		return 1
	}

	if resp.RawBody != "" {
		var out bytes.Buffer
		if json.Indent(&out, []byte(resp.RawBody), "", "  ") == nil {
			out.WriteByte('\n')
			_, _ = stdout.Write(out.Bytes())
		} else {
			fmt.Fprintln(stdout, resp.RawBody)
		}
	}

	if resp.StatusCode >= 400 {
		logger.Error("api returned an error status",
			"status", resp.StatusCode,
			"url", resp.URL,
			"error", resp.Get("error").String(),
		)
		return 1
	}
	return 0
}

func archiveResponse(ctx context.Context, cfg *config.Config, resp *auditlogs.Response, logger *slog.Logger) error {
	archiveCfg := *cfg
	archiveCfg.Archive.Enabled = true

	result, err := archive.New(ctx, &archiveCfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := result.Close(); err != nil {
			logger.Warn("failed to close archive", "error", err)
		}
	}()

	n, err := result.Save(ctx, resp)
	if err != nil {
		return err
	}
	logger.Info("archived audit entries",
		"count", n,
		"storage", result.Storage.Type(),
		"next_cursor", resp.Get("response_metadata.next_cursor").String(),
	)
	return nil
}
