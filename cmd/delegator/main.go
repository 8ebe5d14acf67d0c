package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/threadlane/delegator/internal/config_loader"
	"github.com/threadlane/delegator/internal/evaluator"
	"github.com/threadlane/delegator/internal/events"
	"github.com/threadlane/delegator/internal/headers"
	"github.com/threadlane/delegator/internal/invoker"
	"github.com/threadlane/delegator/internal/memocache"
	"github.com/threadlane/delegator/internal/routes"
	"github.com/threadlane/delegator/internal/server"
	"github.com/threadlane/delegator/internal/transform"
	"github.com/threadlane/delegator/pkg/health"
	"github.com/threadlane/delegator/pkg/logger"
	"github.com/threadlane/delegator/pkg/otel"
	"github.com/threadlane/delegator/pkg/utils"
)

// Build-time variables set via ldflags
var (
	version   = "0.1.0"
	commit    = "none"
	buildDate = "unknown"
)

// Command-line flags
var (
	configPath string
	logLevel   string
	logFormat  string
	logOutput  string
)

const component = "delegator"

func main() {
	rootCmd := &cobra.Command{
		Use:   "delegator",
		Short: "Delegator - HTTP request orchestration gateway",
		Long: `Delegator accepts cryptograms describing a sequence of backend calls
and evaluates them: invoking services, reshaping payloads with the
transform language, memoizing responses and emitting user-action events.`,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
	}

	pflag.CommandLine.AddGoFlagSet(flag.CommandLine)

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the gateway and begin serving requests",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe()
		},
	}

	serveCmd.Flags().StringVarP(&configPath, "config", "c", "",
		fmt.Sprintf("Path to the configuration file (can also use %s env var)", config_loader.EnvConfigPath))
	serveCmd.Flags().StringVar(&logLevel, "log-level", "",
		"Log level (debug, info, warn, error). Env: LOG_LEVEL")
	serveCmd.Flags().StringVar(&logFormat, "log-format", "",
		"Log format (text, json). Env: LOG_FORMAT")
	serveCmd.Flags().StringVar(&logOutput, "log-output", "",
		"Log output (stdout, stderr). Env: LOG_OUTPUT")

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("Delegator\n")
			fmt.Printf("  Version:    %s\n", version)
			fmt.Printf("  Commit:     %s\n", commit)
			fmt.Printf("  Built:      %s\n", buildDate)
		},
	}

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(versionCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// buildLoggerConfig loads logger defaults from the environment and applies
// any command-line flag overrides, flags taking precedence.
func buildLoggerConfig() logger.Config {
	cfg := logger.ConfigFromEnv()

	if logLevel != "" {
		cfg.Level = logLevel
	}
	if logFormat != "" {
		cfg.Format = logFormat
	}
	if logOutput != "" {
		cfg.Output = logOutput
	}

	cfg.Component = component
	cfg.Version = version

	return cfg
}

func runServe() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	log, err := logger.NewLogger(buildLoggerConfig())
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}

	log.Infof(ctx, "Starting delegator version=%s commit=%s built=%s", version, commit, buildDate)

	cfg, err := config_loader.Load(configPath)
	if err != nil {
		log.Errorf(logger.WithError(ctx, err), "Failed to load configuration")
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	log.Infof(ctx, "Configuration loaded: %d services, %d virtualhosts",
		len(cfg.Services), len(cfg.Virtualhosts))

	cookieSecret, err := utils.GetEnvOrError(headers.EnvCookieSecret)
	if err != nil {
		log.Errorf(logger.WithError(ctx, err), "Missing required environment variable")
		return err
	}

	tp, err := otel.InitTracer(component, version, otel.GetTraceSampleRatio(ctx, log))
	if err != nil {
		log.Errorf(logger.WithError(ctx, err), "Failed to initialize OpenTelemetry")
		return fmt.Errorf("failed to initialize OpenTelemetry: %w", err)
	}
	defer func() {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		_ = tp.Shutdown(shutdownCtx)
	}()

	evalCfg := &evaluator.Config{
		Cache:    memocache.New(),
		Services: cfg.Services,
		Logger:   log,
	}

	if cfg.HTTP.MetricsPort > 0 {
		metrics := health.NewMetricsServer(log, strconv.Itoa(cfg.HTTP.MetricsPort), health.MetricsConfig{
			Component: component,
			Version:   version,
			Commit:    commit,
		})
		if err := metrics.Start(ctx); err != nil {
			return fmt.Errorf("failed to start metrics server: %w", err)
		}
		defer func() {
			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer shutdownCancel()
			_ = metrics.Shutdown(shutdownCtx)
		}()
		evalCfg.Observer = metrics
	}

	var userActionTopic *events.Topic
	if cfg.Events != nil {
		sink, err := events.NewCloudEventSink(log, component)
		if err != nil {
			log.Errorf(logger.WithError(ctx, err), "Failed to create event sink")
			return fmt.Errorf("failed to create event sink: %w", err)
		}
		defer sink.Close()
		evalCfg.Transform = transform.NewContext(sink, log)
		userActionTopic = &cfg.Events.UserAction
	} else {
		evalCfg.Transform = transform.NewContext(nil, log)
	}

	timeout, err := cfg.HTTP.Client.ParseDefaultTimeout()
	if err != nil {
		return fmt.Errorf("invalid default timeout: %w", err)
	}
	evalCfg.Client = invoker.NewLiveClient(cfg.HTTP.Client.UserAgent, timeout, log)

	eval, err := evaluator.New(evalCfg)
	if err != nil {
		return fmt.Errorf("failed to create evaluator: %w", err)
	}

	srv, err := server.New(&server.Config{
		HTTP:         cfg.HTTP,
		Virtualhosts: cfg.Virtualhosts,
		Deps: routes.Deps{
			Evaluator:    eval,
			Log:          log,
			CookieSecret: cookieSecret,
			UserAction:   userActionTopic,
		},
		Logger: log,
	})
	if err != nil {
		log.Errorf(logger.WithError(ctx, err), "Failed to build HTTP server")
		return fmt.Errorf("failed to build HTTP server: %w", err)
	}

	// second signal forces immediate exit
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		log.Infof(ctx, "Received signal %s, initiating graceful shutdown...", sig)
		cancel()

		sig = <-sigCh
		log.Infof(ctx, "Received second signal %s, forcing immediate exit", sig)
		os.Exit(1)
	}()

	srv.Start(ctx)
	<-ctx.Done()

	if err := srv.Shutdown(context.Background()); err != nil {
		log.Errorf(logger.WithError(ctx, err), "HTTP server shutdown failed")
		return err
	}

	log.Info(ctx, "Delegator shutdown complete")
	return nil
}
