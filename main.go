package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/joho/godotenv"
	"github.com/microsoft/ApplicationInsights-Go/appinsights"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/afrah-create/agro-advisor/advisor-api/appinsightsutils"
	"github.com/afrah-create/agro-advisor/advisor-api/config"
	"github.com/afrah-create/agro-advisor/advisor-api/models"
)

const githubConfigFile = "github_config.json"

func main() {
	var configFile string
	var listenAddress string

	rootCmd := &cobra.Command{
		Use:   "advisor-api",
		Short: "Agricultural advisory API",
		Long: `advisor-api serves evidence-backed crop recommendations.

It loads model artifacts (crop database, rule engine configuration) from a
GitHub repository, caches them on disk, and exposes soil analysis, cropping
plans and risk assessments over HTTP.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(configFile, listenAddress)
		},
	}
	rootCmd.Flags().StringVar(&configFile, "config", "", "Path to a config file (optional)")
	rootCmd.Flags().StringVar(&listenAddress, "address", "", "Listen address (overrides config)")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}

func run(configFile string, listenAddress string) error {
	fmt.Printf("Server starting...[%d]\n", os.Getpid())

	_, err := os.Stat(".env")
	if err == nil {
		if err := godotenv.Load(); err != nil {
			return fmt.Errorf("error loading .env file: %w", err)
		}
	}

	settings, err := config.Load(configFile)
	if err != nil {
		return err
	}
	if listenAddress != "" {
		settings.ListenAddress = listenAddress
	}
	setupLogging(settings.LogLevel)

	// github_config.json takes precedence over env config, as in the
	// original deployment.
	if githubConfig, err := models.LoadGitHubConfig(githubConfigFile); err == nil {
		applyGitHubConfig(settings, githubConfig)
	} else if !os.IsNotExist(err) {
		log.Warn().Err(err).Msg("ignoring unreadable github_config.json")
	}

	log.Info().
		Str("repo", settings.GitHubRepo).
		Str("branch", settings.GitHubBranch).
		Str("cacheDir", settings.ModelCacheDir).
		Msg("model store configured")

	disk, err := models.NewDiskCache(settings.ModelCacheDir)
	if err != nil {
		return fmt.Errorf("failed to create model cache: %w", err)
	}
	client := models.NewClient(settings.GitHubRepo, settings.GitHubBranch, settings.GitHubToken, log.Logger)
	manager := models.NewManager(client, disk, log.Logger)

	loadCtx, cancelLoad := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancelLoad()
	if _, err := manager.LoadAll(loadCtx); err != nil {
		log.Warn().Err(err).Msg("model store unavailable, running in offline mode")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()
	if err := serveAPI(ctx, settings, manager); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	fmt.Println("Server stopped!")
	return nil
}

// applyGitHubConfig overrides the model store settings from
// github_config.json. A config without a repository is ignored so a stray
// file cannot blank out the configured store.
func applyGitHubConfig(settings *config.Settings, githubConfig *models.GitHubConfig) {
	if githubConfig.GitHubRepo == "" {
		log.Warn().Msg("github_config.json has no github_repo, ignoring it")
		return
	}
	settings.GitHubRepo = githubConfig.GitHubRepo
	settings.GitHubBranch = githubConfig.Branch
	if githubConfig.Token != "" {
		settings.GitHubToken = githubConfig.Token
	}
}

func setupLogging(level string) {
	parsed, err := zerolog.ParseLevel(level)
	if err != nil {
		parsed = zerolog.InfoLevel
	}
	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(parsed).
		With().Timestamp().Logger()
}

func serveAPI(ctx context.Context, settings *config.Settings, manager *models.Manager) error {
	log.Info().Str("address", settings.ListenAddress).Msg("listening")
	l, err := net.Listen("tcp", settings.ListenAddress)
	if err != nil {
		return err
	}

	var telemetryClient appinsights.TelemetryClient
	if settings.AppInsightsKey != "" {
		telemetryConfig := appinsights.NewTelemetryConfiguration(settings.AppInsightsKey)
		// Configure how many items can be sent in one call to the data collector:
		telemetryConfig.MaxBatchSize = 8192
		// Configure the maximum delay before sending queued telemetry:
		telemetryConfig.MaxBatchInterval = 2 * time.Second

		telemetryClient = appinsights.NewTelemetryClientFromConfig(telemetryConfig)
		telemetryClient.Context().Tags.Cloud().SetRole("advisor-api")
	} else {
		log.Info().Msg("telemetry disabled (no instrumentation key)")
	}

	mux := appinsightsutils.NewServeMuxWithTrace(telemetryClient)
	registerHandlers(mux, telemetryClient, manager, settings.ReportTTL)
	server := &http.Server{
		Addr:    settings.ListenAddress,
		Handler: mux,
	}
	go func() {
		<-ctx.Done()
		log.Info().Msg("shutting down")
		_ = server.Shutdown(context.Background())
	}()
	return server.Serve(l)
}

func registerHandlers(mux *appinsightsutils.ServeMuxWithTrace, telemetryClient appinsights.TelemetryClient, manager *models.Manager, reportTTL time.Duration) {

	api := NewApiRouter(telemetryClient, manager, reportTTL)

	mux.HandleFunc("GET /", api.Hello)
	mux.HandleFunc("GET /health", api.HealthGet)
	mux.HandleFunc("GET /models", api.ModelsGet)
	mux.HandleFunc("POST /models/refresh", api.ModelsRefresh)
	mux.HandleFunc("POST /analyze", api.Analyze)
	mux.HandleFunc("GET /reports/{id}", api.ReportGet)
	mux.HandleFuncWithContext("GET /reports/{id}/image", api.ReportImageGet)
}
