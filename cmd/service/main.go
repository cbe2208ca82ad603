package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"syscall"

	log "github.com/sirupsen/logrus"

	"github.com/2beens/fitdash/internal"
	"github.com/2beens/fitdash/internal/config"
	"github.com/2beens/fitdash/internal/logging"
	"github.com/2beens/fitdash/internal/secrets"
	"github.com/2beens/fitdash/pkg"
)

func main() {
	env := flag.String("env", "development", "environment [prod | production | dev | development | ddev | dockerdev ]")
	configPath := flag.String("config", "./config.toml", "path for the TOML config file")
	genKey := flag.Bool("genkey", false, "print a new tokens encryption key and exit")
	flag.Parse()

	if *genKey {
		key, err := secrets.GenerateKey()
		if err != nil {
			panic(err)
		}
		fmt.Println(key)
		return
	}

	fmt.Println("starting ...")
	log.Warnf("---->> running in [%s] environment", *env)

	cfg, err := config.Load(*env, *configPath)
	if err != nil {
		panic(err)
	}

	logging.Setup(logging.LoggerSetupParams{
		LogFileName:      cfg.LogsPath,
		LogToStdout:      cfg.LogToStdout,
		LogLevel:         cfg.LogLevel,
		LogFormatJSON:    false,
		Environment:      cfg.Environment,
		SentryEnabled:    cfg.SentryEnabled,
		SentryDSN:        os.Getenv("SENTRY_DSN"),
		SentryServerName: "fitdash",
	})

	log.Debugf("using port: %d", cfg.Port)
	log.Debugf("using server logs path: [%s]", cfg.LogsPath)

	if versionInfo, err := tryGetLastCommitHash(); err != nil {
		log.Tracef("failed to get last commit hash / version info: %s", err)
	} else {
		log.Tracef("running version: %s", versionInfo)
	}

	stravaClientID := os.Getenv("FITDASH_STRAVA_CLIENT_ID")
	stravaClientSecret := os.Getenv("FITDASH_STRAVA_CLIENT_SECRET")
	if stravaClientID == "" || stravaClientSecret == "" {
		log.Errorf("strava client not set. use FITDASH_STRAVA_CLIENT_ID and FITDASH_STRAVA_CLIENT_SECRET")
	}

	tokensKey := os.Getenv("FITDASH_TOKENS_KEY")
	if tokensKey == "" {
		log.Fatalf("tokens encryption key not set. use FITDASH_TOKENS_KEY (generate one with -genkey)")
	}

	openAIKey := os.Getenv("FITDASH_OPENAI_KEY")
	if openAIKey == "" {
		log.Errorf("openai API key not set, the coach will not answer. use FITDASH_OPENAI_KEY")
	}

	redisPassword := os.Getenv("FITDASH_REDIS_PASS")
	if redisPassword == "" {
		log.Errorf("redis password not set. use FITDASH_REDIS_PASS")
	}

	otelServiceName := os.Getenv("OTEL_SERVICE_NAME")
	if otelServiceName == "" {
		log.Warnln("OTEL_SERVICE_NAME env var not set")
	}

	honeycombEnabled := os.Getenv("HONEYCOMB_ENABLED") == "true"
	if honeycombEnabled {
		if honeycombApiKey := os.Getenv("HONEYCOMB_API_KEY"); honeycombApiKey == "" {
			log.Warnln("HONEYCOMB_API_KEY env var not set")
		}
	} else {
		log.Debugln("honeycomb tracing disabled")
	}

	chOsInterrupt := make(chan os.Signal, 1)
	signal.Notify(chOsInterrupt, os.Interrupt, syscall.SIGTERM)

	ctx, cancel := context.WithCancel(context.Background())

	server, err := internal.NewServer(
		ctx,
		internal.NewServerParams{
			Config:                  cfg,
			DBPassword:              os.Getenv("FITDASH_DB_PASS"),
			RedisPassword:           redisPassword,
			StravaClientID:          stravaClientID,
			StravaClientSecret:      stravaClientSecret,
			TokensEncryptionKey:     tokensKey,
			OpenAIAPIKey:            openAIKey,
			OpenAIBaseURL:           os.Getenv("FITDASH_OPENAI_BASE_URL"),
			HoneycombTracingEnabled: honeycombEnabled,
			OtelServiceName:         otelServiceName,
		},
	)
	if err != nil {
		log.Fatalf("new server: %s", err)
	}

	server.Serve(ctx, cfg.Host, cfg.Port)

	receivedSig := <-chOsInterrupt
	log.Warnf("signal [%s] received, killing everything ...", receivedSig)
	cancel()

	server.GracefulShutdown()
}

// tryGetLastCommitHash will try to get the last commit hash
// assumes that the built main executable is in project root
func tryGetLastCommitHash() (string, error) {
	cmd := exec.Command("/usr/bin/git", "rev-parse", "HEAD")
	stdout, err := cmd.Output()
	if err != nil {
		return "", err
	}
	return pkg.BytesToString(stdout), nil
}
