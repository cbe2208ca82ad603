package internal

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/IBM/pgxpoolprometheus"
	"github.com/getsentry/sentry-go"
	"github.com/go-redis/redis/v8"
	"github.com/go-redis/redis_rate/v9"
	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gorilla/mux/otelmux"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/2beens/fitdash/internal/activities"
	"github.com/2beens/fitdash/internal/auth"
	"github.com/2beens/fitdash/internal/coach"
	"github.com/2beens/fitdash/internal/config"
	"github.com/2beens/fitdash/internal/db"
	"github.com/2beens/fitdash/internal/middleware"
	"github.com/2beens/fitdash/internal/secrets"
	"github.com/2beens/fitdash/internal/strava"
	"github.com/2beens/fitdash/internal/telemetry/metrics"
	"github.com/2beens/fitdash/internal/telemetry/tracing"
	"github.com/2beens/fitdash/internal/tokens"
	"github.com/2beens/fitdash/internal/users"
	"github.com/2beens/fitdash/internal/web"
)

const (
	sessionsCleanupInterval = 8 * time.Hour
	// forms only, a chat question is the largest thing we accept
	maxRequestBodyBytes = 64 << 10
)

type Server struct {
	httpServer        *http.Server
	metricsHttpServer *http.Server

	config      *config.Config
	dbPool      *pgxpool.Pool
	redisClient *redis.Client

	authService   *auth.Service
	loginChecker  *auth.LoginChecker
	usersService  *users.Service
	stravaClient  *strava.Client
	oauthStates   *strava.StateStore
	tokenStore    *tokens.Store
	activities    *activities.Repo
	statsCache    *activities.StatsCache
	analyzer      *activities.Analyzer
	ingestor      *activities.Ingestor
	coachEngine   *coach.Engine
	conversations *coach.ConversationStore

	// metrics
	metricsManager *metrics.Manager
	promRegistry   *prometheus.Registry
	otelShutdown   func()
}

type NewServerParams struct {
	Config             *config.Config
	DBPassword         string
	RedisPassword      string
	StravaClientID     string
	StravaClientSecret string
	// base64 encoded 32 byte key the provider tokens are encrypted with
	TokensEncryptionKey string
	OpenAIAPIKey        string
	// empty means the public OpenAI API
	OpenAIBaseURL           string
	HoneycombTracingEnabled bool
	OtelServiceName         string
}

func NewServer(
	ctx context.Context,
	params NewServerParams,
) (*Server, error) {
	cfg := params.Config

	tokensCipher, err := secrets.NewCipherFromBase64(params.TokensEncryptionKey)
	if err != nil {
		return nil, fmt.Errorf("tokens cipher: %w", err)
	}

	dbPool, err := db.NewDBPool(ctx, db.NewDBPoolParams{
		DBHost:         cfg.PostgresHost,
		DBPort:         cfg.PostgresPort,
		DBName:         cfg.PostgresDBName,
		DBUser:         cfg.PostgresUser,
		DBPassword:     params.DBPassword,
		TracingEnabled: params.HoneycombTracingEnabled,
	})
	if err != nil {
		return nil, fmt.Errorf("new db pool: %w", err)
	}

	if err := dbPool.Ping(ctx); err != nil {
		log.Warnf("failed to ping db: %s", err)
	}

	if err := db.ApplyMigrations(ctx, dbPool); err != nil {
		dbPool.Close()
		return nil, fmt.Errorf("apply migrations: %w", err)
	}

	pgxpoolCollector := pgxpoolprometheus.NewCollector(
		dbPool,
		map[string]string{"db_name": cfg.PostgresDBName},
	)
	promRegistry := metrics.SetupPrometheus(pgxpoolCollector)
	metricsManager := metrics.NewManager("fitdash", "main", promRegistry)
	metricsManager.GaugeLifeSignal.Set(0)

	rdb := redis.NewClient(&redis.Options{
		Addr:     net.JoinHostPort(cfg.RedisHost, cfg.RedisPort),
		Password: params.RedisPassword,
		DB:       0, // use default DB
	})

	rdbStatus := rdb.Ping(ctx)
	if err := rdbStatus.Err(); err != nil {
		log.Errorf("--> failed to ping redis: %s", err)
	} else {
		log.Debugf("redis ping: %s", rdbStatus.Val())
	}

	serviceName := params.OtelServiceName
	if serviceName == "" {
		serviceName = "fitdash"
	}
	otelShutdown, err := tracing.HoneycombSetup(params.HoneycombTracingEnabled, serviceName, rdb)
	if err != nil {
		closeStores(dbPool, rdb)
		return nil, fmt.Errorf("tracing setup: %w", err)
	}

	tracedHttpClient := &http.Client{
		Transport: otelhttp.NewTransport(http.DefaultTransport),
	}

	stravaClient := strava.NewClient(strava.ClientParams{
		BaseURL:        cfg.StravaBaseURL,
		ClientID:       params.StravaClientID,
		ClientSecret:   params.StravaClientSecret,
		RedirectURL:    cfg.StravaRedirectURL,
		Scopes:         cfg.StravaScopes,
		HTTPClient:     tracedHttpClient,
		RequestTimeout: cfg.IngestRequestTimeout,
	})

	usersRepo := users.NewRepo(dbPool)
	tokenStore := tokens.NewStore(usersRepo, stravaClient, tokensCipher, metricsManager)

	activitiesRepo := activities.NewRepo(dbPool)
	statsCache := activities.NewStatsCache(cfg.StatsCacheSizeMB, cfg.StatsCacheTTL)

	s := &Server{
		config:      cfg,
		dbPool:      dbPool,
		redisClient: rdb,

		authService:  auth.NewAuthService(cfg.SessionTTL, rdb),
		loginChecker: auth.NewLoginChecker(cfg.SessionTTL, rdb),
		usersService: users.NewService(usersRepo, metricsManager),
		stravaClient: stravaClient,
		oauthStates:  strava.NewStateStore(rdb, strava.DefaultStateTTL),
		tokenStore:   tokenStore,
		activities:   activitiesRepo,
		statsCache:   statsCache,
		analyzer:     activities.NewAnalyzer(activitiesRepo, statsCache),
		ingestor: activities.NewIngestor(activities.IngestorParams{
			Source:         stravaClient,
			Credentials:    tokenStore,
			Repo:           activitiesRepo,
			Cache:          statsCache,
			MetricsManager: metricsManager,
			MaxPages:       cfg.IngestMaxPages,
			PageSize:       cfg.IngestPageSize,
			PageRate:       float64(cfg.IngestRequestsPerMinute) / 60,
		}),
		coachEngine: coach.NewEngine(
			coach.NewOpenAICompleter(coach.OpenAIParams{
				APIKey:      params.OpenAIAPIKey,
				BaseURL:     params.OpenAIBaseURL,
				Model:       cfg.OpenAIModel,
				Temperature: cfg.ChatTemperature,
				MaxTokens:   cfg.ChatMaxOutputTokens,
				HTTPClient:  tracedHttpClient,
			}),
			metricsManager,
		),
		conversations: coach.NewConversationStore(rdb, cfg.SessionTTL),

		// telemetry
		metricsManager: metricsManager,
		promRegistry:   promRegistry,
		otelShutdown:   otelShutdown,
	}

	return s, nil
}

func (s *Server) routerSetup() *mux.Router {
	r := mux.NewRouter()
	r.Use(otelmux.Middleware("main-router"))

	web.SetupStaticRoutes(r)

	reqRateLimiter := redis_rate.NewLimiter(s.redisClient)
	secureCookies := middleware.IsSecureBaseURL(s.config.BaseURL)

	authHandler := web.NewAuthHandler(
		s.usersService,
		s.authService,
		s.conversations,
		s.config.SessionTTL,
		secureCookies,
	)
	authHandler.SetupRoutes(r, reqRateLimiter, s.metricsManager, s.config.LoginRateLimitAllowedPerMin)

	stravaHandler := web.NewStravaHandler(
		s.stravaClient,
		s.oauthStates,
		s.tokenStore,
		s.activities,
		s.statsCache,
	)
	stravaHandler.SetupRoutes(r)

	dashboardHandler := web.NewDashboardHandler(s.activities, s.ingestor, s.tokenStore)
	dashboardHandler.SetupRoutes(r)

	statsHandler := web.NewStatsHandler(s.analyzer, s.activities)
	statsHandler.SetupRoutes(r)

	chatHandler := web.NewChatHandler(s.conversations, s.coachEngine, s.activities)
	chatHandler.SetupRoutes(r)

	// all the rest - unhandled paths
	r.HandleFunc("/{unknown}", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}).Methods("GET", "POST").Name("unknown")

	sessionMiddleware := middleware.NewSessionMiddlewareHandler(s.loginChecker)

	r.Use(middleware.PanicRecovery(s.metricsManager))
	r.Use(middleware.LogRequest())
	r.Use(middleware.RequestMetrics(s.metricsManager))
	r.Use(middleware.NoCache())
	r.Use(middleware.DrainAndCloseRequest(maxRequestBodyBytes))
	r.Use(sessionMiddleware.SessionAuth())
	r.Use(middleware.CSRF(s.config.BaseURL))

	return r
}

func (s *Server) Serve(ctx context.Context, host string, port int) {
	router := s.routerSetup()

	ipAndPort := net.JoinHostPort(host, strconv.Itoa(port))
	s.httpServer = &http.Server{
		Handler: router,
		Addr:    ipAndPort,
		// ingestion of a long history runs within a single request
		WriteTimeout: 5 * time.Minute,
		ReadTimeout:  time.Minute,
	}

	metricsRouter := mux.NewRouter()
	metricsRouter.Handle("/metrics", promhttp.InstrumentMetricHandler(
		s.promRegistry,
		promhttp.HandlerFor(s.promRegistry, promhttp.HandlerOpts{}),
	))
	metricsAddr := net.JoinHostPort(s.config.PrometheusMetricsHost, s.config.PrometheusMetricsPort)
	s.metricsHttpServer = &http.Server{
		Addr:    metricsAddr,
		Handler: metricsRouter,
	}

	go func() {
		log.Infof(" > server listening on: [%s]", ipAndPort)
		err := s.httpServer.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("main service, listen and serve: %s", err)
		}
	}()

	go func() {
		log.Debugf(" > metrics listening on: [%s]", metricsAddr)
		err := s.metricsHttpServer.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("metrics service, listen and serve: %s", err)
		}
	}()

	go s.authService.RunCleaner(ctx, sessionsCleanupInterval)

	s.metricsManager.GaugeLifeSignal.Set(1)
}

func (s *Server) GracefulShutdown() {
	log.Debug("graceful shutdown initiated ...")

	s.metricsManager.GaugeLifeSignal.Set(0)

	maxWaitDuration := time.Second * 15
	ctx, timeoutCancel := context.WithTimeout(context.Background(), maxWaitDuration)
	defer timeoutCancel()

	// stop taking requests before the stores they use go away
	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(ctx); err != nil {
			log.Error(" >>> failed to gracefully shutdown http server")
		}
		log.Warnln("server shut down")
	}

	if s.metricsHttpServer != nil {
		if err := s.metricsHttpServer.Shutdown(ctx); err != nil {
			log.Error(" >>> failed to gracefully shutdown metrics http server")
		}
		log.Warnln("metrics server shut down")
	}

	s.otelShutdown()
	log.Trace("otel shut down ...")

	if s.redisClient != nil {
		if err := s.redisClient.Close(); err != nil {
			log.Errorf("failed to close redis client conn: %s", err)
		}
	}

	if s.dbPool != nil {
		log.Debugln("closing db pool ...")
		s.dbPool.Close() // blocking operation
		log.Debugln("db pool closed")
	}

	if ok := sentry.Flush(5 * time.Second); ok {
		log.Debugf("sentry flush ok: %t", ok)
	}
}

type poolCloser interface {
	Close()
}

type redisCloser interface {
	Close() error
}

// closeStores releases the stores opened by NewServer when a later setup step fails.
func closeStores(pool poolCloser, rdb redisCloser) {
	if err := rdb.Close(); err != nil {
		log.Errorf("failed to close redis client conn: %s", err)
	}
	pool.Close()
}
