package internal

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/go-redis/redis/v8"
	"github.com/go-redis/redis_rate/v9"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gorilla/mux/otelmux"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/oauth2"

	"github.com/2beens/whoopgrid/internal/auth"
	"github.com/2beens/whoopgrid/internal/config"
	"github.com/2beens/whoopgrid/internal/daily"
	"github.com/2beens/whoopgrid/internal/heatmap"
	"github.com/2beens/whoopgrid/internal/middleware"
	"github.com/2beens/whoopgrid/internal/misc"
	"github.com/2beens/whoopgrid/internal/mockdata"
	"github.com/2beens/whoopgrid/internal/telemetry/metrics"
	"github.com/2beens/whoopgrid/internal/telemetry/tracing"
	"github.com/2beens/whoopgrid/internal/whoop"
)

type Server struct {
	httpServer        *http.Server
	metricsHttpServer *http.Server
	versionInfo       string

	config       *config.Config
	redisClient  *redis.Client
	rateLimiter  middleware.RequestRateLimiter
	tracedClient *http.Client

	whoopClient   *whoop.Client
	dailyService  *daily.Service
	mockGenerator *mockdata.Generator
	oauthConfig   *oauth2.Config
	stateService  *auth.Service

	// metrics
	metricsManager *metrics.Manager
	promRegistry   *prometheus.Registry
	otelShutdown   func()
}

type NewServerParams struct {
	Config      *config.Config
	Secrets     *config.Secrets
	VersionInfo string
	MockSeed    int64
}

func NewServer(
	ctx context.Context,
	params NewServerParams,
) (*Server, error) {
	cfg := params.Config
	secrets := params.Secrets
	if secrets == nil {
		secrets = &config.Secrets{}
	}

	promRegistry := metrics.SetupPrometheus()
	metricsManager := metrics.NewManager("whoopgrid", "main", promRegistry)
	metricsManager.GaugeLifeSignal.Set(0)

	rdb := redis.NewClient(&redis.Options{
		Addr:     net.JoinHostPort(cfg.RedisHost, cfg.RedisPort),
		Password: secrets.RedisPassword,
		DB:       0, // use default DB
	})

	rdbStatus := rdb.Ping(ctx)
	if err := rdbStatus.Err(); err != nil {
		log.Errorf("--> failed to ping redis: %s", err)
	} else {
		log.Debugf("redis ping: %s", rdbStatus.Val())
	}

	// use honeycomb distro to setup OpenTelemetry SDK
	otelShutdown, err := tracing.HoneycombSetup(secrets.HoneycombEnabled, "whoopgrid-service", rdb)
	if err != nil {
		return nil, err
	}

	tracedHttpClient := &http.Client{
		Transport: otelhttp.NewTransport(http.DefaultTransport),
		Timeout:   30 * time.Second,
	}

	whoopClient := whoop.NewClient(whoop.NewClientParams{
		ApiURL:         cfg.WhoopApiURL,
		HttpClient:     tracedHttpClient,
		PageLimit:      cfg.WhoopPageLimit,
		MaxPages:       cfg.WhoopMaxPages,
		MetricsManager: metricsManager,
	})

	s := &Server{
		config:       cfg,
		versionInfo:  params.VersionInfo,
		redisClient:  rdb,
		rateLimiter:  redis_rate.NewLimiter(rdb),
		tracedClient: tracedHttpClient,

		whoopClient:   whoopClient,
		dailyService:  daily.NewService(whoopClient, cfg.WhoopPageLimit, metricsManager),
		mockGenerator: mockdata.NewGenerator(params.MockSeed),
		oauthConfig: auth.NewOAuthConfig(auth.OAuthParams{
			ClientID:     secrets.WhoopClientID,
			ClientSecret: secrets.WhoopClientSecret,
			RedirectURI:  secrets.WhoopRedirectURI,
			AuthURL:      cfg.WhoopAuthURL,
			TokenURL:     cfg.WhoopTokenURL,
		}),
		stateService: auth.NewStateService(auth.DefaultStateTTL, rdb),

		// telemetry
		metricsManager: metricsManager,
		promRegistry:   promRegistry,
		otelShutdown:   otelShutdown,
	}

	return s, nil
}

func (s *Server) routerSetup() *mux.Router {
	r := mux.NewRouter()
	r.Use(otelmux.Middleware("whoopgrid-router"))

	misc.NewHandler(s.versionInfo).SetupRoutes(r)

	authRouter := r.PathPrefix("/auth/whoop").Subrouter()
	auth.NewHandler(
		s.oauthConfig,
		s.stateService,
		s.tracedClient,
		s.config.SecureCookies,
	).SetupRoutes(authRouter)

	whoopRouter := r.PathPrefix("/whoop").Subrouter()
	whoop.NewHandler(s.whoopClient).SetupRoutes(whoopRouter)

	daily.NewHandler(
		s.dailyService,
		s.config.DefaultRangeDays,
		s.config.MaxRangeDays,
	).SetupRoutes(
		whoopRouter,
		middleware.RateLimit(s.rateLimiter, "daily-metrics", s.config.MetricsRatePerMin, s.metricsManager),
	)

	heatmap.NewHandler(heatmap.NewHandlerParams{
		Provider:     s.dailyService,
		MockSource:   s.mockGenerator.Series,
		DefaultDays:  s.config.DefaultRangeDays,
		MaxDays:      s.config.MaxRangeDays,
		MockFallback: s.config.MockFallback,
	}).SetupRoutes(
		whoopRouter,
		middleware.RateLimit(s.rateLimiter, "heatmap", s.config.MetricsRatePerMin, s.metricsManager),
	)

	mockdata.NewHandler(
		s.mockGenerator,
		s.config.DefaultRangeDays,
		s.config.MaxRangeDays,
	).SetupRoutes(whoopRouter)

	// all the rest - unhandled paths
	r.HandleFunc("/{unknown}", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}).Methods("GET", "POST", "PUT", "OPTIONS").Name("unknown")

	authMiddleware := middleware.NewAuthMiddlewareHandler()

	r.Use(middleware.PanicRecovery(s.metricsManager))
	r.Use(middleware.LogRequest())
	r.Use(middleware.RequestMetrics(s.metricsManager))
	r.Use(middleware.Cors(s.config.AllowedOrigins))
	r.Use(authMiddleware.AuthCheck())
	r.Use(middleware.DrainAndCloseRequest())

	return r
}

func (s *Server) Serve(host string, port int) {
	router := s.routerSetup()

	ipAndPort := net.JoinHostPort(host, strconv.Itoa(port))
	s.httpServer = &http.Server{
		Handler:      router,
		Addr:         ipAndPort,
		WriteTimeout: time.Minute,
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

	s.metricsManager.GaugeLifeSignal.Set(1)
}

func (s *Server) GracefulShutdown() {
	log.Debug("graceful shutdown initiated ...")

	s.metricsManager.GaugeLifeSignal.Set(0)

	s.otelShutdown()
	log.Trace("otel shut down ...")

	if s.redisClient != nil {
		if err := s.redisClient.Close(); err != nil {
			log.Errorf("failed to close redis client conn: %s", err)
		}
	}

	if ok := sentry.Flush(5 * time.Second); ok {
		log.Debugf("sentry flush ok: %t", ok)
	}

	maxWaitDuration := time.Second * 15
	ctx, timeoutCancel := context.WithTimeout(context.Background(), maxWaitDuration)
	defer timeoutCancel()

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
}
