package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/extra/redisotel/v9"
	redis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/noah-isme/razorpay-checkout/internal/app"
	"github.com/noah-isme/razorpay-checkout/internal/common"
	"github.com/noah-isme/razorpay-checkout/internal/config"
	"github.com/noah-isme/razorpay-checkout/internal/health"
	"github.com/noah-isme/razorpay-checkout/internal/obs"
	"github.com/noah-isme/razorpay-checkout/internal/pages"
	"github.com/noah-isme/razorpay-checkout/internal/payment"
	"github.com/noah-isme/razorpay-checkout/internal/ratelimit"
	"github.com/noah-isme/razorpay-checkout/internal/resilience"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		bootstrap := obs.NewLogger("json", "info")
		bootstrap.Fatal().Err(err).Msg("load config")
	}
	logger := obs.NewLogger(cfg.LogFormat, cfg.LogLevel).With().Str("env", cfg.AppEnv).Logger()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	obs.MustRegisterDomainMetrics(cfg.MetricsNamespace, nil)
	resilience.MustRegisterMetrics(cfg.MetricsNamespace, nil)

	tracingEnabled := cfg.TracingEnabled
	if tracingEnabled {
		shutdown, err := obs.InitTracer(ctx, obs.TracingConfig{
			ServiceName:    cfg.ServiceName,
			ServiceVersion: cfg.ServiceVersion,
			Environment:    cfg.AppEnv,
			GatewayClient:  cfg.RazorpayClient,
			Exporter:       cfg.TracingExporter,
			Endpoint:       cfg.OTLPEndpoint,
			SamplingRatio:  cfg.TracingSamplingRatio,
		})
		if err != nil {
			logger.Error().Err(err).Msg("initialise tracing")
			tracingEnabled = false
		} else {
			defer func() {
				if err := shutdown(context.Background()); err != nil {
					logger.Error().Err(err).Msg("shutdown tracer")
				}
			}()
		}
	}

	proxies, err := common.ParseTrustedProxies(cfg.TrustedProxies)
	if err != nil {
		logger.Fatal().Err(err).Msg("parse trusted proxies")
	}

	redisClient := connectRedis(ctx, cfg, logger)
	if redisClient != nil {
		defer func() {
			if err := redisClient.Close(); err != nil {
				logger.Error().Err(err).Msg("close redis")
			}
		}()
	}

	breakerLogger := logger.With().Str("component", "breaker").Logger()
	breaker := resilience.NewBreaker(resilience.BreakerConfig{
		Target:       "razorpay",
		MinRequests:  cfg.BreakerMinRequests,
		FailureRatio: cfg.BreakerFailureRatio,
		OpenFor:      cfg.BreakerOpenFor,
		Healthy:      payment.GatewayAnswered,
		Logger:       &breakerLogger,
	})
	gateway := newGateway(cfg, breaker)

	svc, err := payment.NewService(payment.Config{
		Gateway:    gateway,
		ClientName: cfg.RazorpayClient,
		KeyID:      cfg.RazorpayKeyID,
		KeySecret:  cfg.RazorpayKeySecret,
		Timeout:    cfg.RazorpayTimeout,
		Logger:     logger.With().Str("component", "payment").Logger(),
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("initialise payment service")
	}
	pageSet, err := pages.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("load pages")
	}

	deps := app.Dependencies{
		Logger:   logger,
		Payments: payment.NewHandler(svc, pageSet),
		Pages:    pageSet,
		Health: health.Handler{
			Checker:      app.Readiness{Breaker: breaker, Redis: cmdable(redisClient)},
			RedisTimeout: cfg.HealthRedisTimeout,
		},
		IdempotencyTTL:     cfg.IdempotencyTTL,
		Limiter:            ratelimit.NewMemory(),
		RateLimitWindow:    cfg.RateLimitWindow,
		RateLimitMax:       cfg.RateLimitMax,
		TrustedProxies:     proxies,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		BodyLimitBytes:     cfg.BodyLimitBytes,
		SecurityHeaders:    cfg.SecurityHeadersEnabled,
		HSTS:               cfg.HSTSEnabled,
		Tracing:            tracingEnabled,
		Pprof: app.PprofConfig{
			Enabled: cfg.PprofEnabled,
			User:    cfg.PprofUser,
			Pass:    cfg.PprofPass,
		},
	}
	if redisClient != nil {
		deps.Redis = redisClient
		deps.Limiter = ratelimit.RedisWindow{Client: redisClient, Prefix: "ratelimit:"}
	}
	if cfg.MetricsEnabled {
		buckets := obs.ParseBucketsCSV(cfg.MetricsBucketsMS)
		deps.Metrics = obs.NewHTTPMetrics(cfg.MetricsNamespace, buckets, nil)
		deps.MetricsHandler = promhttp.Handler()
	}
	if cfg.PprofEnabled && cfg.PprofUser == "" {
		logger.Warn().Msg("pprof enabled without basic auth credentials; not mounted")
	}

	srv := &http.Server{
		Addr:              cfg.HTTPAddr(),
		Handler:           app.NewRouter(deps),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info().
			Str("addr", srv.Addr).
			Str("gateway_client", cfg.RazorpayClient).
			Bool("redis", redisClient != nil).
			Int("trusted_proxies", len(proxies)).
			Msg("server starting")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("server exited unexpectedly")
		}
	case <-ctx.Done():
		health.SetReady(false)
		logger.Info().Msg("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("graceful shutdown")
		}
	}
}

func newGateway(cfg *config.Config, breaker *resilience.Breaker) payment.OrderCreator {
	if cfg.RazorpayClient == config.ClientSDK {
		return payment.Guarded{
			Next:    payment.NewRazorpaySDK(cfg.RazorpayKeyID, cfg.RazorpayKeySecret),
			Breaker: breaker,
		}
	}
	return payment.RazorpayHTTP{
		BaseURL:   cfg.RazorpayBaseURL,
		KeyID:     cfg.RazorpayKeyID,
		KeySecret: cfg.RazorpayKeySecret,
		Client: resilience.HTTPClient{
			Client:      obs.NewHTTPClient(cfg.RazorpayTimeout),
			Breaker:     breaker,
			MaxAttempts: 1,
			Timeout:     cfg.RazorpayTimeout,
		},
	}
}

// connectRedis returns nil when Redis is not configured. An unreachable Redis
// is logged and left to the readiness probe.
func connectRedis(ctx context.Context, cfg *config.Config, logger zerolog.Logger) *redis.Client {
	if cfg.RedisURL == "" {
		return nil
	}
	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("parse redis url")
	}
	client := redis.NewClient(opts)
	if err := redisotel.InstrumentTracing(client); err != nil {
		logger.Error().Err(err).Msg("instrument redis tracing")
	}
	if cfg.MetricsEnabled {
		if err := redisotel.InstrumentMetrics(client); err != nil {
			logger.Error().Err(err).Msg("instrument redis metrics")
		}
	}
	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		logger.Warn().Err(err).Msg("redis unreachable at startup")
	}
	return client
}

// cmdable avoids storing a typed nil client in an interface.
func cmdable(c *redis.Client) redis.Cmdable {
	if c == nil {
		return nil
	}
	return c
}
