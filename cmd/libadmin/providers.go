package main

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/xiebiao/libadmin/internal/application/audit"
	"github.com/xiebiao/libadmin/internal/application/auth"
	"github.com/xiebiao/libadmin/internal/application/listview"
	"github.com/xiebiao/libadmin/internal/application/workspace"
	"github.com/xiebiao/libadmin/internal/infrastructure/apiclient"
	"github.com/xiebiao/libadmin/internal/infrastructure/config"
	"github.com/xiebiao/libadmin/internal/infrastructure/persistence/redis"
	"github.com/xiebiao/libadmin/internal/interface/http/middleware"
	"github.com/xiebiao/libadmin/pkg/circuitbreaker"
	"github.com/xiebiao/libadmin/pkg/mq"
)

// App is what serve runs.
type App struct {
	Config *config.Config
	Server *http.Server
	Spaces *workspace.Manager
}

func provideRedis(ctx context.Context, cfg *config.Config) (*goredis.Client, func(), error) {
	client, err := redis.NewClient(ctx, cfg.Redis)
	if err != nil {
		return nil, nil, err
	}
	return client, func() { _ = client.Close() }, nil
}

func provideSessionStore(client *goredis.Client, cfg *config.Config) *redis.SessionStore {
	return redis.NewSessionStore(client, cfg.Session.KeyPrefix)
}

func provideAPIClient(cfg *config.Config, log *zap.Logger) (*apiclient.Client, error) {
	breaker := apiclient.NewBreaker("library-api", circuitbreaker.Config{
		MaxRequests: cfg.Breaker.MaxRequests,
		Interval:    cfg.Breaker.Interval,
		Timeout:     cfg.Breaker.Timeout,
		ReadyToTrip: circuitbreaker.ConsecutiveFailures(cfg.Breaker.Failures),
	})
	return apiclient.New(apiclient.Config{
		BaseURL:            cfg.API.BaseURL,
		Timeout:            cfg.API.Timeout,
		RateLimit:          cfg.API.RateLimit,
		Burst:              cfg.API.Burst,
		Retries:            cfg.API.Retries,
		RetryBackoff:       cfg.API.RetryBackoff,
		InsecureSkipVerify: cfg.API.InsecureSkipVerify,
	}, apiclient.WithBreaker(breaker), apiclient.WithLogger(log))
}

func provideAuthOptions(cfg *config.Config) auth.Options {
	return auth.Options{MaxTTL: cfg.Session.TTL}
}

// provideAuditor publishes mutations to RabbitMQ when auditing is on.
func provideAuditor(cfg *config.Config, log *zap.Logger) (listview.Auditor, func(), error) {
	if !cfg.Audit.Enabled {
		return audit.NewRecorder(nil, log), func() {}, nil
	}
	pub, err := mq.NewPublisher(cfg.Audit.URL, cfg.Audit.Exchange, "libadmin", log)
	if err != nil {
		return nil, nil, err
	}
	return audit.NewRecorder(pub, log), func() { _ = pub.Close() }, nil
}

func provideWorkspaces(
	cfg *config.Config,
	client *apiclient.Client,
	auditor listview.Auditor,
	resolve *auth.ResolveUseCase,
	log *zap.Logger,
) *workspace.Manager {
	bind := func(token string) workspace.API { return client.WithToken(token) }
	return workspace.NewManager(bind, workspace.Config{
		Debounce:        cfg.ListView.Debounce,
		FetchTimeout:    cfg.ListView.FetchTimeout,
		IdleTimeout:     cfg.Session.IdleTimeout,
		CleanupInterval: cfg.Session.CleanupInterval,
	}, auditor, resolve.Expire, log)
}

func provideSessionMiddleware(cfg *config.Config, resolve *auth.ResolveUseCase, spaces *workspace.Manager) *middleware.SessionMiddleware {
	return middleware.NewSessionMiddleware(resolve, spaces, middleware.CookieConfig{
		Name:      cfg.Server.CookieName,
		Secure:    cfg.Server.CookieSecure,
		LoginPath: cfg.Server.LoginPath,
	})
}

func provideServer(cfg *config.Config, engine *gin.Engine) *http.Server {
	return &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           engine,
		ReadTimeout:       cfg.Server.ReadTimeout,
		ReadHeaderTimeout: cfg.Server.ReadTimeout,
		// zero by default: event streams stay open
		WriteTimeout: cfg.Server.WriteTimeout,
	}
}
