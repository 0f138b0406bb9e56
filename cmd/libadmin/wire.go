//go:build wireinject
// +build wireinject

package main

import (
	"context"

	"github.com/google/wire"
	"go.uber.org/zap"

	"github.com/xiebiao/libadmin/internal/application/auth"
	"github.com/xiebiao/libadmin/internal/domain/session"
	"github.com/xiebiao/libadmin/internal/infrastructure/apiclient"
	"github.com/xiebiao/libadmin/internal/infrastructure/config"
	"github.com/xiebiao/libadmin/internal/infrastructure/persistence/redis"
	"github.com/xiebiao/libadmin/internal/interface/http/handler"
	"github.com/xiebiao/libadmin/internal/interface/http/router"
)

var infrastructureSet = wire.NewSet(
	provideRedis,
	provideSessionStore,
	wire.Bind(new(session.Store), new(*redis.SessionStore)),
	provideAPIClient,
	wire.Bind(new(session.Gateway), new(*apiclient.Client)),
	provideAuditor,
)

var applicationSet = wire.NewSet(
	provideAuthOptions,
	auth.NewLoginUseCase,
	auth.NewRegisterUseCase,
	auth.NewLogoutUseCase,
	auth.NewResolveUseCase,
	provideWorkspaces,
)

var interfaceSet = wire.NewSet(
	provideSessionMiddleware,
	handler.NewAuthHandler,
	handler.NewScreenHandler,
	handler.NewBookHandler,
	handler.NewAuthorHandler,
	handler.NewCategoryHandler,
	handler.NewMemberHandler,
	handler.NewLoanHandler,
	handler.NewBookCategoryHandler,
	handler.NewLookupHandler,
	wire.Struct(new(router.Handlers), "*"),
	router.New,
	provideServer,
)

// InitializeApp wires the console. The cleanup closes Redis and the audit
// publisher.
func InitializeApp(ctx context.Context, cfg *config.Config, log *zap.Logger) (*App, func(), error) {
	wire.Build(
		infrastructureSet,
		applicationSet,
		interfaceSet,
		wire.Struct(new(App), "*"),
	)
	return nil, nil, nil
}
