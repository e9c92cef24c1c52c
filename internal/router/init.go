package router

import (
	app "github.com/eduforge/platform/internal/application"
	"github.com/eduforge/platform/internal/container"
	repo "github.com/eduforge/platform/internal/domain/repository"
	"github.com/eduforge/platform/internal/infrastructure/google"
	"github.com/eduforge/platform/internal/infrastructure/notification"
	pginfra "github.com/eduforge/platform/internal/infrastructure/postgres"
	handlers "github.com/eduforge/platform/internal/interface/http"
	"github.com/eduforge/platform/internal/router/modules"
)

type AccountModuleDeps struct {
	Repo    repo.AccountRepository
	Service *app.Service

	Auth      *handlers.AuthHandler
	Federated *handlers.FederatedHandler
	Account   *handlers.AccountHandler
	Admin     *handlers.AdminHandler
}

func buildAccountDeps() AccountModuleDeps {
	cfg := container.GetConfig()
	logger := container.GetLogger()

	accounts := pginfra.NewAccountRepository(container.GetPGPool())
	notifier := notification.NewGateway(container.GetRabbitPub(), logger, cfg)
	provider := google.NewProvider(cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.GoogleRedirectURL)

	service := app.NewService(
		accounts,
		container.GetJWT(),
		app.NewAdminPolicy(cfg.AdminEmail),
		notifier,
		provider,
		container.GetRedis(),
		logger,
		container.GetES(),
		cfg.ESAccountsIndex,
		container.GetGCS(),
		cfg.GCSBucket,
		cfg.PasswordTTL,
		cfg.FederatedTTL,
	)

	return AccountModuleDeps{
		Repo:      accounts,
		Service:   service,
		Auth:      handlers.NewAuthHandler(service, logger, cfg.CookieDomain, cfg.CookieSecure),
		Federated: handlers.NewFederatedHandler(service, logger, cfg),
		Account:   handlers.NewAccountHandler(service, logger),
		Admin:     handlers.NewAdminHandler(service, logger),
	}
}

// InitModules builds the dependency graph from the container singletons and
// registers every feature module with the router registry.
func InitModules(r *Registry) {
	deps := buildAccountDeps()
	jwt := container.GetJWT()
	rdb := container.GetRedis()

	r.Add(modules.NewAuthModule(deps.Auth))
	r.Add(modules.NewFederatedModule(deps.Federated))
	r.Add(modules.NewAccountModule(deps.Account, deps.Auth, jwt, rdb))
	r.Add(modules.NewAdminModule(deps.Admin, jwt, rdb))

	if container.GetConfig().DebugMetricsEnabled {
		r.Add(modules.NewDebugModule())
	}
}
