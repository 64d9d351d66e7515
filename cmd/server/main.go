package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/corebank/platform/infra"
	infraeventbus "github.com/corebank/platform/infra/eventbus"
	infrarepo "github.com/corebank/platform/infra/repository"
	"github.com/corebank/platform/pkg/config"
	"github.com/corebank/platform/pkg/eventbus"
	accountsvc "github.com/corebank/platform/pkg/service/account"
	adminsvc "github.com/corebank/platform/pkg/service/admin"
	authsvc "github.com/corebank/platform/pkg/service/auth"
	ledgersvc "github.com/corebank/platform/pkg/service/ledger"
	usersvc "github.com/corebank/platform/pkg/service/user"
	"github.com/corebank/platform/webapi"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run() error {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.Load(logger)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	db, err := infra.NewDBConnection(cfg.DB, cfg.Env)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := infra.Migrate(db); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}

	var bus eventbus.EventBus
	if len(cfg.Kafka.Brokers) > 0 {
		kafkaBus := infraeventbus.NewKafka(cfg.Kafka.Brokers, cfg.Kafka.Topic, logger)
		defer kafkaBus.Close() //nolint:errcheck
		bus = kafkaBus
	} else {
		bus = infraeventbus.NewMemory(logger)
	}

	uow := infrarepo.NewUoW(db, cfg.Ledger.LockTimeout)

	app := webapi.NewApp(webapi.Services{
		Auth:    authsvc.New(uow, cfg.Jwt, logger),
		User:    usersvc.New(uow, logger),
		Account: accountsvc.New(uow, logger),
		Ledger:  ledgersvc.New(uow, bus, logger),
		Admin:   adminsvc.New(uow, logger),
	}, cfg.Jwt.Secret)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	logger.Info("starting server", "env", cfg.Env, "address", addr)
	return app.Listen(addr)
}
