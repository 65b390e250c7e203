// Package injector is the provider graph for cmd/warehouse.
package injector

import (
	"path/filepath"

	"github.com/google/wire"

	"github.com/zeusync/warehouse/internal/config"
	"github.com/zeusync/warehouse/internal/core/events/bus"
	"github.com/zeusync/warehouse/internal/core/observability/log"
	"github.com/zeusync/warehouse/internal/economy"
	"github.com/zeusync/warehouse/internal/server"
	"github.com/zeusync/warehouse/internal/session"
)

// ConfigPath points at a YAML or JSON document. Empty means config.Default.
type ConfigPath string

type App struct {
	Config  *config.Config
	Logger  *log.Logger
	Session *session.Session
	Server  *server.Server
}

var ProviderSet = wire.NewSet(
	ProvideConfig,
	ProvideLogger,
	wire.Bind(new(log.Log), new(*log.Logger)),
	bus.New,
	ProvideStore,
	ProvideJournal,
	ProvideEconomy,
	session.New,
	ProvideServer,
	wire.Struct(new(App), "*"),
)

func ProvideConfig(path ConfigPath) (*config.Config, error) {
	if path == "" {
		return config.Default(), nil
	}
	return config.Load(string(path))
}

func ProvideLogger(cfg *config.Config) *log.Logger {
	return log.New(log.ParseLevel(cfg.Server.LogLevel))
}

// ProvideStore opens the sqlite ledger when a path is configured.
func ProvideStore(cfg *config.Config) (economy.Store, error) {
	if cfg.Persistence.SQLitePath == "" {
		return economy.NewMemoryStore(), nil
	}
	return economy.OpenSQLite(cfg.Persistence.SQLitePath)
}

func ProvideJournal(cfg *config.Config) economy.Journal {
	if cfg.Persistence.JournalDir == "" {
		return economy.NopJournal
	}
	return economy.NewZstdJournal(filepath.Clean(cfg.Persistence.JournalDir), "scores")
}

func ProvideEconomy(store economy.Store, journal economy.Journal, events bus.EventBus, logger log.Log) (*economy.Service, error) {
	svc := economy.NewService(store, journal, events, logger)
	if err := svc.Listen(); err != nil {
		return nil, err
	}
	return svc, nil
}

func ProvideServer(cfg *config.Config, sess *session.Session, events bus.EventBus, logger log.Log) (*server.Server, error) {
	return server.NewServer(server.ConfigFrom(cfg.Server), sess, sess, events, logger)
}
