package shared_queue

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/caarlos0/env/v11"
	"github.com/sglre6355/queueshare/internal/bot"
	"github.com/sglre6355/queueshare/internal/locker"
	"github.com/sglre6355/queueshare/internal/modules/shared_queue/application/usecases"
	"github.com/sglre6355/queueshare/internal/modules/shared_queue/infrastructure"
	"github.com/sglre6355/queueshare/internal/modules/shared_queue/presentation/discord"
)

const initTimeout = 10 * time.Second

func init() {
	bot.Register(&SharedQueueModule{})
}

// Compile-time interface checks.
var _ bot.ConfigurableModule = (*SharedQueueModule)(nil)

// SharedQueueModule provides the /queue command for collaborative queues.
type SharedQueueModule struct {
	config          *Config
	commandHandlers *discord.CommandHandlers

	// Opened in Init and closed in Shutdown.
	db     *sql.DB
	locker locker.Locker
}

// Name returns the module name.
func (m *SharedQueueModule) Name() string {
	return "shared_queue"
}

// Commands returns the slash commands for this module.
func (m *SharedQueueModule) Commands() []*discordgo.ApplicationCommand {
	return discord.Commands()
}

// CommandHandlers returns the command handlers for this module.
func (m *SharedQueueModule) CommandHandlers() map[string]bot.InteractionHandler {
	return map[string]bot.InteractionHandler{
		"queue": m.commandHandlers.HandleQueue,
	}
}

// EventHandlers returns the event handlers for this module.
func (m *SharedQueueModule) EventHandlers() []bot.EventHandler {
	return nil
}

// LoadConfig loads module-specific configuration from environment variables.
func (m *SharedQueueModule) LoadConfig() error {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return err
	}

	switch cfg.Store {
	case StoreSQLite, StoreMemory:
	default:
		return fmt.Errorf("unknown QUEUE_STORE %q", cfg.Store)
	}
	switch locker.Type(cfg.Locker) {
	case locker.TypeMemory, locker.TypeNoop:
	case locker.TypeRedis:
		if cfg.RedisAddress == "" {
			return errors.New("REDIS_ADDR is required when QUEUE_LOCKER is redis")
		}
	default:
		return fmt.Errorf("unknown QUEUE_LOCKER %q", cfg.Locker)
	}

	m.config = cfg
	return nil
}

// Init opens the queue store and locker and builds the command handlers.
func (m *SharedQueueModule) Init(deps bot.ModuleDependencies) error {
	if deps.Session == nil {
		return errors.New("shared_queue requires a Discord session")
	}
	if m.config == nil {
		if err := m.LoadConfig(); err != nil {
			return err
		}
	}

	parent := deps.Context
	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := context.WithTimeout(parent, initTimeout)
	defer cancel()

	var (
		repo    usecases.QueueRepository
		friends infrastructure.FriendSource
	)
	switch m.config.Store {
	case StoreSQLite:
		db, err := infrastructure.OpenSQLite(ctx, m.config.SQLitePath)
		if err != nil {
			return err
		}
		m.db = db
		repo = infrastructure.NewSQLiteRepository(db)
		friends = infrastructure.NewSQLiteFriendStore(db)
	default:
		slog.Warn("shared_queue using in-memory store, queues will not survive restarts")
		repo = infrastructure.NewMemoryRepository()
		friends = infrastructure.NewMemoryFriendStore()
	}

	lk, err := locker.New(ctx, locker.Config{
		Type: locker.Type(m.config.Locker),
		Redis: locker.RedisConfig{
			Addr:     m.config.RedisAddress,
			Password: m.config.RedisPassword,
			DB:       m.config.RedisDB,
		},
		Prefix: "queueshare",
	})
	if err != nil {
		return errors.Join(err, m.closeDB())
	}
	m.locker = lk

	queue := usecases.NewQueueService(
		repo,
		infrastructure.NewDiscordUserDirectory(deps.Session, friends),
		infrastructure.NewLockerAdapter(lk, m.config.LockTTL),
		usecases.QueueServiceOptions{
			SaveRetries:             m.config.SaveRetries,
			FriendLookupConcurrency: m.config.FriendLookupConcurrency,
		},
	)
	m.commandHandlers = discord.NewCommandHandlers(queue)

	slog.Info("shared_queue module initialized",
		"store", m.config.Store,
		"locker", m.config.Locker,
	)
	return nil
}

// Shutdown releases the locker and the database handle.
func (m *SharedQueueModule) Shutdown() error {
	var errs []error
	if m.locker != nil {
		errs = append(errs, m.locker.Close())
		m.locker = nil
	}
	errs = append(errs, m.closeDB())
	return errors.Join(errs...)
}

func (m *SharedQueueModule) closeDB() error {
	if m.db == nil {
		return nil
	}
	err := m.db.Close()
	m.db = nil
	return err
}
