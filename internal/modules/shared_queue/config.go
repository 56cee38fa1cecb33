package shared_queue

import "time"

// Store backends.
const (
	StoreSQLite = "sqlite"
	StoreMemory = "memory"
)

// Config holds the shared queue module configuration.
type Config struct {
	Store      string `env:"QUEUE_STORE"       envDefault:"sqlite"`
	SQLitePath string `env:"QUEUE_SQLITE_PATH" envDefault:"queueshare.db"`

	// Locker is one of memory, redis or noop.
	Locker        string        `env:"QUEUE_LOCKER"   envDefault:"memory"`
	RedisAddress  string        `env:"REDIS_ADDR"`
	RedisPassword string        `env:"REDIS_PASSWORD"`
	RedisDB       int           `env:"REDIS_DB"       envDefault:"0"`
	LockTTL       time.Duration `env:"QUEUE_LOCK_TTL" envDefault:"10s"`

	SaveRetries             int `env:"QUEUE_SAVE_RETRIES"              envDefault:"3"`
	FriendLookupConcurrency int `env:"QUEUE_FRIEND_LOOKUP_CONCURRENCY" envDefault:"8"`
}
