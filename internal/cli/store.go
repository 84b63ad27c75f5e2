package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/aretw0/stepwise/internal/adapters/file"
	redisstore "github.com/aretw0/stepwise/internal/adapters/redis"
	"github.com/aretw0/stepwise/internal/adapters/sqlite"
	"github.com/aretw0/stepwise/internal/config"
	"github.com/aretw0/stepwise/pkg/adapters/memory"
	redislock "github.com/aretw0/stepwise/pkg/adapters/redis"
	"github.com/aretw0/stepwise/pkg/ports"
)

// DefaultSQLitePath is used when store.path is empty for the sqlite driver.
var DefaultSQLitePath = filepath.Join(".stepwise", "sessions.db")

// Persistence is the opened storage backend.
type Persistence struct {
	Store  ports.StateStore
	Locker ports.DistributedLocker // nil unless store.lock is set
	close  func() error
}

// Close releases the backend connection, if any.
func (p *Persistence) Close() error {
	if p.close == nil {
		return nil
	}
	return p.close()
}

// OpenStore builds the StateStore (and locker) selected by cfg.
func OpenStore(cfg config.StoreConfig) (*Persistence, error) {
	switch cfg.Driver {
	case config.DriverMemory, "":
		return &Persistence{Store: memory.NewStore()}, nil

	case config.DriverFile:
		return &Persistence{Store: file.New(cfg.Path)}, nil

	case config.DriverSQLite:
		path := cfg.Path
		if path == "" {
			path = DefaultSQLitePath
		}
		if path != ":memory:" {
			if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
				return nil, fmt.Errorf("create database directory: %w", err)
			}
		}
		store, err := sqlite.Open(path)
		if err != nil {
			return nil, err
		}
		return &Persistence{Store: store, close: store.Close}, nil

	case config.DriverRedis:
		var opts []redisstore.Option
		if cfg.TTL > 0 {
			opts = append(opts, redisstore.WithTTL(cfg.TTL))
		}
		if cfg.Prefix != "" {
			opts = append(opts, redisstore.WithPrefix(cfg.Prefix))
		}
		store := redisstore.New(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, opts...)
		p := &Persistence{Store: store, close: store.Close}
		if cfg.Lock {
			p.Locker = redislock.NewLocker(store.Client(), "stepwise:")
		}
		return p, nil
	}
	return nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
}
