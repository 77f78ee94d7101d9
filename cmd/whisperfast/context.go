package main

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/gofrs/flock"

	"github.com/magnusua/WhisperFastGUI/internal/config"
	"github.com/magnusua/WhisperFastGUI/internal/logging"
	"github.com/magnusua/WhisperFastGUI/internal/media"
	"github.com/magnusua/WhisperFastGUI/internal/queue"
)

// commandContext lazily builds the pieces commands share: the settings
// store, the logger, and the queue store.
type commandContext struct {
	stateFlag    *string
	logLevelFlag *string

	once      sync.Once
	store     *config.Store
	settings  config.Settings
	logger    *slog.Logger
	loadErr   error
	queueOnce sync.Once
	queue     *queue.Store
}

func newCommandContext(stateFlag, logLevelFlag *string) *commandContext {
	return &commandContext{
		stateFlag:    stateFlag,
		logLevelFlag: logLevelFlag,
	}
}

func (c *commandContext) ensure() error {
	c.once.Do(func() {
		var stateDir string
		if c.stateFlag != nil {
			stateDir = strings.TrimSpace(*c.stateFlag)
		}
		store, err := config.NewStore(stateDir)
		if err != nil {
			c.loadErr = err
			return
		}
		c.store = store
		c.settings = store.Load()

		level := c.settings.LogLevel
		if c.logLevelFlag != nil && strings.TrimSpace(*c.logLevelFlag) != "" {
			level = strings.TrimSpace(*c.logLevelFlag)
		}
		logger, err := logging.New(logging.Options{
			Level:   level,
			LogFile: store.LogPath(),
		})
		if err != nil {
			c.loadErr = err
			return
		}
		c.logger = logger
	})
	return c.loadErr
}

func (c *commandContext) configStore() (*config.Store, error) {
	if err := c.ensure(); err != nil {
		return nil, err
	}
	return c.store, nil
}

func (c *commandContext) currentSettings() (config.Settings, error) {
	if err := c.ensure(); err != nil {
		return config.Settings{}, err
	}
	return c.settings, nil
}

func (c *commandContext) log() *slog.Logger {
	if err := c.ensure(); err != nil {
		return logging.NewNop()
	}
	return c.logger
}

// queueStore loads the persisted queue once per invocation, dropping
// stale entries the way startup always has.
func (c *commandContext) queueStore(ctx context.Context) (*queue.Store, error) {
	if err := c.ensure(); err != nil {
		return nil, err
	}
	c.queueOnce.Do(func() {
		c.queue = queue.NewStore(c.store.QueuePath(), media.NewProber(), c.logger)
		c.queue.Load(ctx)
	})
	return c.queue, nil
}

// acquireProcessLock takes the single-instance lock guarding the queue
// file against concurrent processing runs.
func (c *commandContext) acquireProcessLock() (*flock.Flock, error) {
	if err := c.ensure(); err != nil {
		return nil, err
	}
	lock := flock.New(c.store.LockPath())
	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire processing lock: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("another run or watch is active (lock %s held)", c.store.LockPath())
	}
	return lock, nil
}
