package tasks

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/mikestefanello/backlite"
	"go.uber.org/zap"

	"github.com/mrlokans/memberimport/internal/logging"
)

// Client runs import commits and maintenance tasks on a backlite queue kept
// in its own SQLite file, so a long commit never holds the members database.
type Client struct {
	queue  *backlite.Client
	db     *sql.DB
	config Config
	logger *zap.Logger

	mu      sync.Mutex
	started bool
}

// NewClient opens the task database next to mainDBPath and installs the
// backlite schema.
func NewClient(mainDBPath string, cfg Config, logger *zap.Logger) (*Client, error) {
	logger = logging.OrNop(logger).Named("tasks")
	path := DatabasePath(mainDBPath)

	db, err := sql.Open("sqlite3", path+"?_journal=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open tasks database: %w", err)
	}
	// Workers plus the HTTP handlers that enqueue and read statuses.
	db.SetMaxOpenConns(cfg.Workers + 4)
	db.SetMaxIdleConns(cfg.Workers + 1)
	db.SetConnMaxLifetime(time.Hour)

	queue, err := backlite.NewClient(backlite.ClientConfig{
		DB:              db,
		NumWorkers:      cfg.Workers,
		ReleaseAfter:    cfg.ReleaseAfter,
		CleanupInterval: cfg.CleanupInterval,
		Logger:          &zapLogger{logger: logger.Sugar()},
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create task queue: %w", err)
	}
	if err := queue.Install(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to install task queue schema: %w", err)
	}

	logger.Debug("task queue ready", zap.String("path", path), zap.Int("workers", cfg.Workers))
	return &Client{
		queue:  queue,
		db:     db,
		config: cfg,
		logger: logger,
	}, nil
}

// DatabasePath derives the task database file from the members database:
// "data/memberimport.db" becomes "data/memberimport-tasks.db".
func DatabasePath(mainDBPath string) string {
	dir, base := filepath.Split(mainDBPath)
	ext := filepath.Ext(base)
	return filepath.Join(dir, strings.TrimSuffix(base, ext)+"-tasks"+ext)
}

// Register adds task queues. Must be called before Start.
func (c *Client) Register(queues ...backlite.Queue) {
	for _, q := range queues {
		c.queue.Register(q)
	}
}

// Start processes tasks until ctx is cancelled or Stop is called. It does
// not block.
func (c *Client) Start(ctx context.Context) {
	c.mu.Lock()
	if c.started {
		c.mu.Unlock()
		return
	}
	c.started = true
	c.mu.Unlock()

	c.logger.Info("task queue started", zap.Int("workers", c.config.Workers))
	c.queue.Start(ctx)
}

// Stop waits for running tasks. It reports false when ctx expired first.
func (c *Client) Stop(ctx context.Context) bool {
	c.mu.Lock()
	started := c.started
	c.mu.Unlock()
	if !started {
		return true
	}

	if !c.queue.Stop(ctx) {
		c.logger.Warn("task queue stopped before running tasks finished")
		return false
	}
	c.logger.Info("task queue stopped")
	return true
}

// Close releases the task database. Call it after Stop.
func (c *Client) Close() error {
	return c.db.Close()
}

// Enqueue stores one task and returns its id.
func (c *Client) Enqueue(task backlite.Task) (string, error) {
	ids, err := c.queue.Add(task).Save()
	if err != nil {
		return "", fmt.Errorf("enqueue %s: %w", task.Config().Name, err)
	}
	if len(ids) == 0 {
		return "", errors.New("task queue returned no id")
	}
	return ids[0], nil
}

// Status returns the status of a task by ID.
func (c *Client) Status(ctx context.Context, taskID string) (backlite.TaskStatus, error) {
	return c.queue.Status(ctx, taskID)
}

// DB is the task database, checked by the health endpoint.
func (c *Client) DB() *sql.DB {
	return c.db
}

// zapLogger implements backlite.Logger. backlite passes alternating keys
// and values, which is what the sugared logger expects.
type zapLogger struct {
	logger *zap.SugaredLogger
}

func (l *zapLogger) Info(message string, params ...any) {
	l.logger.Infow(message, params...)
}

func (l *zapLogger) Error(message string, params ...any) {
	l.logger.Errorw(message, params...)
}
