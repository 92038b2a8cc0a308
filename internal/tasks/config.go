package tasks

import (
	"time"

	"github.com/mrlokans/memberimport/internal/config"
)

// DefaultAuditRetentionDays is used when a cleanup task carries no retention.
const DefaultAuditRetentionDays = 90

// Config holds configuration for the task queue system.
type Config struct {
	// Workers is the number of concurrent task workers. Default: 1, so two
	// commits never write to the backend at the same time.
	Workers int

	// ReleaseAfter is when a stuck task is released back to the queue. It
	// always exceeds CommitTimeout. Default: 75m
	ReleaseAfter time.Duration

	// CleanupInterval is how often backlite drops expired task records.
	// Default: 1h
	CleanupInterval time.Duration

	// AuditRetentionDays is passed to the audit cleanup task. Default: 90
	AuditRetentionDays int
}

// DefaultConfig returns the configuration used for unset values.
func DefaultConfig() Config {
	return Config{
		Workers:            1,
		ReleaseAfter:       CommitTimeout + 15*time.Minute,
		CleanupInterval:    time.Hour,
		AuditRetentionDays: DefaultAuditRetentionDays,
	}
}

// FromConfig takes the task settings from the application config. Zero
// values keep their defaults and a ReleaseAfter that would free a running
// commit is ignored.
func FromConfig(cfg config.Tasks) Config {
	c := DefaultConfig()
	if cfg.Workers > 0 {
		c.Workers = cfg.Workers
	}
	if cfg.ReleaseAfter > CommitTimeout {
		c.ReleaseAfter = cfg.ReleaseAfter
	}
	if cfg.CleanupInterval > 0 {
		c.CleanupInterval = cfg.CleanupInterval
	}
	if cfg.AuditRetentionDays > 0 {
		c.AuditRetentionDays = cfg.AuditRetentionDays
	}
	return c
}
