package config

import (
	"errors"
	"fmt"
)

// Validate checks that all required fields are set and values are valid.
func (c *WatcherConfig) Validate() error {
	if c.Instance.ID == "" {
		return errors.New("instance.id is required")
	}

	if c.Poller.TopMarkets < 1 {
		return errors.New("poller.top_markets must be >= 1")
	}
	if c.Poller.PageLimit < 1 {
		return errors.New("poller.page_limit must be >= 1")
	}

	if c.Dedup.TrimTo > c.Dedup.MaxEntries {
		return fmt.Errorf("dedup.trim_to (%d) cannot exceed max_entries (%d)",
			c.Dedup.TrimTo, c.Dedup.MaxEntries)
	}

	if c.Stats.GlobalWindow < 1 {
		return errors.New("stats.global_window must be >= 1")
	}
	if c.Stats.MarketWindow < 1 {
		return errors.New("stats.market_window must be >= 1")
	}
	if c.Stats.MinSamples < 2 {
		return errors.New("stats.min_samples must be >= 2")
	}

	if c.Database.Postgres.Host != "" {
		if err := c.Database.Postgres.validate("database.postgres"); err != nil {
			return err
		}
	}

	if c.Writer.BatchSize < 1 {
		return errors.New("writer.batch_size must be >= 1")
	}

	if c.Ops.Port < 1 || c.Ops.Port > 65535 {
		return fmt.Errorf("ops.port must be between 1 and 65535, got %d", c.Ops.Port)
	}

	return nil
}

func (db *DBConfig) validate(prefix string) error {
	if db.Name == "" {
		return fmt.Errorf("%s.name is required", prefix)
	}
	if db.User == "" {
		return fmt.Errorf("%s.user is required", prefix)
	}
	if db.Password == "" {
		return fmt.Errorf("%s.password is required", prefix)
	}
	if db.MaxConns < 1 {
		return fmt.Errorf("%s.max_conns must be >= 1", prefix)
	}
	if db.MinConns < 0 {
		return fmt.Errorf("%s.min_conns must be >= 0", prefix)
	}
	if db.MinConns > db.MaxConns {
		return fmt.Errorf("%s.min_conns (%d) cannot exceed max_conns (%d)", prefix, db.MinConns, db.MaxConns)
	}
	return nil
}
