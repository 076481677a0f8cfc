// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

// Package config reads the YAML configuration of the sat command.
package config

import (
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/juju/clock"
	"github.com/juju/errors"
	"gopkg.in/yaml.v3"

	"github.com/RHEAGROUP/COMET-Server-Administration-Tool-sub000/session"
	"github.com/RHEAGROUP/COMET-Server-Administration-Tool-sub000/stress"
)

const (
	// SourcePasswordEnv overrides the source password when set.
	SourcePasswordEnv = "SAT_SOURCE_PASSWORD"
	// TargetPasswordEnv overrides the target password when set.
	TargetPasswordEnv = "SAT_TARGET_PASSWORD"
)

// Config is the contents of a configuration file.
type Config struct {
	Source session.Credentials `yaml:"source"`
	Target session.Credentials `yaml:"target"`

	// BaseDir holds the Import directory archives are written to.
	BaseDir string `yaml:"base-dir"`
	// MigrationFile optionally names a file archived alongside the
	// models.
	MigrationFile string `yaml:"migration-file"`
	// Models holds the engineering model setup identities to migrate.
	Models []string `yaml:"models"`

	Retry       Retry  `yaml:"retry"`
	Logging     string `yaml:"logging"`
	MetricsAddr string `yaml:"metrics-addr"`
	Stress      Stress `yaml:"stress"`
}

// Retry bounds retried writes.
type Retry struct {
	Attempts int           `yaml:"attempts"`
	Delay    time.Duration `yaml:"delay"`
}

// Stress configures a stress run.
type Stress struct {
	Iteration string        `yaml:"iteration"`
	Count     int           `yaml:"count"`
	Interval  time.Duration `yaml:"interval"`
	Values    int           `yaml:"values"`
	Cleanup   bool          `yaml:"cleanup"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		BaseDir: ".",
		Retry: Retry{
			Attempts: session.DefaultWriteAttempts,
			Delay:    session.DefaultWriteDelay,
		},
	}
}

// Read parses the file at path on top of the defaults, then applies the
// password overrides from the environment.
func Read(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Annotatef(err, "reading config %s", path)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, errors.Annotatef(err, "parsing config %s", path)
	}
	cfg.ApplyEnv(os.LookupEnv)
	return cfg, nil
}

// Parse decodes data on top of the defaults.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.Trace(err)
	}
	return cfg, nil
}

// ApplyEnv replaces the passwords with the values of the override
// variables that lookup finds.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) {
	if password, ok := lookup(SourcePasswordEnv); ok {
		c.Source.Password = password
	}
	if password, ok := lookup(TargetPasswordEnv); ok {
		c.Target.Password = password
	}
}

// Validate returns an error if the configuration cannot be used.
// Credentials are checked by the commands that need them.
func (c *Config) Validate() error {
	if c.BaseDir == "" {
		return errors.NotValidf("empty base-dir")
	}
	if c.Retry.Attempts < 1 {
		return errors.NotValidf("retry attempts %d", c.Retry.Attempts)
	}
	if c.Retry.Delay <= 0 {
		return errors.NotValidf("retry delay %v", c.Retry.Delay)
	}
	if _, err := c.ModelIDs(); err != nil {
		return errors.Trace(err)
	}
	if c.Stress.Iteration != "" {
		if _, err := uuid.Parse(c.Stress.Iteration); err != nil {
			return errors.NotValidf("stress iteration %q", c.Stress.Iteration)
		}
	}
	return nil
}

// ModelIDs parses Models.
func (c *Config) ModelIDs() ([]uuid.UUID, error) {
	ids := make([]uuid.UUID, 0, len(c.Models))
	for _, s := range c.Models {
		id, err := uuid.Parse(s)
		if err != nil {
			return nil, errors.NotValidf("model %q", s)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// RetryPolicy returns the retry bounds on clk.
func (c *Config) RetryPolicy(clk clock.Clock) session.RetryPolicy {
	return session.RetryPolicy{
		Attempts: c.Retry.Attempts,
		Delay:    c.Retry.Delay,
		Clock:    clk,
	}
}

// StressPlan returns the configured stress run.
func (c *Config) StressPlan() (stress.Plan, error) {
	plan := stress.Plan{
		Count:    c.Stress.Count,
		Interval: c.Stress.Interval,
		Values:   c.Stress.Values,
		Cleanup:  c.Stress.Cleanup,
	}
	if c.Stress.Iteration != "" {
		id, err := uuid.Parse(c.Stress.Iteration)
		if err != nil {
			return plan, errors.NotValidf("stress iteration %q", c.Stress.Iteration)
		}
		plan.Iteration = id
	}
	return plan, errors.Trace(plan.Validate())
}
