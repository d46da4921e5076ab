// Package export generates upsert scripts that replay selected rows
// into another environment.
package export

import (
	"context"

	"github.com/sqldraft/sqldraft/pkg/config"
)

type Export struct {
	Config             string `name:"config" help:"Path to the YAML run configuration file." required:""`
	DefaultsFile       string `name:"defaults-file" help:"Path to an ini file with [client] credentials." optional:""`
	Output             string `name:"output" help:"Script file to write, overrides the config." optional:""`
	MaxRows            int    `name:"max-rows" help:"Cap on rows exported per table, 0 means no cap." optional:"" default:"0"`
	FallbackKeyColumns int    `name:"fallback-key-columns" help:"Leading columns standing in for a missing primary key, overrides the config." optional:"" default:"0"`
}

func (e *Export) Run() error {
	cfg, err := config.Load(e.Config)
	if err != nil {
		return err
	}
	if err := cfg.ApplyDefaultsFile(e.DefaultsFile); err != nil {
		return err
	}
	if e.Output != "" {
		cfg.Output.File = e.Output
	}
	if e.FallbackKeyColumns > 0 {
		cfg.FallbackKeyColumns = e.FallbackKeyColumns
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	runner, err := NewRunner(e, cfg)
	if err != nil {
		return err
	}
	return runner.Run(context.TODO())
}
