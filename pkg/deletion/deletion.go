// Package deletion generates review-only DELETE scripts from
// interactively collected filters.
package deletion

import (
	"context"

	"github.com/sqldraft/sqldraft/pkg/config"
)

type Delete struct {
	Config             string `name:"config" help:"Path to the YAML run configuration file." required:""`
	DefaultsFile       string `name:"defaults-file" help:"Path to an ini file with [client] credentials." optional:""`
	Output             string `name:"output" help:"Script file to write, overrides the config." optional:""`
	Execute            bool   `name:"execute" help:"Execute the generated statements after an extra confirmation." optional:"" default:"false"`
	PreviewRows        int    `name:"preview-rows" help:"Matched rows to show before confirming each table, overrides the config." optional:"" default:"0"`
	FallbackKeyColumns int    `name:"fallback-key-columns" help:"Leading columns standing in for a missing primary key, overrides the config." optional:"" default:"0"`
}

func (d *Delete) Run() error {
	cfg, err := config.Load(d.Config)
	if err != nil {
		return err
	}
	if err := cfg.ApplyDefaultsFile(d.DefaultsFile); err != nil {
		return err
	}
	if d.Output != "" {
		cfg.Output.File = d.Output
	}
	if d.PreviewRows > 0 {
		cfg.PreviewRows = d.PreviewRows
	}
	if d.FallbackKeyColumns > 0 {
		cfg.FallbackKeyColumns = d.FallbackKeyColumns
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	runner, err := NewRunner(d, cfg)
	if err != nil {
		return err
	}
	return runner.Run(context.TODO())
}
