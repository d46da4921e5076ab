package main

import (
	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"

	"github.com/sqldraft/sqldraft/pkg/buildinfo"
	"github.com/sqldraft/sqldraft/pkg/deletion"
	"github.com/sqldraft/sqldraft/pkg/export"
)

// Populated via -ldflags by the release pipeline.
var (
	version string
	commit  string
	date    string
)

var cli struct {
	Delete  deletion.Delete  `cmd:"" help:"Generate a review-only DELETE script for the configured tables."`
	Export  export.Export    `cmd:"" help:"Generate an upsert script that replays selected rows."`
	Version kong.VersionFlag `name:"version" help:"Print version information and quit."`
}

func main() {
	_ = godotenv.Load()
	buildinfo.Set(version, commit, date)
	ctx := kong.Parse(&cli,
		kong.Name("sqldraft"),
		kong.Description("sqldraft: reviewable DELETE and upsert script generation"),
		kong.UsageOnError(),
		kong.Vars{"version": buildinfo.Get().Short()},
	)
	ctx.FatalIfErrorf(ctx.Run())
}
