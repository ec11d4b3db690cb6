// Command addonkit is the development companion for plugins built on this
// module: it builds, previews and publishes a plugin's documentation site
// and renders menu manifests for inspection.
package main

import (
	"log/slog"
	"os"

	"github.com/alecthomas/kong"

	"github.com/addonkit/addonkit/cmd/addonkit/commands"
)

var CLI struct {
	Verbose bool `short:"v" help:"Enable verbose logging"`

	Docs struct {
		Config string `short:"c" help:"Docs configuration file path" default:"docs.yaml"`

		Build struct {
			Output string `short:"o" help:"Override the configured output directory"`
		} `cmd:"" help:"Build the documentation site"`

		Serve struct {
			Addr string `help:"Override the configured listen address"`
		} `cmd:"" help:"Serve the site with live rebuild on change"`

		Publish struct{} `cmd:"" help:"Build the site and push it to the configured git remote"`
	} `cmd:"" help:"Documentation site commands"`

	Preview struct {
		Manifest string `arg:"" help:"Menu manifest (menu.yaml) to render"`
		Path     string `short:"p" help:"Index path of the submenu to render (e.g. \"1,0\")"`
	} `cmd:"" help:"Render a menu manifest as a tree"`

	Init struct {
		Force bool `help:"Overwrite existing files"`
	} `cmd:"" help:"Write starter docs.yaml and menu.yaml files"`
}

func main() {
	ctx := kong.Parse(&CLI)

	logLevel := slog.LevelInfo
	if CLI.Verbose {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	var err error
	switch ctx.Command() {
	case "docs build":
		err = commands.RunDocsBuild(CLI.Docs.Config, CLI.Docs.Build.Output)
	case "docs serve":
		err = commands.RunDocsServe(CLI.Docs.Config, CLI.Docs.Serve.Addr)
	case "docs publish":
		err = commands.RunDocsPublish(CLI.Docs.Config)
	case "preview <manifest>":
		err = commands.RunPreview(os.Stdout, CLI.Preview.Manifest, CLI.Preview.Path)
	case "init":
		err = commands.RunInit(".", CLI.Init.Force)
	default:
		slog.Error("Unknown command", "command", ctx.Command())
		os.Exit(1)
	}
	if err != nil {
		slog.Error("Command failed", "command", ctx.Command(), "error", err)
		os.Exit(1)
	}
}
