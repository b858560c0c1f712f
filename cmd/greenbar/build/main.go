package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/mewert/greenbar/cmd/greenbar/internal/bootstrap"
	sitecmd "github.com/mewert/greenbar/internal/commands/site"
)

var moduleBuilder = bootstrap.BuildModule

func main() {
	if err := runBuild(os.Args[1:]); err != nil {
		log.Fatalf("greenbar build: %v", err)
	}
}

func runBuild(args []string) error {
	fs := flag.NewFlagSet("greenbar-build", flag.ExitOnError)
	configPath := fs.String("config", "site.yaml", "Path to the site configuration file")
	contentDir := fs.String("content", "", "Override the content root directory")
	outputDir := fs.String("out", "", "Override the output directory")
	drafts := fs.Bool("drafts", false, "Include draft posts in the build")
	incremental := fs.Bool("incremental", true, "Skip documents whose inputs are unchanged")
	clean := fs.Bool("clean", false, "Remove previous output before building")
	dryRun := fs.Bool("dry-run", false, "Render everything but write nothing")

	if err := fs.Parse(args); err != nil {
		return err
	}

	module, err := moduleBuilder(bootstrap.Options{
		ConfigPath:  *configPath,
		ContentDir:  *contentDir,
		OutputDir:   *outputDir,
		Drafts:      drafts,
		Incremental: incremental,
	})
	if err != nil {
		return err
	}

	handler := sitecmd.NewBuildSiteHandler(module.Module.Site(), module.Logger)
	cmd := sitecmd.BuildSiteCommand{
		Clean:  *clean,
		DryRun: *dryRun,
		ResultCallback: func(envelope sitecmd.BuildResultEnvelope) {
			result := envelope.Result
			if result == nil {
				return
			}
			if result.DryRun {
				fmt.Fprintf(os.Stdout, "dry run: %d documents would be written\n", result.DocumentsBuilt)
				return
			}
			fmt.Fprintf(os.Stdout, "built %d documents (%d unchanged), %d assets, %d feeds in %s\n",
				result.DocumentsBuilt, result.DocumentsSkipped, result.AssetsBuilt, result.FeedsWritten, result.Duration)
		},
	}

	if err := handler.Execute(context.Background(), cmd); err != nil {
		return fmt.Errorf("execute build command: %w", err)
	}
	return nil
}
