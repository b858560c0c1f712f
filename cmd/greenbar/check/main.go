package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/mewert/greenbar"
	sitecmd "github.com/mewert/greenbar/internal/commands/site"
	"github.com/mewert/greenbar/internal/content"
	"github.com/mewert/greenbar/internal/logging"
	"github.com/mewert/greenbar/internal/markdown"
)

func main() {
	if err := runCheck(os.Args[1:]); err != nil {
		log.Fatalf("greenbar check: %v", err)
	}
}

func runCheck(args []string) error {
	fs := flag.NewFlagSet("greenbar-check", flag.ExitOnError)
	configPath := fs.String("config", "site.yaml", "Path to the site configuration file")
	contentDir := fs.String("content", "", "Override the content root directory")
	strict := fs.Bool("strict", false, "Exit non-zero on warnings as well as errors")

	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := greenbar.LoadConfig(*configPath)
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}
	if *contentDir != "" {
		cfg.Content.Dir = *contentDir
	}

	md, err := markdown.NewService(markdown.Config{
		BasePath:  cfg.Content.Dir,
		Pattern:   cfg.Content.Pattern,
		Recursive: true,
	}, nil)
	if err != nil {
		return fmt.Errorf("markdown service: %w", err)
	}

	handler := sitecmd.NewCheckContentHandler(md, content.Config{
		PostsDir:          cfg.Content.PostsDir,
		PagesDir:          cfg.Content.PagesDir,
		DefaultAuthor:     cfg.Site.Author,
		FrontMatterSchema: cfg.FrontMatter.Schema,
	}, logging.NoOp())

	var lastReport *content.LintReport
	cmd := sitecmd.CheckContentCommand{
		ReportCallback: func(report *content.LintReport) {
			lastReport = report
			for _, issue := range report.Issues {
				fmt.Fprintf(os.Stderr, "%s\n", issue.String())
			}
		},
	}

	err = handler.Execute(context.Background(), cmd)
	if err != nil && !errors.Is(err, sitecmd.ErrContentIssues) {
		return err
	}

	checked := 0
	if lastReport != nil {
		checked = lastReport.PostsChecked + lastReport.PagesChecked
	}

	if err == nil {
		fmt.Fprintf(os.Stdout, "checked %d documents, no issues\n", checked)
		return nil
	}

	// Errors always fail the check; warnings only fail it under -strict.
	if lastReport.Errors() > 0 || *strict {
		return err
	}
	fmt.Fprintf(os.Stdout, "checked %d documents, %d warning(s)\n", checked, lastReport.Warnings())
	return nil
}
