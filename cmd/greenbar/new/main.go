package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/mewert/greenbar"
	"github.com/mewert/greenbar/cmd/greenbar/internal/bootstrap"
	sitecmd "github.com/mewert/greenbar/internal/commands/site"
	"github.com/mewert/greenbar/internal/logging"
)

func main() {
	if err := runNew(os.Args[1:]); err != nil {
		log.Fatalf("greenbar new: %v", err)
	}
}

func runNew(args []string) error {
	fs := flag.NewFlagSet("greenbar-new", flag.ExitOnError)
	configPath := fs.String("config", "site.yaml", "Path to the site configuration file")
	title := fs.String("title", "", "Post title (required)")
	slug := fs.String("slug", "", "Explicit slug (defaults to a slug derived from the title)")
	tags := fs.String("tags", "", "Comma separated tag list")
	bundle := fs.Bool("bundle", false, "Create a bundle directory so images can sit next to the post")
	draft := fs.Bool("draft", false, "Mark the post as a draft")

	if err := fs.Parse(args); err != nil {
		return err
	}

	// Scaffolding only needs the configuration, not a built engine.
	cfg, err := greenbar.LoadConfig(*configPath)
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	handler := sitecmd.NewNewPostHandler(sitecmd.NewPostHandlerConfig{
		PostsDir:      filepath.Join(cfg.Content.Dir, cfg.Content.PostsDir),
		DefaultAuthor: cfg.Site.Author,
	}, logging.NoOp())

	cmd := sitecmd.NewPostCommand{
		Title:  *title,
		Slug:   *slug,
		Tags:   bootstrap.SplitTags(*tags),
		Bundle: *bundle,
		Draft:  *draft,
		CreatedCallback: func(path string) {
			fmt.Fprintf(os.Stdout, "created %s\n", path)
		},
	}

	if err := handler.Execute(context.Background(), cmd); err != nil {
		return fmt.Errorf("scaffold post: %w", err)
	}
	return nil
}
