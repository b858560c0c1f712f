package sitecmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/mewert/greenbar/internal/commands"
	"github.com/mewert/greenbar/internal/content"
	"github.com/mewert/greenbar/internal/logging"
	"github.com/mewert/greenbar/internal/site"
	"github.com/mewert/greenbar/pkg/interfaces"
)

// ErrContentIssues indicates the content check found problems.
var ErrContentIssues = errors.New("sitecmd: content check found issues")

// BuildSiteHandler orchestrates generator builds using the shared command
// handler foundation.
type BuildSiteHandler struct {
	inner *commands.Handler[BuildSiteCommand]
}

// NewBuildSiteHandler constructs a handler wired to the provided generator service.
func NewBuildSiteHandler(service site.Service, logger interfaces.Logger, opts ...commands.HandlerOption[BuildSiteCommand]) *BuildSiteHandler {
	baseLogger := commands.EnsureLogger(logger)

	exec := func(ctx context.Context, msg BuildSiteCommand) error {
		if service == nil {
			return site.ErrServiceDisabled
		}

		if msg.Clean && !msg.DryRun {
			if err := service.Clean(ctx); err != nil {
				return err
			}
		}

		result, err := service.Build(ctx, site.BuildOptions{DryRun: msg.DryRun})
		invokeBuildCallback(msg.ResultCallback, BuildResultEnvelope{
			Result: result,
			Metadata: map[string]any{
				"operation": "build",
				"dry_run":   msg.DryRun,
			},
		})
		return err
	}

	handlerOpts := []commands.HandlerOption[BuildSiteCommand]{
		commands.WithLogger[BuildSiteCommand](baseLogger),
		commands.WithOperation[BuildSiteCommand]("site.build"),
		commands.WithMessageFields(func(msg BuildSiteCommand) map[string]any {
			fields := map[string]any{}
			if msg.Clean {
				fields["clean"] = true
			}
			if msg.DryRun {
				fields["dry_run"] = true
			}
			return fields
		}),
		commands.WithTelemetry(commands.DefaultTelemetry[BuildSiteCommand](baseLogger)),
	}
	handlerOpts = append(handlerOpts, opts...)

	return &BuildSiteHandler{inner: commands.NewHandler(exec, handlerOpts...)}
}

// Execute satisfies command.Commander[BuildSiteCommand].
func (h *BuildSiteHandler) Execute(ctx context.Context, msg BuildSiteCommand) error {
	return h.inner.Execute(ctx, msg)
}

// CleanSiteHandler clears the output directory.
type CleanSiteHandler struct {
	inner *commands.Handler[CleanSiteCommand]
}

// NewCleanSiteHandler constructs a handler that removes generated artifacts.
func NewCleanSiteHandler(service site.Service, logger interfaces.Logger, opts ...commands.HandlerOption[CleanSiteCommand]) *CleanSiteHandler {
	baseLogger := commands.EnsureLogger(logger)

	exec := func(ctx context.Context, _ CleanSiteCommand) error {
		if service == nil {
			return site.ErrServiceDisabled
		}
		return service.Clean(ctx)
	}

	handlerOpts := []commands.HandlerOption[CleanSiteCommand]{
		commands.WithLogger[CleanSiteCommand](baseLogger),
		commands.WithOperation[CleanSiteCommand]("site.clean"),
	}
	handlerOpts = append(handlerOpts, opts...)

	return &CleanSiteHandler{inner: commands.NewHandler(exec, handlerOpts...)}
}

// Execute satisfies command.Commander[CleanSiteCommand].
func (h *CleanSiteHandler) Execute(ctx context.Context, msg CleanSiteCommand) error {
	return h.inner.Execute(ctx, msg)
}

// CheckContentHandler lints the content tree and fails when issues are found.
type CheckContentHandler struct {
	inner *commands.Handler[CheckContentCommand]
}

// NewCheckContentHandler constructs a handler that validates the content tree
// using the same loading path the generator uses.
func NewCheckContentHandler(md interfaces.MarkdownService, cfg content.Config, logger interfaces.Logger, opts ...commands.HandlerOption[CheckContentCommand]) *CheckContentHandler {
	baseLogger := commands.EnsureLogger(logger)

	exec := func(ctx context.Context, msg CheckContentCommand) error {
		report, err := content.Lint(ctx, md, cfg)
		if err != nil {
			return err
		}
		if msg.ReportCallback != nil {
			msg.ReportCallback(report)
		}
		if !report.OK() {
			return fmt.Errorf("%w: %d issue(s)", ErrContentIssues, len(report.Issues))
		}
		return nil
	}

	handlerOpts := []commands.HandlerOption[CheckContentCommand]{
		commands.WithLogger[CheckContentCommand](baseLogger),
		commands.WithOperation[CheckContentCommand]("site.check"),
	}
	handlerOpts = append(handlerOpts, opts...)

	return &CheckContentHandler{inner: commands.NewHandler(exec, handlerOpts...)}
}

// Execute satisfies command.Commander[CheckContentCommand].
func (h *CheckContentHandler) Execute(ctx context.Context, msg CheckContentCommand) error {
	return h.inner.Execute(ctx, msg)
}

// NewPostHandler scaffolds post files.
type NewPostHandler struct {
	inner *commands.Handler[NewPostCommand]
}

// NewPostHandlerConfig carries scaffolding defaults.
type NewPostHandlerConfig struct {
	PostsDir      string
	DefaultAuthor string
}

// NewNewPostHandler constructs a handler that writes post skeletons.
func NewNewPostHandler(cfg NewPostHandlerConfig, logger interfaces.Logger, opts ...commands.HandlerOption[NewPostCommand]) *NewPostHandler {
	baseLogger := commands.EnsureLogger(logger)

	exec := func(_ context.Context, msg NewPostCommand) error {
		author := msg.Author
		if author == "" {
			author = cfg.DefaultAuthor
		}
		path, err := content.ScaffoldPost(cfg.PostsDir, content.ScaffoldOptions{
			Title:  msg.Title,
			Slug:   msg.Slug,
			Tags:   msg.Tags,
			Author: author,
			Draft:  msg.Draft,
			Bundle: msg.Bundle,
		})
		if err != nil {
			return err
		}
		logging.WithFields(baseLogger, map[string]any{"path": path}).Info("post.scaffolded")
		if msg.CreatedCallback != nil {
			msg.CreatedCallback(path)
		}
		return nil
	}

	handlerOpts := []commands.HandlerOption[NewPostCommand]{
		commands.WithLogger[NewPostCommand](baseLogger),
		commands.WithOperation[NewPostCommand]("post.new"),
		commands.WithMessageFields(func(msg NewPostCommand) map[string]any {
			fields := map[string]any{"title": msg.Title}
			if msg.Bundle {
				fields["bundle"] = true
			}
			if msg.Draft {
				fields["draft"] = true
			}
			return fields
		}),
	}
	handlerOpts = append(handlerOpts, opts...)

	return &NewPostHandler{inner: commands.NewHandler(exec, handlerOpts...)}
}

// Execute satisfies command.Commander[NewPostCommand].
func (h *NewPostHandler) Execute(ctx context.Context, msg NewPostCommand) error {
	return h.inner.Execute(ctx, msg)
}

func invokeBuildCallback(callback BuildResultCallback, envelope BuildResultEnvelope) {
	if callback == nil {
		return
	}
	callback(envelope)
}
