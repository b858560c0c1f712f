// Package bootstrap builds the engine module from CLI flags layered over the
// runtime configuration.
package bootstrap

import (
	"fmt"
	"strings"

	"github.com/mewert/greenbar"
	"github.com/mewert/greenbar/internal/logging"
	"github.com/mewert/greenbar/pkg/interfaces"
)

// Options captures the flag overrides shared by the greenbar CLIs. Pointer
// fields only override the configuration when set.
type Options struct {
	ConfigPath  string
	ContentDir  string
	OutputDir   string
	Addr        string
	Drafts      *bool
	Incremental *bool
	CleanBuild  *bool
	Rebuild     *bool
}

// Module wraps the engine module plus the logger the CLIs report through.
type Module struct {
	Module *greenbar.Module
	Config greenbar.Config
	Logger interfaces.Logger
}

// BuildModule loads configuration, applies flag overrides, and constructs the
// engine.
func BuildModule(opts Options) (*Module, error) {
	cfg, err := greenbar.LoadConfig(strings.TrimSpace(opts.ConfigPath))
	if err != nil {
		return nil, fmt.Errorf("load configuration: %w", err)
	}

	if dir := strings.TrimSpace(opts.ContentDir); dir != "" {
		cfg.Content.Dir = dir
	}
	if dir := strings.TrimSpace(opts.OutputDir); dir != "" {
		cfg.Generator.OutputDir = dir
	}
	if addr := strings.TrimSpace(opts.Addr); addr != "" {
		cfg.Preview.Addr = addr
	}
	if opts.Drafts != nil {
		cfg.Content.Drafts = *opts.Drafts
	}
	if opts.Incremental != nil {
		cfg.Generator.Incremental = *opts.Incremental
	}
	if opts.CleanBuild != nil {
		cfg.Generator.CleanBuild = *opts.CleanBuild
	}
	if opts.Rebuild != nil {
		cfg.Preview.Rebuild = *opts.Rebuild
	}

	module, err := greenbar.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("initialise engine: %w", err)
	}

	logger := logging.CommandsLogger(module.Logger())

	return &Module{
		Module: module,
		Config: cfg,
		Logger: logger,
	}, nil
}

// SplitTags parses a comma separated tag list into a trimmed slice.
func SplitTags(value string) []string {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	tags := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			tags = append(tags, trimmed)
		}
	}
	return tags
}
