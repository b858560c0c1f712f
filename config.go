package greenbar

import "github.com/mewert/greenbar/internal/runtimeconfig"

var (
	ErrContentDirRequired      = runtimeconfig.ErrContentDirRequired
	ErrThemeDirRequired        = runtimeconfig.ErrThemeDirRequired
	ErrOutputDirRequired       = runtimeconfig.ErrOutputDirRequired
	ErrBaseURLInvalid          = runtimeconfig.ErrBaseURLInvalid
	ErrWorkersInvalid          = runtimeconfig.ErrWorkersInvalid
	ErrPreviewAddrRequired     = runtimeconfig.ErrPreviewAddrRequired
	ErrLoggingProviderUnknown  = runtimeconfig.ErrLoggingProviderUnknown
	ErrLoggingLevelInvalid     = runtimeconfig.ErrLoggingLevelInvalid
	ErrLoggingFormatInvalid    = runtimeconfig.ErrLoggingFormatInvalid
	ErrFrontMatterSchemaBroken = runtimeconfig.ErrFrontMatterSchemaBroken
)

type (
	Config            = runtimeconfig.Config
	SiteConfig        = runtimeconfig.SiteConfig
	ContentConfig     = runtimeconfig.ContentConfig
	ThemeConfig       = runtimeconfig.ThemeConfig
	GeneratorConfig   = runtimeconfig.GeneratorConfig
	PreviewConfig     = runtimeconfig.PreviewConfig
	LoggingConfig     = runtimeconfig.LoggingConfig
	FrontMatterConfig = runtimeconfig.FrontMatterConfig
)

// DefaultConfig returns the baseline configuration before file and
// environment overrides.
func DefaultConfig() Config {
	return runtimeconfig.DefaultConfig()
}

// LoadConfig layers defaults, an optional YAML file, and GREENBAR_*
// environment variables, then validates the result.
func LoadConfig(path string) (Config, error) {
	return runtimeconfig.Load(path)
}
