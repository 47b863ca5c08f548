// Package cli implements the scribbleforge command-line interface.
//
// Commands drive the same studio controller the HTTP API serves: one-shot
// text generation and handwriting analysis, offline settings updates, an
// interactive terminal session, and the API server itself.
//
// # Commands
//
//   - generate: Generate body text from a prompt
//   - analyze: Infer style settings from a handwriting image
//   - settings: Apply settings updates and list instrument presets
//   - studio: Interactive terminal session
//   - serve: Run the HTTP session API
//   - cache: Manage the local analysis cache
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging, which also
// traces remote calls and cache activity. Loggers are passed through
// context.Context.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/Deva-here/ScribbleForge/pkg/buildinfo"
	"github.com/Deva-here/ScribbleForge/pkg/observability"
)

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           appName,
		Short:         "ScribbleForge renders text as tunable handwriting",
		Long:          `ScribbleForge manages handwriting style settings and drives remote text generation and handwriting-style analysis.`,
		Version:       buildinfo.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level := LogInfo
			if c.verbose {
				level = LogDebug
				observability.NewLogHooks(c.Logger).Register()
			}
			c.SetLogLevel(level)
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())

	flags := root.PersistentFlags()
	flags.BoolVarP(&c.verbose, "verbose", "v", false, "enable verbose logging")
	flags.StringVar(&c.configPath, "config", "", "config file (.toml or .yaml)")
	flags.StringVar(&c.provider, "provider", "", "remote provider: gemini or openai")
	flags.StringVar(&c.model, "model", "", "model name (default depends on provider)")
	flags.BoolVar(&c.noCache, "no-cache", false, "disable the analysis cache")

	root.AddCommand(c.generateCommand())
	root.AddCommand(c.analyzeCommand())
	root.AddCommand(c.settingsCommand())
	root.AddCommand(c.studioCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}
