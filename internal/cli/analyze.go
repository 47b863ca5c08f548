package cli

import (
	"os"

	"github.com/spf13/cobra"

	errs "github.com/Deva-here/ScribbleForge/pkg/errors"
	"github.com/Deva-here/ScribbleForge/pkg/integrations"
	"github.com/Deva-here/ScribbleForge/pkg/style"
)

type analyzeOpts struct {
	json bool
	yaml bool
}

// analyzeCommand creates the "analyze" command.
func (c *CLI) analyzeCommand() *cobra.Command {
	var opts analyzeOpts

	cmd := &cobra.Command{
		Use:   "analyze <image-file>",
		Short: "Infer handwriting style settings from an image",
		Long: `Analyze a photo or scan of handwriting and print the style settings it
suggests, merged over the defaults with the instrument set to custom.

Results are cached by image content; use --no-cache to force a fresh call.`,
		Example: `  scribbleforge analyze note.jpg
  scribbleforge analyze --json note.png > style.json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := resolveFormat(opts.json, opts.yaml)
			if err != nil {
				return err
			}
			image, err := readImage(args[0])
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			svc, err := c.newServices(ctx)
			if err != nil {
				return err
			}
			defer svc.Close()

			ctrl := c.newController(svc)
			prog := newProgress(loggerFromContext(ctx))
			err = spin(ctx, "Analyzing handwriting...", func() error {
				return ctrl.AnalyzeStyle(ctx, image)
			})
			if ctx.Err() != nil {
				return ctx.Err()
			}

			st := ctrl.State()
			if err != nil {
				printError(cmd.ErrOrStderr(), "%s", st.Error)
				return err
			}
			prog.done("Analyzed " + args[0])
			return writeSettings(cmd.OutOrStdout(), st.Settings, format, style.Diff(style.Default(), st.Settings))
		},
	}

	cmd.Flags().BoolVar(&opts.json, "json", false, "print settings as JSON")
	cmd.Flags().BoolVar(&opts.yaml, "yaml", false, "print settings as YAML")
	return cmd
}

// readImage loads an image file and encodes it as a data URI.
func readImage(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", errs.Wrap(errs.ErrCodeInvalidInput, err, "read image")
	}
	if info.Size() > integrations.MaxImageBytes {
		return "", errs.New(errs.ErrCodeInvalidImage, "%s exceeds %d bytes", path, integrations.MaxImageBytes)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", errs.Wrap(errs.ErrCodeInvalidInput, err, "read image")
	}

	uri := integrations.EncodeDataURI("", data)
	if _, err := integrations.ParseDataURI(uri); err != nil {
		return "", err
	}
	return uri, nil
}
