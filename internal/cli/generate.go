package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	errs "github.com/Deva-here/ScribbleForge/pkg/errors"
)

// generateCommand creates the "generate" command.
func (c *CLI) generateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "generate <prompt>",
		Short: "Generate body text from a prompt",
		Long: `Generate body text from a free-text prompt using the configured provider.

The generated text is printed to stdout. On failure the fixed user-facing
message is printed and the cause is logged (use -v for details).`,
		Example: `  scribbleforge generate "a short note thanking a neighbour"
  scribbleforge generate --provider openai "a grocery list"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			prompt := strings.Join(args, " ")
			if err := errs.ValidateText("prompt", prompt, errs.MaxPromptLength); err != nil {
				return err
			}

			svc, err := c.newServices(ctx)
			if err != nil {
				return err
			}
			defer svc.Close()

			ctrl := c.newController(svc)
			prog := newProgress(loggerFromContext(ctx))
			err = spin(ctx, "Generating text...", func() error {
				return ctrl.GenerateText(ctx, prompt)
			})
			if ctx.Err() != nil {
				return ctx.Err()
			}

			st := ctrl.State()
			if err != nil {
				printError(cmd.ErrOrStderr(), "%s", st.Error)
				return err
			}
			prog.done(fmt.Sprintf("Generated %d characters", len(st.Text)))
			fmt.Fprintln(cmd.OutOrStdout(), st.Text)
			return nil
		},
	}
}
