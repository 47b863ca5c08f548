package cli

import (
	"io"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

// studioCommand creates the "studio" command.
func (c *CLI) studioCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "studio",
		Short: "Start an interactive session",
		Long: `Start an interactive terminal session with its own text and settings.

Type new text directly, or use commands:

  :gen <prompt>        generate text
  :analyze <image>     infer settings from a handwriting image
  :set field=value     change one setting
  :text <text>         replace the text
  :reset               return to the defaults
  :quit                leave (or Esc / Ctrl+C)`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			svc, err := c.newServices(ctx)
			if err != nil {
				return err
			}
			defer svc.Close()

			// Flow failures are shown in the status line; keep the log
			// from drawing over the TUI.
			c.Logger.SetOutput(io.Discard)

			ctrl := c.newController(svc)
			updates, cancel := ctrl.Subscribe()
			defer cancel()

			_, err = tea.NewProgram(newStudioModel(ctx, ctrl, updates), tea.WithContext(ctx)).Run()
			return err
		},
	}
}
