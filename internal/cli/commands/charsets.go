package commands

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"imgcore"
)

// NewCharsetsCommand creates the charsets command
func NewCharsetsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "charsets",
		Short: "List the bundled character sets",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			w := cmd.OutOrStdout()
			idColor := color.New(color.FgCyan, color.Bold)

			for _, r := range imgcore.Ramps() {
				idColor.Fprintf(w, "%-16s", r.ID)
				fmt.Fprintf(w, " %-16s %q\n", r.Label, r.Chars)
			}
		},
	}
}
