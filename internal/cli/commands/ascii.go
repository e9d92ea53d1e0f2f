package commands

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"imgcore"
)

type asciiOptions struct {
	charset    string
	background string
	cellWidth  int
	cellHeight int
	gamma      float64
	out        string
}

func newASCIICommand(a *app) *cobra.Command {
	opts := &asciiOptions{}

	cmd := &cobra.Command{
		Use:   "ascii <path>",
		Short: "Render an image as colored character art",
		Long: `Render an image as colored character art. Each cell of the source image
becomes one glyph, picked by brightness and painted in the cell's average color.

The result is printed as a data:image/png;base64 transport string, or written
as a PNG file with --out. Defaults come from the ascii section of imgcore.yaml.

Examples:
  imgcore ascii photo.jpg --out art.png
  imgcore ascii photo.jpg --charset blocks --bg "#101020"
  imgcore ascii photo.jpg --cell-width 6 --cell-height 12 --gamma 0.8`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runASCII(cmd, a, opts, args[0])
		},
	}

	cmd.Flags().StringVar(&opts.charset, "charset", "", "Character set id (see 'imgcore charsets')")
	cmd.Flags().StringVar(&opts.background, "bg", "", "Background color as #rrggbb")
	cmd.Flags().IntVar(&opts.cellWidth, "cell-width", 0, "Source pixels per glyph horizontally")
	cmd.Flags().IntVar(&opts.cellHeight, "cell-height", 0, "Source pixels per glyph vertically")
	cmd.Flags().Float64Var(&opts.gamma, "gamma", 0, "Gamma applied to cell brightness")
	cmd.Flags().StringVarP(&opts.out, "out", "o", "", "Write the rendered PNG to this file")

	return cmd
}

func runASCII(cmd *cobra.Command, a *app, opts *asciiOptions, path string) error {
	ascii := a.cfg.ASCII
	flags := cmd.Flags()
	if flags.Changed("charset") {
		ascii.Charset = opts.charset
	}
	if flags.Changed("bg") {
		ascii.BackgroundColor = opts.background
	}
	if flags.Changed("cell-width") {
		ascii.CellWidth = opts.cellWidth
	}
	if flags.Changed("cell-height") {
		ascii.CellHeight = opts.cellHeight
	}
	if flags.Changed("gamma") {
		ascii.Gamma = opts.gamma
	}

	ramp, ok := imgcore.LookupRamp(ascii.Charset)
	if !ok {
		return fmt.Errorf("unknown character set %q", ascii.Charset)
	}

	transport, err := a.engine.RenderFile(path, ramp, ascii.RenderParams())
	if err != nil {
		return err
	}

	if opts.out == "" {
		fmt.Fprintln(cmd.OutOrStdout(), transport)
		return nil
	}

	data, err := imgcore.TransportPayload(transport)
	if err != nil {
		return err
	}
	if err := os.WriteFile(opts.out, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", opts.out, err)
	}
	color.New(color.FgGreen).Fprintf(cmd.OutOrStdout(), "✓ Wrote %s (%s, %d bytes)\n", opts.out, ramp.Label, len(data))
	return nil
}
