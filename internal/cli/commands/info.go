package commands

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"imgcore"
)

func newInfoCommand(a *app) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "info <path>",
		Short: "Show image metadata and EXIF tags",
		Long: `Show the format, dimensions, aspect ratio, color depth and EXIF tags of an image.

Examples:
  imgcore info photo.jpg
  imgcore info --json photo.jpg     # Print the metadata record as JSON`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			md, err := a.engine.ReadImage(args[0])
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), infoJSON(md))
			}
			printInfo(cmd.OutOrStdout(), args[0], md)
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the record as JSON (without the embedded image data)")

	return cmd
}

// infoJSON drops ImageData, which is the whole file again.
func infoJSON(md *imgcore.MetadataRecord) *imgcore.MetadataRecord {
	out := *md
	out.ImageData = ""
	return &out
}

func printInfo(w io.Writer, path string, md *imgcore.MetadataRecord) {
	titleColor := color.New(color.FgCyan, color.Bold)
	keyColor := color.New(color.FgYellow)

	titleColor.Fprintf(w, "%s\n", path)
	fmt.Fprintf(w, "  Format:       %s (%s)\n", md.Format, md.MIMEType)
	fmt.Fprintf(w, "  Dimensions:   %dx%d\n", md.Width, md.Height)
	if md.AspectRatio != "" {
		fmt.Fprintf(w, "  Aspect ratio: %s\n", md.AspectRatio)
	}
	if md.ColorDepth != nil {
		fmt.Fprintf(w, "  Color depth:  %d-bit\n", *md.ColorDepth)
	}
	fmt.Fprintf(w, "  File size:    %d bytes\n", md.FileSize)

	if len(md.Tags) == 0 {
		return
	}
	titleColor.Fprintln(w, "\nEXIF")
	for _, t := range md.Tags {
		keyColor.Fprintf(w, "  %s: ", t.Name)
		fmt.Fprintln(w, t.Value)
	}
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}
