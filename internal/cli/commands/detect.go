package commands

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"imgcore"
)

type detectJSON struct {
	Path    string                    `json:"path"`
	Verdict imgcore.ProvenanceVerdict `json:"verdict"`
	Error   string                    `json:"error,omitempty"`
}

func newDetectCommand(a *app) *cobra.Command {
	var (
		asJSON       bool
		showManifest bool
	)

	cmd := &cobra.Command{
		Use:   "detect <path>...",
		Short: "Check images for AI-generation signals",
		Long: `Check images for signs of AI generation: a C2PA manifest, generator names
in EXIF tags, PNG text chunks or WebP XMP metadata.

A negative result only means no signal was found.

Examples:
  imgcore detect image.png
  imgcore detect --json *.jpg
  imgcore detect --manifest render.webp  # Also print the C2PA manifest`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			results, err := a.engine.AnalyzeAll(cmd.Context(), args)
			if err != nil {
				return err
			}

			if asJSON {
				out := make([]detectJSON, len(results))
				for i, r := range results {
					out[i] = detectJSON{Path: r.Path, Verdict: r.Verdict}
					if r.Err != nil {
						out[i].Error = r.Err.Error()
					}
				}
				return writeJSON(cmd.OutOrStdout(), out)
			}

			w := cmd.OutOrStdout()
			aiColor := color.New(color.FgRed, color.Bold)
			cleanColor := color.New(color.FgGreen)
			errorColor := color.New(color.FgRed)

			failed := 0
			for _, r := range results {
				switch {
				case r.Err != nil:
					errorColor.Fprintf(w, "%s: error: %v\n", r.Path, r.Err)
					failed++
				case r.Verdict.LikelyAI:
					aiColor.Fprintf(w, "%s: likely AI-generated", r.Path)
					fmt.Fprintf(w, " [%s] (%s)\n", strings.Join(r.Verdict.Reasons, ", "), r.Verdict.Format)
				default:
					cleanColor.Fprintf(w, "%s: no AI signals", r.Path)
					fmt.Fprintf(w, " (%s)\n", r.Verdict.Format)
				}
				if showManifest && r.Verdict.C2PAManifest != "" {
					fmt.Fprintf(w, "  C2PA manifest: %s\n", r.Verdict.C2PAManifest)
				}
			}

			if failed > 0 {
				return fmt.Errorf("%d of %d files could not be read", failed, len(results))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print results as JSON")
	cmd.Flags().BoolVar(&showManifest, "manifest", false, "Print the C2PA manifest when one is found")

	return cmd
}
