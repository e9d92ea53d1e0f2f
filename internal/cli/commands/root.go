package commands

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"imgcore"
	"imgcore/internal/cli/config"
	"imgcore/internal/logging"
)

// app is the state shared by subcommands once the root command has loaded
// the configuration.
type app struct {
	configPath string
	cfg        *config.Config
	log        *zap.Logger
	engine     *imgcore.Engine
}

// NewRootCommand creates the root command
func NewRootCommand() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:   "imgcore",
		Short: "Image metadata, provenance and character-art tooling",
		Long: color.CyanString(`imgcore - image inspection toolkit

Reads image metadata and EXIF tags, looks for signs that an image was
produced by a generative model, and renders images as colored character art.

Supported formats: JPEG, PNG, GIF, WebP, BMP, TIFF`),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.log != nil {
				_ = a.log.Sync()
			}
		},
	}

	rootCmd.PersistentFlags().StringVar(&a.configPath, "config", "", "Path to imgcore.yaml (default: ./imgcore.yaml or ~/.config/imgcore/imgcore.yaml)")

	// Add subcommands
	rootCmd.AddCommand(NewVersionCommand())
	rootCmd.AddCommand(newInfoCommand(a))
	rootCmd.AddCommand(newDetectCommand(a))
	rootCmd.AddCommand(newASCIICommand(a))
	rootCmd.AddCommand(NewCharsetsCommand())

	return rootCmd
}

func (a *app) setup() error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	logger, err := logging.New(cfg.Log.Level, cfg.Log.Development)
	if err != nil {
		return fmt.Errorf("failed to set up logging: %w", err)
	}

	a.cfg = cfg
	a.log = logger
	a.engine = imgcore.NewEngine(
		imgcore.WithLogger(logger),
		imgcore.WithWorkers(cfg.Workers),
	)
	return nil
}
