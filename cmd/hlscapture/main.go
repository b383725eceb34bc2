package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// version is set during build via -ldflags "-X main.version=...".
var version = "dev"

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var (
		configFile string
		apply      bool
	)

	cmd := &cobra.Command{
		Use:   "hlscapture",
		Short: "Capture HLS episodes announced by the browser extension",
		Long: `hlscapture receives stream manifests and subtitle tracks from a browser
extension, downloads each episode once into a Plex-style library and saves
the first English subtitle beside it.

Without --apply nothing is downloaded or written.`,
		Version:      version,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), runOptions{
				configFile: configFile,
				apply:      apply,
				flags:      cmd.Flags(),
			})
		},
	}

	cmd.Flags().StringVar(&configFile, "config", "", "path to a config file (default searches config.yaml in . and ./config)")
	cmd.Flags().BoolVar(&apply, "apply", false, "actually download and write files (default is a dry run)")
	cmd.Flags().Int("port", 9876, "HTTP port for the extension API")
	cmd.Flags().String("address", "127.0.0.1", "address to bind the extension API to")
	cmd.Flags().String("output-dir", "media/TV Shows", "library root for downloaded episodes")
	cmd.Flags().String("log-level", "info", "log level (trace, debug, info, warn, error)")

	return cmd
}
