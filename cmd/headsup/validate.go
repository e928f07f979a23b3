package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"headsup-hq/headsup/pkg/cli"
	"headsup-hq/headsup/pkg/config"
	"headsup-hq/headsup/pkg/engine"
)

var validateFlags struct {
	handshake bool
	noEngines bool
}

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the configuration",
	Long: `Load and validate the configuration file without starting the adapter.

The validate command checks:
  - Every configuration value, including environment overrides
  - That both engine executables exist
  - With --handshake, that both engines answer the UCI handshake and which
    configured options they do not declare

Examples:
  # Check the default configuration
  headsup validate

  # Check a configuration written for another machine
  headsup validate --config remote.yaml --no-engines

  # Start both engines and report their identity
  headsup validate --handshake`,
	Args: cobra.NoArgs,
	RunE: validateConfig,
}

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().BoolVar(&validateFlags.handshake, "handshake", false, "start both engines and run the UCI handshake")
	validateCmd.Flags().BoolVar(&validateFlags.noEngines, "no-engines", false, "skip checking the engine executables")
}

func validateConfig(cmd *cobra.Command, args []string) error {
	if err := config.LoadDotEnv(filepath.Join(filepath.Dir(cfgFile), ".env")); err != nil {
		return cli.NewConfigError(cfgFile, "failed to load .env", err)
	}
	cfg, err := config.LoadConfigWithEnvOverrides(cfgFile)
	if err != nil {
		return cli.NewConfigError(cfgFile, "invalid configuration", err)
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "✓ %s is valid\n", cfgFile)
	fmt.Fprintf(w, "  switch: piece_value=%d move_number=%d\n", cfg.Switch.PieceValue, cfg.Switch.MoveNumber)

	if validateFlags.noEngines {
		return nil
	}
	if err := config.CheckEngines(cfg); err != nil {
		return cli.NewConfigError(cfgFile, "engine check failed", err)
	}
	fmt.Fprintf(w, "✓ engine1: %s\n", cfg.Engines.Engine1.Path)
	fmt.Fprintf(w, "✓ engine2: %s\n", cfg.Engines.Engine2.Path)

	if !validateFlags.handshake {
		return nil
	}
	return handshakeEngines(cmd.Context(), cfg, w)
}

// handshakeEngines starts both engines, reports what they declare and shuts
// them down again.
func handshakeEngines(ctx context.Context, cfg *config.Config, w io.Writer) error {
	log := slog.New(slog.DiscardHandler)
	a, b, err := startEngines(ctx, cfg, nil, engine.NopObserver{}, log)
	if err != nil {
		return err
	}

	quitCtx, cancel := context.WithTimeout(context.Background(), cfg.Supervisor.QuitTimeout+time.Second)
	defer cancel()

	for _, s := range []*engine.Supervisor{a, b} {
		id := s.Identity()
		fmt.Fprintf(w, "✓ %s answers as %q by %q\n", s.Label(), id.Name, id.Author)

		var missing []string
		for name := range engineConfig(cfg, s.Label()).Options {
			if _, ok := id.LookupOption(name); !ok {
				missing = append(missing, name)
			}
		}
		if len(missing) > 0 {
			slices.Sort(missing)
			fmt.Fprintf(w, "  ! options not declared, will be skipped: %s\n", strings.Join(missing, ", "))
		}

		if err := s.Quit(quitCtx); err != nil {
			fmt.Fprintf(w, "  ! quit: %v\n", err)
		}
	}
	return nil
}

func engineConfig(cfg *config.Config, label string) config.EngineConfig {
	if label == "engine1" {
		return cfg.Engines.Engine1
	}
	return cfg.Engines.Engine2
}
