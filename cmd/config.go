// =============================================================================
// whalewatch - Config Command
// =============================================================================
//
// COMMAND USAGE:
//   whalewatch config [--defaults]
//
// Prints the effective configuration as YAML, after the config file, .env,
// environment variables and flags have been applied. The RPC password is
// masked. With --defaults the built-in values are printed instead, which is
// a convenient starting point for a new config.yaml.
//
// =============================================================================

package cmd

import (
	"fmt"

	"github.com/ginjaninja78/whalewatch/internal/config"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var showDefaults bool

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the effective configuration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := env.cfg
		if showDefaults {
			cfg = config.Default()
		}
		data, err := yaml.Marshal(cfg.Masked())
		if err != nil {
			return fmt.Errorf("failed to encode configuration: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "# output file: %s\n", cfg.OutputPath())
		_, err = cmd.OutOrStdout().Write(data)
		return err
	},
}

func init() {
	configCmd.Flags().BoolVar(&showDefaults, "defaults", false, "print the built-in defaults instead of the effective configuration")
	rootCmd.AddCommand(configCmd)
}
