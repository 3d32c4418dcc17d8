// =============================================================================
// whalewatch - Analyze Command
// =============================================================================
//
// COMMAND USAGE:
//   whalewatch analyze [--xlsx report.xlsx]
//
// Looks up the first 5 whales of the output file and prints their outputs.
// Without a reachable node (or with simulation enabled) the built-in
// simulator answers the lookups.
//
// =============================================================================

package cmd

import (
	"fmt"

	"github.com/ginjaninja78/whalewatch/internal/analysis"
	"github.com/ginjaninja78/whalewatch/internal/logger"
	"github.com/ginjaninja78/whalewatch/internal/rpcclient"
	"github.com/ginjaninja78/whalewatch/internal/xlsxreport"
	"github.com/spf13/cobra"
)

// xlsxPath is where the workbook is written. Empty means no workbook.
var xlsxPath string

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Look up the first whales of the output file",
	Long: `The analyze command reads the first 5 transactions of the output file,
looks each one up and prints its total output value, number of outputs and
every output's address and value.

Lookups go to the Bitcoin Core node configured under rpc unless simulation is
enabled or the node cannot be reached, in which case synthetic transactions
are used.`,

	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		cfg := env.cfg

		lookup := newLookup(cmd)
		analyzer := analysis.New(lookup, cmd.OutOrStdout())

		report, err := analyzer.Run(ctx, cfg.OutputPath())
		if err != nil {
			return err
		}

		if xlsxPath != "" {
			if err := xlsxreport.Write(xlsxPath, report); err != nil {
				return fmt.Errorf("failed to write workbook: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Workbook written to %s\n", xlsxPath)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(analyzeCmd)

	analyzeCmd.Flags().StringVar(
		&xlsxPath,
		"xlsx",
		"",
		"Also write the sampled transactions to this Excel workbook",
	)
}

// newLookup builds the lookup client for the loaded configuration.
func newLookup(cmd *cobra.Command) rpcclient.Lookup {
	cfg := env.cfg
	return rpcclient.New(cmd.Context(), rpcclient.Options{
		Simulation: cfg.SimulationMode(),
		Live: rpcclient.LiveConfig{
			URL:      cfg.RPCURL(),
			User:     cfg.RPC.User,
			Password: cfg.RPC.Password,
			Timeout:  cfg.RPC.Timeout,
		},
		Log: logger.FromContext(cmd.Context()),
	})
}
