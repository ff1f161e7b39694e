// Package banks lists the supported statement formats
package banks

import (
	"fmt"

	"fjacquet/finance-analyzer/cmd/root"
	"fjacquet/finance-analyzer/internal/factory"

	"github.com/spf13/cobra"
)

// Cmd represents the banks command
var Cmd = &cobra.Command{
	Use:   "banks",
	Short: "List supported bank formats in detection order",
	Run: func(cmd *cobra.Command, args []string) {
		for _, bank := range factory.DefaultRegistry(root.Logger()).SupportedBanks() {
			fmt.Fprintln(cmd.OutOrStdout(), bank)
		}
	},
}
