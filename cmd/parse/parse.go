// Package parse converts a bank statement CSV without touching the database
package parse

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"fjacquet/finance-analyzer/cmd/root"
	"fjacquet/finance-analyzer/internal/common"
	"fjacquet/finance-analyzer/internal/factory"
	"fjacquet/finance-analyzer/internal/logging"

	"github.com/spf13/cobra"
)

var (
	input  string
	output string
)

// Cmd represents the parse command
var Cmd = &cobra.Command{
	Use:   "parse",
	Short: "Detect the bank format of a statement and print its transactions",
	Long: `Detect the bank format of a statement CSV and print the parsed transactions.
With --output the transactions are written as CSV instead.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := root.LoadConfig()
		if err != nil {
			return err
		}
		common.SetDelimiter(cfg.Delimiter())
		logger := root.Logger()
		return Run(factory.DefaultRegistry(logger), input, output, cmd.OutOrStdout(), logger)
	},
}

func init() {
	Cmd.Flags().StringVarP(&input, "input", "i", "", "Statement CSV file")
	Cmd.Flags().StringVarP(&output, "output", "o", "", "Write transactions to this CSV file")
	_ = Cmd.MarkFlagRequired("input")
}

// Run parses inputFile with registry. Transactions go to outputFile when set,
// otherwise a table is printed to w.
func Run(registry *factory.Registry, inputFile, outputFile string, w io.Writer, logger logging.Logger) error {
	content, err := os.ReadFile(inputFile) // #nosec G304 -- path chosen by the CLI user
	if err != nil {
		return fmt.Errorf("error reading input file: %w", err)
	}

	result, err := registry.Parse(string(content))
	if err != nil {
		return err
	}
	logger.Info("Parsed statement",
		logging.F(logging.FieldInputFile, inputFile),
		logging.F(logging.FieldBank, result.Bank),
		logging.F(logging.FieldCount, len(result.Transactions)))

	if outputFile != "" {
		return common.WriteTransactionsToCSV(common.ParsedToTransactions(result.Transactions), outputFile, logger)
	}

	fmt.Fprintf(w, "Bank: %s\nTransactions: %d\n\n", result.Bank, len(result.Transactions))
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "DATE\tTYPE\tAMOUNT\tMERCHANT\tDESCRIPTION")
	for _, tx := range result.Transactions {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", tx.Date, tx.Type, tx.Amount.StringFixed(2), tx.Merchant, tx.Description)
	}
	return tw.Flush()
}
