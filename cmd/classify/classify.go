// Package classify implements the classify command, a dry run of the
// keyword tables for a single transaction.
package classify

import (
	"fmt"
	"io"
	"strings"

	"fjacquet/ledger-import/cmd/root"
	"fjacquet/ledger-import/internal/categorizer"
	"fjacquet/ledger-import/internal/dateutils"
	"fjacquet/ledger-import/internal/fingerprint"
	"fjacquet/ledger-import/internal/models"

	"github.com/spf13/cobra"
)

var (
	narrative string
	amount    string
	date      string
)

// Cmd represents the classify command
var Cmd = &cobra.Command{
	Use:   "classify",
	Short: "Classify a single transaction without storing it",
	Long: `Classify a single transaction with the keyword tables and print the
matching category and transaction type. When a date is given (or found in the
narrative) the fingerprint the row would be stored under is printed as well.
The database is never opened.

Example:
  ledger-import classify --narrative "RIMI RIGA" --amount "-12,50" --date 12.03.2024`,
	RunE: classifyFunc,
}

func init() {
	Cmd.Flags().StringVarP(&narrative, "narrative", "n", "", "Transaction narrative as exported by the bank")
	Cmd.Flags().StringVarP(&amount, "amount", "a", "", "Signed transaction amount, e.g. -42,99")
	Cmd.Flags().StringVarP(&date, "date", "t", "", "Transaction date (DD.MM.YYYY)")
	_ = Cmd.MarkFlagRequired("narrative")
	_ = Cmd.MarkFlagRequired("amount")
}

func classifyFunc(cmd *cobra.Command, args []string) error {
	c, err := root.GetContainer()
	if err != nil {
		return err
	}
	return Classify(cmd.OutOrStdout(), c.GetCategorizer(), narrative, amount, date)
}

// Classify prints the classification of one transaction to out.
func Classify(out io.Writer, cat *categorizer.Categorizer, narrative, amount, date string) error {
	minor, err := models.ParseMinorUnits(amount)
	if err != nil {
		return err
	}
	txType := models.DetermineType(minor)

	result := cat.Classify(narrative, minor)
	_, _ = fmt.Fprintf(out, "Category: %s\n", result)
	if txType.IsValid() {
		_, _ = fmt.Fprintf(out, "Type: %s\n", txType)
	} else {
		_, _ = fmt.Fprintln(out, "Type: none (zero amount, row would not be stored)")
	}
	if !result.Found && txType.IsValid() {
		_, _ = fmt.Fprintf(out, "Valid categories: %s\n", strings.Join(cat.ValidCategories(minor), ", "))
	}

	narrativeDate := dateutils.ExtractNarrativeDate(narrative)
	if narrativeDate == "" && date == "" {
		return nil
	}
	effective, _, err := dateutils.EffectiveDate(narrativeDate, date)
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintf(out, "Date: %s\n", dateutils.ToISODate(effective))
	_, _ = fmt.Fprintf(out, "Fingerprint: %s\n", fingerprint.Generate(txType, effective, minor, narrative))
	return nil
}
