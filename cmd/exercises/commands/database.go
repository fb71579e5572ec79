package commands

import (
	"fmt"
	"os"
	"strings"

	"dentalscrape/lib/cliutil"
	"dentalscrape/services/analytics"
	"dentalscrape/services/analytics/db"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var databaseExercise *string

func init() {
	databaseExercise = databaseCmd.Flags().String("exercise", "", "Exercise to run (1-4).")
	databaseCmd.MarkFlagRequired("exercise")
	rootCmd.AddCommand(databaseCmd)
}

var databaseCmd = &cobra.Command{
	Use:   "database --exercise <1-4>",
	Short: "Runs one of the four analytics queries against the reference store.",
	Run: func(cmd *cobra.Command, args []string) {
		cfg := loadConfig()

		store, err := db.Open(cfg.StorePath)
		if err != nil {
			cliutil.Fatal("failed to open store", err)
		}
		defer store.Close()
		service := analytics.NewService(store)

		ctx := cmd.Context()
		switch normalizeExercise(*databaseExercise) {
		case "1":
			rows, err := service.CategoryTree(ctx)
			if err != nil {
				cliutil.Fatal("exercise 1 failed", err)
			}
			t := newTable(table.Row{"n1", "n2", "n3"})
			for _, row := range rows {
				t.AppendRow(table.Row{row.N1, nullable(row.N2), nullable(row.N3)})
			}
			t.Render()
		case "2":
			rows, err := service.CategoryProductCounts(ctx)
			if err != nil {
				cliutil.Fatal("exercise 2 failed", err)
			}
			t := newTable(table.Row{"category", "products"})
			for _, row := range rows {
				t.AppendRow(table.Row{row.Category, row.Products})
			}
			t.Render()
		case "3":
			rows, err := service.TopOrders(ctx)
			if err != nil {
				cliutil.Fatal("exercise 3 failed", err)
			}
			t := newTable(table.Row{"id", "employee", "sub_total", "tax", "total"})
			for _, row := range rows {
				t.AppendRow(table.Row{row.ID, row.Employee, row.SubTotal, row.Tax, row.Total})
			}
			t.Render()
		case "4":
			rows, err := service.CompanyRevenue2022(ctx)
			if err != nil {
				cliutil.Fatal("exercise 4 failed", err)
			}
			t := newTable(table.Row{"company", "total"})
			for _, row := range rows {
				t.AppendRow(table.Row{row.Company, row.Total})
			}
			t.Render()
		default:
			cliutil.Fatal("unknown exercise", fmt.Errorf("unknown exercise: %q", *databaseExercise))
		}
	},
}

// normalizeExercise canonicalizes the --exercise value so that "01" and
// " 1 " select exercise 1. Values that do not name an exercise, "0"
// included, come back in a form the dispatch switch will not match.
func normalizeExercise(raw string) string {
	return strings.TrimLeft(strings.TrimSpace(raw), "0")
}

func newTable(header table.Row) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.AppendHeader(header)
	t.SetStyle(table.StyleRounded)
	return t
}

func nullable(s *string) any {
	if s == nil {
		return "<null>"
	}
	return *s
}
