package main

import (
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/icp-screener/internal/importer"
)

var importFile string

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import companies from a prospect CSV",
	Long: "Parses a CSV of company names and websites and queues each company for\n" +
		"screening. Companies already screened are left untouched, so re-importing\n" +
		"the same file is safe.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := openStoreOnly(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		f, err := os.Open(importFile)
		if err != nil {
			return eris.Wrapf(err, "open %s", importFile)
		}
		defer f.Close()

		result, err := importer.New(st).Import(ctx, f)
		if err != nil {
			return err
		}
		return printJSON(result)
	},
}

var exportOut string

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export screening results as CSV",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := openStoreOnly(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		out := os.Stdout
		if exportOut != "" && exportOut != "-" {
			f, err := os.Create(exportOut)
			if err != nil {
				return eris.Wrapf(err, "create %s", exportOut)
			}
			defer f.Close()
			out = f
		}
		return importer.ExportCSV(ctx, st, out)
	},
}

func init() {
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(exportCmd)

	importCmd.Flags().StringVar(&importFile, "file", "", "path to the CSV file")
	_ = importCmd.MarkFlagRequired("file")

	exportCmd.Flags().StringVar(&exportOut, "out", "-", "output path (- for stdout)")
}
