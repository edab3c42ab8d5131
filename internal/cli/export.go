package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"ledgerbot/internal/export"
)

var exportOut string

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write clients and orders to an xlsx report",
	RunE:  runExport,
}

func init() {
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "report.xlsx", "output file")
	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
	a, err := loadApp(false)
	if err != nil {
		return err
	}
	defer a.close()

	f, err := os.Create(exportOut)
	if err != nil {
		return fmt.Errorf("create %s: %w", exportOut, err)
	}
	if err := export.WriteWorkbook(cmd.Context(), f, export.Source{Clients: a.clients, Orders: a.orders}); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	a.logger.WithField("file", exportOut).Info("report written")
	cmd.Printf("Report written to %s\n", exportOut)
	return nil
}
