package cli

import (
	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update database tables",
	RunE: func(cmd *cobra.Command, args []string) error {
		// loadApp уже мигрирует схему при открытии хранилища
		a, err := loadApp(false)
		if err != nil {
			return err
		}
		defer a.close()
		a.logger.WithField("driver", a.cfg.Storage.Driver).Info("schema is up to date")
		cmd.Println("Schema is up to date")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
