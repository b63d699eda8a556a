package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/rentfolio/go-rental-management/shared/config"
	"github.com/rentfolio/go-rental-management/shared/models"
)

func main() {
	_ = godotenv.Load()

	rootCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Rental management schema migration tool",
	}

	rootCmd.AddCommand(upCmd(), statusCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func upCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "up",
		Short: "Apply the schema for all registered models",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := config.ConnectDatabase()
			if err != nil {
				return err
			}
			if err := db.AutoMigrate(models.All()...); err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}
			fmt.Printf("migrated %d models\n", len(models.All()))
			return nil
		},
	}
}

func statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show which model tables exist",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := config.ConnectDatabase()
			if err != nil {
				return err
			}
			migrator := db.Migrator()
			for _, model := range models.All() {
				state := "missing"
				if migrator.HasTable(model) {
					state = "ok"
				}
				name := "?"
				if t, ok := model.(interface{ TableName() string }); ok {
					name = t.TableName()
				}
				fmt.Printf("%-20s %s\n", name, state)
			}
			return nil
		},
	}
}
