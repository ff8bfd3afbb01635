package cmd

import (
	"fmt"
	"os"

	"myArtMarket/internal/repository/catalogfile"
	psqlRepo "myArtMarket/internal/repository/postgres"
	"myArtMarket/pkg/database"

	"github.com/spf13/cobra"
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Work with YAML catalog files",
}

var catalogValidateCmd = &cobra.Command{
	Use:   "validate <file>",
	Short: "Parse a catalog file and report how many artworks it holds",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		raw, err := os.ReadFile(args[0])
		if err != nil {
			return err
		}
		items, err := catalogfile.Parse(raw)
		if err != nil {
			return err
		}
		available := 0
		for _, a := range items {
			if a.IsAvailable {
				available++
			}
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%d artworks, %d available\n", len(items), available)
		return nil
	},
}

var catalogImportCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Upsert a catalog file into the artworks table",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		raw, err := os.ReadFile(args[0])
		if err != nil {
			return err
		}
		items, err := catalogfile.Parse(raw)
		if err != nil {
			return err
		}

		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		db, err := database.InitPostgres(cfg)
		if err != nil {
			return err
		}
		if sqlDB, err := db.DB(); err == nil {
			defer sqlDB.Close()
		}
		if err := psqlRepo.AutoMigrate(db); err != nil {
			return err
		}

		repo := psqlRepo.NewArtworkRepository(db, 0)
		if err := repo.Upsert(cmd.Context(), items); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "imported %d artworks\n", len(items))
		return nil
	},
}

func init() {
	catalogCmd.AddCommand(catalogValidateCmd)
	catalogCmd.AddCommand(catalogImportCmd)
}
