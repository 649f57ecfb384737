package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/hargabyte/salesreport/internal/config"
	"github.com/hargabyte/salesreport/internal/store"
)

// initCmd represents the init command
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write default config and initialize the database",
	Long: `Write a default reportgen.yaml, create the output directory and initialize
the sales database schema.

When storage.sample_data is enabled and the database is empty, a year of
sample sales data is generated.

Examples:
  reportgen init            # Initialize in current directory
  reportgen init --force    # Overwrite an existing config with defaults`,
	RunE: runInit,
}

var initForce bool

func init() {
	rootCmd.AddCommand(initCmd)
	initCmd.Flags().BoolVar(&initForce, "force", false, "Overwrite an existing config file with defaults")
}

// InitOutput is printed after initialization.
type InitOutput struct {
	Config          string `yaml:"config" json:"config"`
	ConfigCreated   bool   `yaml:"config_created" json:"config_created"`
	OutputDirectory string `yaml:"output_directory" json:"output_directory"`
	Backend         string `yaml:"backend" json:"backend"`
	Database        string `yaml:"database" json:"database"`
	SampleData      bool   `yaml:"sample_data_seeded" json:"sample_data_seeded"`
}

func runInit(cmd *cobra.Command, args []string) error {
	path := resolveConfigPath()
	out := InitOutput{Config: path}

	_, err := os.Stat(path)
	switch {
	case err == nil && initForce:
		if err := config.Save(config.DefaultConfig(), path); err != nil {
			return fmt.Errorf("writing config: %w", err)
		}
		out.ConfigCreated = true
	case os.IsNotExist(err):
		if err := config.SaveDefault(path); err != nil {
			return fmt.Errorf("writing config: %w", err)
		}
		out.ConfigCreated = true
	case err != nil:
		return fmt.Errorf("checking config path: %w", err)
	}

	cfg := loadConfig()

	if err := os.MkdirAll(cfg.OutputDirectory, 0755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}
	out.OutputDirectory = cfg.OutputDirectory

	s, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer s.Close()
	out.Backend = s.Backend()
	out.Database = s.Path()

	if cfg.Storage.SampleData {
		seeded, err := s.SeedIfEmpty(context.Background(), store.DefaultSeedOptions(cfg.Storage.Seed))
		if err != nil {
			return fmt.Errorf("seeding sample data: %w", err)
		}
		out.SampleData = seeded
	}

	return printResult(cmd, out)
}
