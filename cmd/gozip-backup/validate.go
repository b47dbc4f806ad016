package main

import (
	"fmt"
	"os"

	"github.com/fgeck/gozip-backup/internal/config"
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate configuration file",
	Long:  `Validate the configuration file without creating an archive.`,
	RunE:  validateConfig,
}

func validateConfig(cmd *cobra.Command, args []string) error {
	if configFile == "" {
		log.Error().Msg("config file is required")
		return cmd.Help()
	}

	// Check if file exists
	if _, err := os.Stat(configFile); os.IsNotExist(err) {
		log.Error().Str("file", configFile).Msg("config file not found")
		return fmt.Errorf("config file not found: %s", configFile)
	}

	// Load configuration
	parser := config.NewParser()
	cfg, err := parser.LoadFile(configFile)
	if err != nil {
		log.Error().Err(err).Str("file", configFile).Msg("failed to parse config")
		return err
	}

	// Validate configuration
	if err := config.Validate(cfg); err != nil {
		log.Error().Err(err).Msg("configuration validation failed")
		return err
	}

	fs := afero.NewOsFs()

	// Print configuration summary
	fmt.Println("Configuration is valid!")
	fmt.Println()
	fmt.Println("Summary:")
	fmt.Printf("  Target: %s\n", cfg.Paths.Target)
	if err := config.CheckTarget(fs, cfg.Paths.Target); err != nil {
		fmt.Printf("  Warning: %v (the backup run will fail)\n", err)
	}
	fmt.Printf("  Log directory: %s\n", cfg.Logging.Dir)
	fmt.Println()
	fmt.Printf("Sources (%d):\n", len(cfg.Paths.Sources))
	for _, source := range cfg.Paths.Sources {
		ok, _ := afero.DirExists(fs, source)
		status := "ok"
		if !ok {
			status = "missing, will be skipped"
		}
		fmt.Printf("  %s (%s)\n", source, status)
	}

	return nil
}
