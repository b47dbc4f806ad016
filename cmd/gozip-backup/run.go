package main

import (
	"bytes"
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fgeck/gozip-backup/internal/config"
	"github.com/fgeck/gozip-backup/internal/models"
	"github.com/fgeck/gozip-backup/internal/services/archiver"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

// timestampLayout names the archive and log file of a run.
const timestampLayout = "20060102150405"

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Execute the backup",
	Long: `Execute the backup:
1. Create <target>/Backup_<timestamp>.zip
2. Add the top-level files of each source directory
3. Finalize the archive and report the result

Every line is also written to <logging.dir>/log_<timestamp>.txt.`,
	RunE: runBackup,
}

func runBackup(cmd *cobra.Command, args []string) error {
	if configFile == "" {
		log.Error().Msg("config file is required")
		return cmd.Help()
	}

	timestamp := time.Now().Format(timestampLayout)

	// Buffer log lines until the log directory is known so config errors
	// still reach log_<timestamp>.txt.
	pending := &bytes.Buffer{}
	setupLogging(pending)

	cfg, cfgErr := loadConfig()

	logDir := config.DefaultLogDir
	if cfg != nil {
		logDir = cfg.Logging.Dir
	}

	logFile, err := attachLogFile(afero.NewOsFs(), logDir, timestamp, pending)
	if err != nil {
		setupLogging()
		log.Warn().Err(err).Str("dir", logDir).Msg("continuing without log file")
	} else {
		defer func() { _ = logFile.Close() }()
		setupLogging(logFile)
	}

	if cfgErr != nil {
		return cfgErr
	}

	log.Info().
		Str("config", configFile).
		Strs("sources", cfg.Paths.Sources).
		Str("target", cfg.Paths.Target).
		Str("timestamp", timestamp).
		Msg("configuration loaded")

	// Set up context with signal handling
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	go func() {
		select {
		case sig := <-sigChan:
			log.Warn().Str("signal", sig.String()).Msg("received signal, finishing archive")
			cancel()
		case <-ctx.Done():
		}
	}()

	return executeBackup(ctx, archiver.New(cfg.Paths, log.Logger), timestamp, log.Logger)
}

// loadConfig reads and validates configFile, logging any failure.
func loadConfig() (*models.BackupConfig, error) {
	parser := config.NewParser()
	cfg, err := parser.LoadFile(configFile)
	if err != nil {
		log.Error().Err(err).Str("file", configFile).Msg("failed to load config")
		return nil, err
	}

	if err := config.Validate(cfg); err != nil {
		log.Error().Err(err).Msg("invalid configuration")
		return nil, err
	}

	return cfg, nil
}

// executeBackup runs the archiver and logs the summary. Failures are already
// logged by the archiver, so they are only returned here.
func executeBackup(ctx context.Context, svc archiver.Service, timestamp string, logger zerolog.Logger) error {
	result, err := svc.Run(ctx, timestamp)
	if err != nil {
		return err
	}

	logger.Info().
		Str("archive", result.ArchivePath).
		Int("entries", result.EntriesWritten).
		Int("files_failed", result.FilesFailed).
		Int("partial_entries", result.PartialEntries).
		Int("directories_failed", result.DirectoriesFailed).
		Dur("duration", result.Duration).
		Msg("backup completed successfully")
	return nil
}
