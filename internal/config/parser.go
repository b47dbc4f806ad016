// Package config provides configuration file parsing.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fgeck/gozip-backup/internal/models"
	"github.com/samber/lo"
	"github.com/spf13/afero"
	"github.com/spf13/viper"
)

// DefaultLogDir is used when logging.dir is not set.
const DefaultLogDir = "logs"

// Parser handles configuration file parsing.
type Parser struct {
	v *viper.Viper
}

// NewParser creates a new configuration parser.
func NewParser() *Parser {
	v := viper.New()
	v.SetConfigType("yaml")
	return &Parser{v: v}
}

// LoadFile loads configuration from a file path. JSON and TOML settings
// files are recognised by extension; anything else is read as YAML.
func (p *Parser) LoadFile(path string) (*models.BackupConfig, error) {
	p.v.SetConfigFile(path)
	p.v.SetConfigType(configType(path))

	if err := p.v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	return p.parse()
}

// LoadReader loads configuration from a reader (useful for testing).
func (p *Parser) LoadReader(content string) (*models.BackupConfig, error) {
	if err := p.v.ReadConfig(strings.NewReader(content)); err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	return p.parse()
}

func configType(path string) string {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	if lo.Contains(viper.SupportedExts, ext) {
		return ext
	}
	return "yaml"
}

func (p *Parser) parse() (*models.BackupConfig, error) {
	cfg := &models.BackupConfig{}

	// Parse paths (target required, sources optional).
	cfg.Paths = models.PathSettings{
		Sources: lo.Map(p.v.GetStringSlice("paths.sources"), func(s string, _ int) string {
			return p.expandEnv(s)
		}),
		Target: p.expandEnv(p.v.GetString("paths.target")),
	}

	if cfg.Paths.Target == "" {
		return nil, fmt.Errorf("paths.target is required")
	}

	// Parse logging settings.
	cfg.Logging = models.LoggingSettings{
		Dir: p.expandEnv(p.v.GetString("logging.dir")),
	}
	if cfg.Logging.Dir == "" {
		cfg.Logging.Dir = DefaultLogDir
	}

	return cfg, nil
}

// expandEnv expands environment variables in the format ${VAR} or $VAR.
func (p *Parser) expandEnv(s string) string {
	return os.ExpandEnv(s)
}

// Validate performs validation on the loaded configuration.
func Validate(cfg *models.BackupConfig) error {
	if cfg == nil {
		return fmt.Errorf("configuration is nil")
	}

	if cfg.Paths.Target == "" {
		return fmt.Errorf("paths.target is required")
	}

	for i, source := range cfg.Paths.Sources {
		if source == "" {
			return fmt.Errorf("paths.sources[%d] is empty", i)
		}
	}

	return nil
}

// CheckTarget reports an error unless target is an existing directory.
func CheckTarget(fs afero.Fs, target string) error {
	ok, err := afero.DirExists(fs, target)
	if err != nil {
		return fmt.Errorf("checking target %s: %w", target, err)
	}
	if !ok {
		return fmt.Errorf("target directory %s does not exist", target)
	}
	return nil
}
