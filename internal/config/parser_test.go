package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/fgeck/gozip-backup/internal/models"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParser_LoadReader_MinimalConfig(t *testing.T) {
	yaml := `
paths:
  target: /backups
`
	parser := NewParser()
	cfg, err := parser.LoadReader(yaml)

	require.NoError(t, err)
	assert.Equal(t, "/backups", cfg.Paths.Target)
	assert.Empty(t, cfg.Paths.Sources)
	// Check defaults
	assert.Equal(t, DefaultLogDir, cfg.Logging.Dir)
}

func TestParser_LoadReader_FullConfig(t *testing.T) {
	yaml := `
paths:
  sources:
    - /home/user/documents
    - /home/user/pictures
    - /does/not/exist
  target: /mnt/backups

logging:
  dir: /var/log/gozip-backup
`
	parser := NewParser()
	cfg, err := parser.LoadReader(yaml)

	require.NoError(t, err)
	assert.Equal(t, []string{"/home/user/documents", "/home/user/pictures", "/does/not/exist"}, cfg.Paths.Sources)
	assert.Equal(t, "/mnt/backups", cfg.Paths.Target)
	assert.Equal(t, "/var/log/gozip-backup", cfg.Logging.Dir)
}

func TestParser_LoadReader_EnvVarExpansion(t *testing.T) {
	t.Setenv("TEST_BACKUP_ROOT", "/srv")
	t.Setenv("TEST_BACKUP_TARGET", "/mnt/nas")

	yaml := `
paths:
  sources:
    - "${TEST_BACKUP_ROOT}/data"
  target: "$TEST_BACKUP_TARGET"
`
	parser := NewParser()
	cfg, err := parser.LoadReader(yaml)

	require.NoError(t, err)
	assert.Equal(t, []string{"/srv/data"}, cfg.Paths.Sources)
	assert.Equal(t, "/mnt/nas", cfg.Paths.Target)
}

func TestParser_LoadReader_MissingTarget(t *testing.T) {
	yaml := `
paths:
  sources:
    - /data
`
	parser := NewParser()
	_, err := parser.LoadReader(yaml)

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "paths.target is required")
}

func TestParser_LoadReader_InvalidYAML(t *testing.T) {
	parser := NewParser()
	_, err := parser.LoadReader("paths: [unclosed")

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "reading config")
}

func TestParser_LoadFile_YAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("paths:\n  sources: [/a, /b]\n  target: /t\n"), 0o600))

	cfg, err := NewParser().LoadFile(path)

	require.NoError(t, err)
	assert.Equal(t, []string{"/a", "/b"}, cfg.Paths.Sources)
	assert.Equal(t, "/t", cfg.Paths.Target)
}

func TestParser_LoadFile_AppSettingsJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "appsettings.json")
	content := `{
  "Paths": {
    "Sources": ["C:/Work", "C:/Photos"],
    "Target": "D:/Backups"
  }
}`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := NewParser().LoadFile(path)

	require.NoError(t, err)
	assert.Equal(t, []string{"C:/Work", "C:/Photos"}, cfg.Paths.Sources)
	assert.Equal(t, "D:/Backups", cfg.Paths.Target)
}

func TestParser_LoadFile_NotFound(t *testing.T) {
	_, err := NewParser().LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "reading config file")
}

func TestConfigType(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"config.yaml", "yaml"},
		{"config.yml", "yml"},
		{"appsettings.json", "json"},
		{"settings.TOML", "toml"},
		{"config", "yaml"},
		{"config.conf", "yaml"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, configType(tt.path))
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     *models.BackupConfig
		wantErr bool
		errMsg  string
	}{
		{
			name:    "nil config",
			cfg:     nil,
			wantErr: true,
			errMsg:  "configuration is nil",
		},
		{
			name: "missing target",
			cfg: &models.BackupConfig{
				Paths: models.PathSettings{Sources: []string{"/data"}},
			},
			wantErr: true,
			errMsg:  "paths.target is required",
		},
		{
			name: "empty source entry",
			cfg: &models.BackupConfig{
				Paths: models.PathSettings{Sources: []string{"/data", ""}, Target: "/backups"},
			},
			wantErr: true,
			errMsg:  "paths.sources[1] is empty",
		},
		{
			name: "no sources",
			cfg: &models.BackupConfig{
				Paths: models.PathSettings{Target: "/backups"},
			},
			wantErr: false,
		},
		{
			name: "valid config",
			cfg: &models.BackupConfig{
				Paths: models.PathSettings{Sources: []string{"/data"}, Target: "/backups"},
			},
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.cfg)
			if tt.wantErr {
				assert.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestCheckTarget(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, fs.MkdirAll("/backups", 0o755))
	require.NoError(t, afero.WriteFile(fs, "/file", []byte("x"), 0o644))

	assert.NoError(t, CheckTarget(fs, "/backups"))

	err := CheckTarget(fs, "/missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does not exist")

	err = CheckTarget(fs, "/file")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does not exist")
}
