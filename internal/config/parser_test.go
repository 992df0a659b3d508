package config

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/veidtlabs/restic-backup/internal/models"
)

func TestParser_LoadReader_MinimalConfig(t *testing.T) {
	yaml := `
backup:
  directories:
    - /data
`
	parser := NewParser()
	cfg, err := parser.LoadReader(yaml)

	require.NoError(t, err)
	assert.Equal(t, []string{"/data"}, cfg.Backup.Directories)
	// Check defaults
	assert.Equal(t, "/usr/bin/restic", cfg.ResticPath)
	assert.True(t, cfg.Backup.OneFileSystem)
	assert.Nil(t, cfg.Forget)
	assert.False(t, cfg.ForgetEnabled())
	assert.Nil(t, cfg.Email)
	assert.False(t, cfg.EmailEnabled())
}

func TestParser_LoadReader_FullConfig(t *testing.T) {
	yaml := `
restic_path: /opt/restic/restic
logfile: /var/log/restic-backup.log

backup:
  directories:
    - /data
    - /home
  one_file_system: false
  exclude:
    - "*.tmp"
    - "*.cache"
  exclude_file: /etc/restic/excludes

forget:
  keep:
    daily: 7
    weekly: 4
    monthly: 6

email:
  to: admin@example.com
  from: backup@example.com
  on_success: false
  smtp_host: mail.example.com
  smtp_port: 465
  username: backup
  password: hunter2

telegram:
  bot_token: "123456:ABC"
  chat_id: "-100123456789"

wol:
  mac_address: "AA:BB:CC:DD:EE:FF"
  broadcast_ip: "192.168.1.255"
  wait: 90s

ssh_shutdown:
  host: 192.168.1.100
  port: 2222
  username: admin
  key_path: /home/user/.ssh/id_rsa
  delay: 5
`
	parser := NewParser()
	cfg, err := parser.LoadReader(yaml)

	require.NoError(t, err)

	assert.Equal(t, "/opt/restic/restic", cfg.ResticPath)
	assert.Equal(t, "/var/log/restic-backup.log", cfg.Logfile)

	// Backup settings
	assert.Equal(t, []string{"/data", "/home"}, cfg.Backup.Directories)
	assert.False(t, cfg.Backup.OneFileSystem)
	assert.Equal(t, []string{"*.tmp", "*.cache"}, cfg.Backup.Exclude)
	assert.Equal(t, "/etc/restic/excludes", cfg.Backup.ExcludeFile)

	// Forget
	require.NotNil(t, cfg.Forget)
	assert.True(t, cfg.ForgetEnabled())
	assert.Equal(t, models.RetentionPolicy{
		{Unit: "daily", Count: 7},
		{Unit: "weekly", Count: 4},
		{Unit: "monthly", Count: 6},
	}, cfg.Forget.Keep)

	// Email
	require.NotNil(t, cfg.Email)
	assert.True(t, cfg.EmailEnabled())
	assert.Equal(t, "admin@example.com", cfg.Email.To)
	assert.Equal(t, "backup@example.com", cfg.Email.From)
	assert.False(t, cfg.Email.OnSuccess)
	assert.True(t, cfg.Email.OnFailure)
	assert.Equal(t, "mail.example.com", cfg.Email.SMTPHost)
	assert.Equal(t, 465, cfg.Email.SMTPPort)
	assert.Equal(t, "backup", cfg.Email.Username)
	assert.Equal(t, "hunter2", cfg.Email.Password)

	// Telegram
	require.NotNil(t, cfg.Telegram)
	assert.Equal(t, "123456:ABC", cfg.Telegram.BotToken)
	assert.Equal(t, "-100123456789", cfg.Telegram.ChatID)

	// WOL
	require.NotNil(t, cfg.WOL)
	assert.Equal(t, "AA:BB:CC:DD:EE:FF", cfg.WOL.MACAddress)
	assert.Equal(t, "192.168.1.255", cfg.WOL.BroadcastIP)
	assert.Equal(t, 90*time.Second, cfg.WOL.Wait)

	// SSH shutdown
	require.NotNil(t, cfg.SSHShutdown)
	assert.Equal(t, "192.168.1.100", cfg.SSHShutdown.Host)
	assert.Equal(t, 2222, cfg.SSHShutdown.Port)
	assert.Equal(t, "admin", cfg.SSHShutdown.Username)
	assert.Equal(t, "/home/user/.ssh/id_rsa", cfg.SSHShutdown.KeyPath)
	assert.Equal(t, 5, cfg.SSHShutdown.Delay)
}

func TestParser_LoadReader_MissingBackup(t *testing.T) {
	yaml := `
restic_path: /usr/bin/restic
`
	parser := NewParser()
	_, err := parser.LoadReader(yaml)

	require.Error(t, err)
	var cfgErr *models.ConfigError
	require.True(t, errors.As(err, &cfgErr))
	assert.Equal(t, "backup", cfgErr.Key)
}

func TestParser_LoadReader_MissingDirectories(t *testing.T) {
	yaml := `
backup:
  one_file_system: true
`
	parser := NewParser()
	_, err := parser.LoadReader(yaml)

	require.Error(t, err)
	var cfgErr *models.ConfigError
	require.True(t, errors.As(err, &cfgErr))
	assert.Equal(t, "directories", cfgErr.Key)
}

func TestParser_LoadReader_ForgetEnabledWithoutKeep(t *testing.T) {
	yaml := `
backup:
  directories:
    - /data
forget:
  enabled: true
`
	parser := NewParser()
	_, err := parser.LoadReader(yaml)

	require.Error(t, err)
	var cfgErr *models.ConfigError
	require.True(t, errors.As(err, &cfgErr))
	assert.Equal(t, "keep", cfgErr.Key)
}

func TestParser_LoadReader_ForgetDisabledWithoutKeep(t *testing.T) {
	yaml := `
backup:
  directories:
    - /data
forget:
  enabled: false
`
	parser := NewParser()
	cfg, err := parser.LoadReader(yaml)

	require.NoError(t, err)
	require.NotNil(t, cfg.Forget)
	assert.False(t, cfg.ForgetEnabled())
	assert.Empty(t, cfg.Forget.Keep)
}

func TestParser_LoadReader_KeepCanonicalOrder(t *testing.T) {
	// Declared out of time order plus an unknown unit; the policy must come
	// back as known units in time order, unknown units last.
	yaml := `
backup:
  directories:
    - /data
forget:
  keep:
    weekly: 4
    zz_custom: 1
    hourly: 24
    daily: 7
`
	parser := NewParser()
	cfg, err := parser.LoadReader(yaml)

	require.NoError(t, err)
	require.NotNil(t, cfg.Forget)
	assert.Equal(t, models.RetentionPolicy{
		{Unit: "hourly", Count: 24},
		{Unit: "daily", Count: 7},
		{Unit: "weekly", Count: 4},
		{Unit: "zz_custom", Count: 1},
	}, cfg.Forget.Keep)
}

func TestParser_LoadReader_EmailDisabled(t *testing.T) {
	yaml := `
backup:
  directories:
    - /data
email:
  enabled: false
  to: admin@example.com
  from: backup@example.com
`
	parser := NewParser()
	cfg, err := parser.LoadReader(yaml)

	require.NoError(t, err)
	require.NotNil(t, cfg.Email)
	assert.False(t, cfg.EmailEnabled())
}

func TestParser_LoadReader_EnvVarExpansion(t *testing.T) {
	t.Setenv("TEST_SMTP_PASSWORD", "env_secret")

	yaml := `
backup:
  directories:
    - /data
email:
  to: admin@example.com
  from: backup@example.com
  smtp_host: mail.example.com
  password: ${TEST_SMTP_PASSWORD}
`
	parser := NewParser()
	cfg, err := parser.LoadReader(yaml)

	require.NoError(t, err)
	require.NotNil(t, cfg.Email)
	assert.Equal(t, "env_secret", cfg.Email.Password)
}

func TestParser_LoadFile_NotFound(t *testing.T) {
	parser := NewParser()
	_, err := parser.LoadFile("/nonexistent/config.yaml")

	assert.Error(t, err)
}

func TestResolvePath(t *testing.T) {
	t.Setenv(EnvConfigPath, "")

	assert.Equal(t, "/etc/flag.yaml", ResolvePath("/etc/flag.yaml"))
	assert.Equal(t, DefaultConfigPath, ResolvePath(""))

	t.Setenv(EnvConfigPath, "/etc/env.yaml")
	assert.Equal(t, "/etc/env.yaml", ResolvePath(""))
	assert.Equal(t, "/etc/flag.yaml", ResolvePath("/etc/flag.yaml"))
}
