// Package config provides configuration file parsing.
package config

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/spf13/viper"
	"github.com/veidtlabs/restic-backup/internal/models"
)

const (
	// EnvConfigPath overrides the configuration file location.
	EnvConfigPath = "RESTIC_BACKUP_CONF"

	// DefaultConfigPath is used when no flag or environment override is set.
	DefaultConfigPath = "restic-backup-config.yaml"

	defaultResticPath = "/usr/bin/restic"
)

// keepUnitOrder is the canonical ordering for retention units. YAML mappings
// lose document order on the way through the loader, so the policy is
// normalized into this order; unknown units follow alphabetically.
var keepUnitOrder = []string{"last", "hourly", "daily", "weekly", "monthly", "yearly"}

// ResolvePath returns the configuration file path: explicit flag value if
// set, then the environment override, then the default.
func ResolvePath(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if env := os.Getenv(EnvConfigPath); env != "" {
		return env
	}
	return DefaultConfigPath
}

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

// LoadFile loads configuration from a file path.
func (p *Parser) LoadFile(path string) (*models.Config, error) {
	p.v.SetConfigFile(path)

	if err := p.v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	return p.parse()
}

// LoadReader loads configuration from a string (useful for testing).
func (p *Parser) LoadReader(content string) (*models.Config, error) {
	if err := p.v.ReadConfig(strings.NewReader(content)); err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	return p.parse()
}

func (p *Parser) parse() (*models.Config, error) {
	cfg := &models.Config{}

	cfg.ResticPath = p.v.GetString("restic_path")
	if cfg.ResticPath == "" {
		cfg.ResticPath = defaultResticPath
	}
	cfg.Logfile = os.ExpandEnv(p.v.GetString("logfile"))

	// Parse backup settings (required).
	if !p.v.IsSet("backup") {
		return nil, &models.ConfigError{Key: "backup"}
	}

	p.v.SetDefault("backup.one_file_system", true)
	cfg.Backup = models.BackupSettings{
		Directories:   p.v.GetStringSlice("backup.directories"),
		OneFileSystem: p.v.GetBool("backup.one_file_system"),
		Exclude:       p.v.GetStringSlice("backup.exclude"),
		ExcludeFile:   os.ExpandEnv(p.v.GetString("backup.exclude_file")),
	}

	if len(cfg.Backup.Directories) == 0 {
		return nil, &models.ConfigError{Key: "directories"}
	}

	// Parse optional forget settings. The prune stage runs iff the section
	// exists and is not explicitly disabled, and then requires a policy.
	if p.v.IsSet("forget") {
		p.v.SetDefault("forget.enabled", true)
		forget := &models.ForgetSettings{
			Enabled: p.v.GetBool("forget.enabled"),
		}

		if forget.Enabled {
			keep := p.parseKeep()
			if len(keep) == 0 {
				return nil, &models.ConfigError{Key: "keep"}
			}
			forget.Keep = keep
		}

		cfg.Forget = forget
	}

	// Parse optional email settings. Recipient and sender are checked at
	// dispatch time, not here; only the shape is loaded.
	if p.v.IsSet("email") {
		p.v.SetDefault("email.enabled", true)
		p.v.SetDefault("email.on_success", true)
		p.v.SetDefault("email.on_failure", true)
		p.v.SetDefault("email.smtp_port", 587)

		cfg.Email = &models.EmailConfig{
			Enabled:   p.v.GetBool("email.enabled"),
			To:        p.v.GetString("email.to"),
			From:      p.v.GetString("email.from"),
			OnSuccess: p.v.GetBool("email.on_success"),
			OnFailure: p.v.GetBool("email.on_failure"),
			SMTPHost:  p.v.GetString("email.smtp_host"),
			SMTPPort:  p.v.GetInt("email.smtp_port"),
			Username:  os.ExpandEnv(p.v.GetString("email.username")),
			Password:  os.ExpandEnv(p.v.GetString("email.password")),
		}
	}

	// Parse optional Telegram settings.
	if p.v.IsSet("telegram") {
		cfg.Telegram = &models.TelegramConfig{
			BotToken: os.ExpandEnv(p.v.GetString("telegram.bot_token")),
			ChatID:   os.ExpandEnv(p.v.GetString("telegram.chat_id")),
		}

		if cfg.Telegram.BotToken == "" {
			return nil, &models.ConfigError{Key: "telegram.bot_token"}
		}
		if cfg.Telegram.ChatID == "" {
			return nil, &models.ConfigError{Key: "telegram.chat_id"}
		}
	}

	// Parse optional Wake-on-LAN settings.
	if p.v.IsSet("wol") {
		cfg.WOL = &models.WOLConfig{
			MACAddress:  p.v.GetString("wol.mac_address"),
			BroadcastIP: p.v.GetString("wol.broadcast_ip"),
			Wait:        p.v.GetDuration("wol.wait"),
		}

		if cfg.WOL.MACAddress == "" {
			return nil, &models.ConfigError{Key: "wol.mac_address"}
		}
		if cfg.WOL.BroadcastIP == "" {
			cfg.WOL.BroadcastIP = "255.255.255.255"
		}
	}

	// Parse optional SSH shutdown settings.
	if p.v.IsSet("ssh_shutdown") {
		cfg.SSHShutdown = &models.SSHShutdownConfig{
			Host:     p.v.GetString("ssh_shutdown.host"),
			Port:     p.v.GetInt("ssh_shutdown.port"),
			Username: p.v.GetString("ssh_shutdown.username"),
			KeyPath:  os.ExpandEnv(p.v.GetString("ssh_shutdown.key_path")),
			Delay:    p.v.GetInt("ssh_shutdown.delay"),
		}

		if cfg.SSHShutdown.Host == "" {
			return nil, &models.ConfigError{Key: "ssh_shutdown.host"}
		}
		if cfg.SSHShutdown.KeyPath == "" {
			return nil, &models.ConfigError{Key: "ssh_shutdown.key_path"}
		}
		if cfg.SSHShutdown.Port == 0 {
			cfg.SSHShutdown.Port = 22
		}
		if cfg.SSHShutdown.Username == "" {
			cfg.SSHShutdown.Username = "root"
		}
		if cfg.SSHShutdown.Delay == 0 {
			cfg.SSHShutdown.Delay = 1
		}
	}

	return cfg, nil
}

// parseKeep normalizes the forget.keep mapping into an ordered policy:
// known units in canonical time order, then unknown units alphabetically.
func (p *Parser) parseKeep() models.RetentionPolicy {
	raw := p.v.GetStringMap("forget.keep")
	if len(raw) == 0 {
		return nil
	}

	seen := make(map[string]bool, len(raw))
	var policy models.RetentionPolicy

	for _, unit := range keepUnitOrder {
		if _, ok := raw[unit]; !ok {
			continue
		}
		policy = append(policy, models.RetentionRule{
			Unit:  unit,
			Count: p.v.GetInt("forget.keep." + unit),
		})
		seen[unit] = true
	}

	var rest []string
	for unit := range raw {
		if !seen[unit] {
			rest = append(rest, unit)
		}
	}
	sort.Strings(rest)
	for _, unit := range rest {
		policy = append(policy, models.RetentionRule{
			Unit:  unit,
			Count: p.v.GetInt("forget.keep." + unit),
		})
	}

	return policy
}
