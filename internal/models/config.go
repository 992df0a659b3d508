// Package models contains the data structures used throughout restic-backup.
package models

import "time"

// Config holds the complete configuration for one backup run. It is built
// once by the config parser and never mutated afterwards; every derived
// command is a pure function of it.
type Config struct {
	ResticPath  string
	Backup      BackupSettings
	Forget      *ForgetSettings    // nil if not configured
	Email       *EmailConfig       // nil if not configured
	Telegram    *TelegramConfig    // nil if not configured
	WOL         *WOLConfig         // nil if not configured
	SSHShutdown *SSHShutdownConfig // nil if not configured
	Logfile     string
}

// BackupSettings holds the backup stage settings.
type BackupSettings struct {
	Directories   []string
	OneFileSystem bool
	Exclude       []string
	ExcludeFile   string
}

// ForgetSettings holds the prune stage settings.
type ForgetSettings struct {
	Enabled bool
	Keep    RetentionPolicy
}

// RetentionRule is one retention bucket consumed by the forget stage.
type RetentionRule struct {
	Unit  string // e.g. "daily", "weekly"
	Count int
}

// RetentionPolicy is an ordered list of retention rules. Order is preserved
// into the forget command so identical policies build identical commands.
type RetentionPolicy []RetentionRule

// EmailConfig holds notification recipient, sender and outcome policy,
// plus the SMTP transport settings.
type EmailConfig struct {
	Enabled   bool
	To        string
	From      string
	OnSuccess bool
	OnFailure bool

	SMTPHost string // empty means the mail transport is unavailable
	SMTPPort int
	Username string
	Password string
}

// TelegramConfig holds Telegram notification configuration.
type TelegramConfig struct {
	BotToken string
	ChatID   string
}

// WOLConfig holds the optional Wake-on-LAN step configuration.
type WOLConfig struct {
	MACAddress  string
	BroadcastIP string
	Wait        time.Duration // settle time after the packet is sent
}

// SSHShutdownConfig holds the optional remote shutdown step configuration.
type SSHShutdownConfig struct {
	Host     string
	Port     int
	Username string
	KeyPath  string
	Delay    int // minutes passed to shutdown(8)
}

// ForgetEnabled reports whether the prune stage should run.
func (c Config) ForgetEnabled() bool {
	return c.Forget != nil && c.Forget.Enabled
}

// EmailEnabled reports whether email notification is wanted.
func (c Config) EmailEnabled() bool {
	return c.Email != nil && c.Email.Enabled
}
