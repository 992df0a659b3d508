package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/veidtlabs/restic-backup/internal/config"
	"github.com/veidtlabs/restic-backup/internal/services/restic"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate configuration file",
	Long:  `Validate the configuration file and print the derived commands without executing anything.`,
	RunE:  validateConfig,
}

func validateConfig(cmd *cobra.Command, args []string) error {
	confPath := config.ResolvePath(configFile)

	if _, err := os.Stat(confPath); os.IsNotExist(err) {
		log.Error().Str("file", confPath).Msg("config file not found")
		return fmt.Errorf("config file not found: %s", confPath)
	}

	parser := config.NewParser()
	cfg, err := parser.LoadFile(confPath)
	if err != nil {
		log.Error().Err(err).Str("file", confPath).Msg("failed to parse config")
		return err
	}

	fmt.Println("Configuration is valid!")
	fmt.Println()
	fmt.Println("Summary:")
	fmt.Printf("  Restic: %s\n", cfg.ResticPath)
	fmt.Printf("  Directories: %v\n", cfg.Backup.Directories)
	fmt.Printf("  One file system: %v\n", cfg.Backup.OneFileSystem)
	if len(cfg.Backup.Exclude) > 0 {
		fmt.Printf("  Exclude: %v\n", cfg.Backup.Exclude)
	}
	if cfg.Backup.ExcludeFile != "" {
		fmt.Printf("  Exclude file: %s\n", cfg.Backup.ExcludeFile)
	}

	fmt.Println()
	fmt.Println("Derived commands:")
	fmt.Printf("  backup: %s\n", restic.BackupCommand(*cfg))
	if forgetCmd, ok := restic.ForgetCommand(*cfg); ok {
		fmt.Printf("  forget: %s\n", forgetCmd)
	} else {
		fmt.Println("  forget: (disabled)")
	}
	fmt.Printf("  check:  %s\n", restic.CheckCommand(*cfg))

	fmt.Println()
	fmt.Println("Optional Features:")
	fmt.Printf("  Forget: %v\n", cfg.ForgetEnabled())
	fmt.Printf("  Email: %v\n", cfg.EmailEnabled())
	fmt.Printf("  Telegram: %v\n", cfg.Telegram != nil)
	fmt.Printf("  Wake-on-LAN: %v\n", cfg.WOL != nil)
	fmt.Printf("  SSH Shutdown: %v\n", cfg.SSHShutdown != nil)

	if cfg.ForgetEnabled() {
		fmt.Println()
		fmt.Println("Retention Policy:")
		for _, rule := range cfg.Forget.Keep {
			fmt.Printf("  Keep %s: %d\n", rule.Unit, rule.Count)
		}
	}

	if cfg.EmailEnabled() {
		fmt.Println()
		fmt.Println("Email Configuration:")
		fmt.Printf("  To: %s\n", cfg.Email.To)
		fmt.Printf("  From: %s\n", cfg.Email.From)
		fmt.Printf("  On success: %v\n", cfg.Email.OnSuccess)
		fmt.Printf("  On failure: %v\n", cfg.Email.OnFailure)
		if cfg.Email.SMTPHost != "" {
			fmt.Printf("  SMTP: %s:%d\n", cfg.Email.SMTPHost, cfg.Email.SMTPPort)
		} else {
			fmt.Println("  SMTP: (not configured, mail will be skipped)")
		}
	}

	if cfg.WOL != nil {
		fmt.Println()
		fmt.Println("WOL Configuration:")
		fmt.Printf("  MAC Address: %s\n", cfg.WOL.MACAddress)
		fmt.Printf("  Broadcast IP: %s\n", cfg.WOL.BroadcastIP)
		fmt.Printf("  Wait: %s\n", cfg.WOL.Wait)
	}

	if cfg.SSHShutdown != nil {
		fmt.Println()
		fmt.Println("SSH Shutdown Configuration:")
		fmt.Printf("  Host: %s\n", cfg.SSHShutdown.Host)
		fmt.Printf("  Port: %d\n", cfg.SSHShutdown.Port)
		fmt.Printf("  Username: %s\n", cfg.SSHShutdown.Username)
		fmt.Printf("  Shutdown Delay: %d minute(s)\n", cfg.SSHShutdown.Delay)
	}

	return nil
}
