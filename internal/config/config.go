// Package config provides centralized configuration management for the application.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/danielolaszy/ackmail/internal/logging"
	"github.com/spf13/viper"
	"github.com/zalando/go-keyring"
)

// Keyring services consulted when a secret is not set in the environment.
const (
	JiraKeyringService = "ackmail-jira"
	SMTPKeyringService = "ackmail-smtp"
)

// Authentication methods accepted for the tracker.
const (
	AuthBasic  = "basic"
	AuthBearer = "bearer"
)

// Config holds all configuration parameters for the application.
type Config struct {
	Jira JiraConfig
	SMTP SMTPConfig
	Mail MailConfig
	Ack  AckConfig
}

// JiraConfig holds JIRA specific configuration.
type JiraConfig struct {
	URL      string
	Username string
	Token    string
	Auth     string
}

// SMTPConfig holds the mail relay connection settings.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
}

// MailConfig holds the envelope settings of outgoing acknowledgments.
type MailConfig struct {
	Sender     string
	SenderName string
	Cc         []string
}

// AckConfig holds the defaults of the acknowledge command.
type AckConfig struct {
	Project       string
	WindowMinutes int
	MaxResults    int
}

// LoadConfig initializes and loads configuration from environment variables.
// When file is not empty it is read first and environment variables override it.
func LoadConfig(file string) (*Config, error) {
	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("jira.auth", AuthBasic)
	v.SetDefault("smtp.host", "smtp.gmail.com")
	v.SetDefault("smtp.port", 587)
	v.SetDefault("mail.sender_name", "Support Team")
	v.SetDefault("ack.window", 30)
	v.SetDefault("ack.max_results", 100)

	// Map specific environment variables
	_ = v.BindEnv("jira.url", "JIRA_URL")
	_ = v.BindEnv("jira.username", "JIRA_USERNAME")
	_ = v.BindEnv("jira.token", "JIRA_TOKEN")
	_ = v.BindEnv("jira.auth", "JIRA_AUTH")
	_ = v.BindEnv("smtp.host", "SMTP_HOST")
	_ = v.BindEnv("smtp.port", "SMTP_PORT")
	_ = v.BindEnv("smtp.username", "SMTP_USERNAME")
	_ = v.BindEnv("smtp.password", "SMTP_PASSWORD")
	_ = v.BindEnv("mail.sender", "MAIL_SENDER")
	_ = v.BindEnv("mail.sender_name", "MAIL_SENDER_NAME")
	_ = v.BindEnv("mail.cc", "MAIL_CC")
	_ = v.BindEnv("ack.project", "ACK_PROJECT")
	_ = v.BindEnv("ack.window", "ACK_WINDOW_MINUTES")
	_ = v.BindEnv("ack.max_results", "ACK_MAX_RESULTS")

	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", file, err)
		}
		logging.Debug("loaded config file", "path", v.ConfigFileUsed())
	}

	config := &Config{
		Jira: JiraConfig{
			URL:      v.GetString("jira.url"),
			Username: v.GetString("jira.username"),
			Token:    v.GetString("jira.token"),
			Auth:     strings.ToLower(v.GetString("jira.auth")),
		},
		SMTP: SMTPConfig{
			Host:     v.GetString("smtp.host"),
			Port:     v.GetInt("smtp.port"),
			Username: v.GetString("smtp.username"),
			Password: v.GetString("smtp.password"),
		},
		Mail: MailConfig{
			Sender:     v.GetString("mail.sender"),
			SenderName: v.GetString("mail.sender_name"),
			Cc:         splitList(v.GetStringSlice("mail.cc")...),
		},
		Ack: AckConfig{
			Project:       v.GetString("ack.project"),
			WindowMinutes: v.GetInt("ack.window"),
			MaxResults:    v.GetInt("ack.max_results"),
		},
	}

	if config.Mail.Sender == "" {
		config.Mail.Sender = config.SMTP.Username
	}

	if config.Jira.Token == "" {
		config.Jira.Token = lookupSecret(JiraKeyringService, config.Jira.Username)
	}
	if config.SMTP.Password == "" {
		config.SMTP.Password = lookupSecret(SMTPKeyringService, config.SMTP.Username)
	}

	logging.Debug("configuration loaded",
		"jira_url", config.Jira.URL,
		"jira_username", config.Jira.Username,
		"jira_token", logging.MaskSensitive(config.Jira.Token),
		"smtp_host", config.SMTP.Host,
		"smtp_port", config.SMTP.Port,
		"smtp_password", logging.MaskSensitive(config.SMTP.Password))

	return config, nil
}

// lookupSecret reads a secret from the OS keyring. A missing entry yields "".
func lookupSecret(service, user string) string {
	if user == "" {
		return ""
	}
	secret, err := keyring.Get(service, user)
	if err != nil {
		if !errors.Is(err, keyring.ErrNotFound) {
			logging.Debug("keyring lookup failed",
				"service", service,
				"user", user,
				"error", err)
		}
		return ""
	}
	return secret
}

func splitList(values ...string) []string {
	var out []string
	for _, raw := range values {
		for _, part := range strings.Split(raw, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

// ValidateJiraConfig validates JIRA-specific configuration.
func ValidateJiraConfig(config *Config) error {
	var missingVars []string

	if config.Jira.URL == "" {
		missingVars = append(missingVars, "JIRA_URL")
	}
	if config.Jira.Username == "" && config.Jira.Auth != AuthBearer {
		missingVars = append(missingVars, "JIRA_USERNAME")
	}
	if config.Jira.Token == "" {
		missingVars = append(missingVars, "JIRA_TOKEN")
	}

	if len(missingVars) > 0 {
		return fmt.Errorf("missing required environment variables: %v", missingVars)
	}

	if config.Jira.Auth != AuthBasic && config.Jira.Auth != AuthBearer {
		return fmt.Errorf("unsupported JIRA_AUTH %q, expected %q or %q", config.Jira.Auth, AuthBasic, AuthBearer)
	}

	return nil
}

// ValidateSMTPConfig validates the mail relay configuration.
func ValidateSMTPConfig(config *Config) error {
	var missingVars []string

	if config.SMTP.Host == "" {
		missingVars = append(missingVars, "SMTP_HOST")
	}
	if config.SMTP.Username == "" {
		missingVars = append(missingVars, "SMTP_USERNAME")
	}
	if config.SMTP.Password == "" {
		missingVars = append(missingVars, "SMTP_PASSWORD")
	}
	if config.Mail.Sender == "" {
		missingVars = append(missingVars, "MAIL_SENDER")
	}

	if len(missingVars) > 0 {
		return fmt.Errorf("missing required environment variables: %v", missingVars)
	}

	if config.SMTP.Port <= 0 || config.SMTP.Port > 65535 {
		return fmt.Errorf("invalid SMTP_PORT %d", config.SMTP.Port)
	}

	return nil
}
