// Package config provides typed views over the viper-backed settings.
// Flag binding and config-file discovery live in internal/app.
package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// Database holds the Postgres connection settings.
type Database struct {
	URL string
}

func LoadDatabase() Database {
	return Database{URL: viper.GetString("database.url")}
}

// IMAP holds mailbox connection settings for the ingestion pipeline.
type IMAP struct {
	Host     string
	Port     int
	Username string
	Password string
	TLS      bool
	Mailbox  string
}

// Addr returns the host:port dial address.
func (c IMAP) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// SMTP holds outbound mail settings.
type SMTP struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	FromName string
}

func (c SMTP) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// Gemini holds settings for the LLM extraction service.
type Gemini struct {
	APIKey  string
	Model   string
	BaseURL string
}

func LoadIMAP() IMAP {
	return IMAP{
		Host:     viper.GetString("imap.host"),
		Port:     viper.GetInt("imap.port"),
		Username: viper.GetString("imap.user"),
		Password: viper.GetString("imap.pass"),
		TLS:      viper.GetBool("imap.tls"),
		Mailbox:  viper.GetString("imap.mailbox"),
	}
}

func LoadSMTP() SMTP {
	return SMTP{
		Host:     viper.GetString("smtp.host"),
		Port:     viper.GetInt("smtp.port"),
		Username: viper.GetString("smtp.user"),
		Password: viper.GetString("smtp.pass"),
		From:     viper.GetString("email.from"),
		FromName: viper.GetString("email.from_name"),
	}
}

func LoadGemini() Gemini {
	return Gemini{
		APIKey:  viper.GetString("gemini.api_key"),
		Model:   viper.GetString("gemini.model"),
		BaseURL: viper.GetString("gemini.base_url"),
	}
}

// Validate reports the viper keys that must be set for the server to run.
func Validate() error {
	required := []string{
		"database.url",
		"imap.host", "imap.user", "imap.pass",
		"smtp.host", "smtp.user", "smtp.pass",
		"email.from",
		"gemini.api_key",
	}
	var missing []string
	for _, key := range required {
		if viper.GetString(key) == "" {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required configuration: %v", missing)
	}
	return nil
}
