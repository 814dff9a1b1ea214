package config

import (
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDatabase(t *testing.T) {
	t.Cleanup(viper.Reset)
	viper.Set("database.url", "postgres://app:secret@db:5432/rfpflow")

	cfg := LoadDatabase()
	assert.Equal(t, "postgres://app:secret@db:5432/rfpflow", cfg.URL)
}

func TestLoadIMAPAddr(t *testing.T) {
	t.Cleanup(viper.Reset)
	viper.Set("imap.host", "mail.example.com")
	viper.Set("imap.port", 993)
	viper.Set("imap.tls", true)

	cfg := LoadIMAP()
	assert.Equal(t, "mail.example.com:993", cfg.Addr())
	assert.True(t, cfg.TLS)
}

func TestValidateReportsMissingKeys(t *testing.T) {
	t.Cleanup(viper.Reset)
	viper.Set("database.url", "postgres://localhost/rfpflow")

	err := Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "imap.host")
	assert.NotContains(t, err.Error(), "database.url")
}
