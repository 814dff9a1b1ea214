// Package mailbox wraps the IMAP client behind a narrow interface so the
// ingestion pipeline can be tested against a fake server connection.
package mailbox

import (
	"crypto/tls"

	"github.com/emersion/go-imap"
	"github.com/emersion/go-imap/client"
)

// Client is the subset of the IMAP client the ingestion pipeline needs.
type Client interface {
	Select(name string, readOnly bool) (*imap.MailboxStatus, error)
	UidSearch(criteria *imap.SearchCriteria) ([]uint32, error)
	UidFetch(seqset *imap.SeqSet, items []imap.FetchItem, ch chan *imap.Message) error
	UidStore(seqset *imap.SeqSet, item imap.StoreItem, value interface{}, ch chan *imap.Message) error
	Logout() error
}

// ClientConfig holds everything needed to dial and authenticate.
type ClientConfig struct {
	HostPort  string
	Username  string
	Password  string
	TLS       bool
	TLSConfig *tls.Config
}

// Factory produces connected, authenticated clients.
type Factory interface {
	NewClient(cfg *ClientConfig) (Client, error)
}

// DialFactory connects to a real IMAP server.
type DialFactory struct{}

func (f *DialFactory) NewClient(cfg *ClientConfig) (Client, error) {
	var c *client.Client
	var err error
	if cfg.TLS {
		c, err = client.DialTLS(cfg.HostPort, cfg.TLSConfig)
	} else {
		c, err = client.Dial(cfg.HostPort)
	}

	if err != nil {
		return nil, err
	}

	wantCleanup := true
	defer func() {
		if wantCleanup {
			_ = c.Logout()
		}
	}()

	if err := c.Login(cfg.Username, cfg.Password); err != nil {
		return nil, err
	}

	wantCleanup = false
	return c, nil
}
