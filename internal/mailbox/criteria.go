package mailbox

import (
	"net/textproto"

	"github.com/emersion/go-imap"
)

// BuildVendorCriteria constructs the server-side search predicate
// "unseen AND (from a OR from b OR ...)". Multiple addresses become a
// right-associated binary OR tree, since IMAP OR takes exactly two
// operands. Returns nil when no addresses are given.
func BuildVendorCriteria(addrs []string) *imap.SearchCriteria {
	if len(addrs) == 0 {
		return nil
	}

	crit := &imap.SearchCriteria{
		WithoutFlags: []string{imap.SeenFlag},
	}

	if len(addrs) == 1 {
		crit.Header = fromHeader(addrs[0])
		return crit
	}

	crit.Or = [][2]*imap.SearchCriteria{{fromCriteria(addrs[0]), orCriteria(addrs[1:])}}
	return crit
}

func fromHeader(addr string) textproto.MIMEHeader {
	return textproto.MIMEHeader{"From": {addr}}
}

func fromCriteria(addr string) *imap.SearchCriteria {
	return &imap.SearchCriteria{Header: fromHeader(addr)}
}

// orCriteria folds addresses into OR(first, OR(second, ...)).
func orCriteria(addrs []string) *imap.SearchCriteria {
	if len(addrs) == 1 {
		return fromCriteria(addrs[0])
	}
	return &imap.SearchCriteria{
		Or: [][2]*imap.SearchCriteria{{fromCriteria(addrs[0]), orCriteria(addrs[1:])}},
	}
}
