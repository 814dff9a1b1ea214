package ingest

import "regexp"

var rfpTokenRe = regexp.MustCompile(`RFP-[A-Za-z0-9-]+`)

// ExtractRFPToken finds an RFP identifier in the subject line, falling
// back to the body. Returns "" when neither contains one.
func ExtractRFPToken(subject, body string) string {
	if m := rfpTokenRe.FindString(subject); m != "" {
		return m
	}
	return rfpTokenRe.FindString(body)
}
