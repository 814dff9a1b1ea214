// Package ingest implements the inbound mail pipeline: fetch unseen mail
// from known vendor senders, decompose each message, match it to an RFP,
// deduplicate, persist a proposal record, and trigger extraction. A
// single-flight Guard keeps the scheduled job and manual triggers from
// racing on the same mailbox.
package ingest

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/emersion/go-imap"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/procurehq/rfpflow/internal/config"
	"github.com/procurehq/rfpflow/internal/mailbox"
	"github.com/procurehq/rfpflow/internal/models"
)

// VendorDirectory is the vendor address book as the pipeline sees it.
type VendorDirectory interface {
	All(ctx context.Context) ([]models.Vendor, error)
	ByEmailFragment(ctx context.Context, fragment string) (*models.Vendor, error)
	Create(ctx context.Context, v *models.Vendor) error
}

// RequestStore resolves inbound messages to RFPs.
type RequestStore interface {
	ByToken(ctx context.Context, token string) (*models.RFP, error)
	LatestByStatus(ctx context.Context, status string) (*models.RFP, error)
}

// ResponseStore persists proposal records.
type ResponseStore interface {
	ByMessageID(ctx context.Context, messageID string) (*models.Proposal, error)
	CountByRFPVendor(ctx context.Context, rfpID, vendorID uuid.UUID) (int, error)
	Create(ctx context.Context, p *models.Proposal) error
}

// Extractor turns a stored proposal's free text into structured fields.
type Extractor interface {
	ParseProposal(ctx context.Context, proposalID uuid.UUID) error
}

// Pipeline performs one end-to-end ingestion pass per Run call.
type Pipeline struct {
	Vendors   VendorDirectory
	RFPs      RequestStore
	Proposals ResponseStore
	Extractor Extractor
	Factory   mailbox.Factory
	IMAP      config.IMAP
}

// Run executes one pass. Connection-level failures abort the pass and are
// returned; per-message failures are recorded in the result and processing
// continues. Messages are handled strictly one at a time so read-flag
// state and proposal numbering stay race-free.
func (p *Pipeline) Run(ctx context.Context) (*models.CheckResult, error) {
	vendors, err := p.Vendors.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("load vendors: %w", err)
	}

	var addrs []string
	for _, v := range vendors {
		if addr := strings.ToLower(strings.TrimSpace(v.Email)); addr != "" {
			addrs = append(addrs, addr)
		}
	}

	if len(addrs) == 0 {
		return &models.CheckResult{
			Emails:  []models.EmailOutcome{},
			Message: "no vendors in database to filter emails from",
		}, nil
	}

	log.WithField("vendors", len(addrs)).Debug("searching for unseen vendor mail")

	c, err := p.Factory.NewClient(&mailbox.ClientConfig{
		HostPort: p.IMAP.Addr(),
		Username: p.IMAP.Username,
		Password: p.IMAP.Password,
		TLS:      p.IMAP.TLS,
	})
	if err != nil {
		return nil, fmt.Errorf("connect to mailbox: %w", err)
	}
	defer func() {
		if err := c.Logout(); err != nil {
			log.WithError(err).Warn("imap logout failed")
		}
	}()

	mbox := p.IMAP.Mailbox
	if mbox == "" {
		mbox = "INBOX"
	}
	if _, err := c.Select(mbox, false); err != nil {
		return nil, fmt.Errorf("select %s: %w", mbox, err)
	}

	uids, err := p.search(c, addrs)
	if err != nil {
		return nil, err
	}

	if len(uids) == 0 {
		return &models.CheckResult{
			Emails:  []models.EmailOutcome{},
			Message: "no new emails from vendors found",
		}, nil
	}

	log.WithField("count", len(uids)).Info("fetching unseen vendor mail")

	msgs, err := p.fetch(c, uids)
	if err != nil {
		return nil, fmt.Errorf("fetch messages: %w", err)
	}

	outcomes := make([]models.EmailOutcome, 0, len(msgs))
	for _, msg := range msgs {
		outcomes = append(outcomes, p.processMessage(ctx, c, msg))
	}

	result := &models.CheckResult{Emails: outcomes}
	for _, o := range outcomes {
		if o.Success {
			result.Processed++
		} else {
			result.Failed++
		}
	}
	if result.Processed > 0 {
		result.Message = fmt.Sprintf("processed %d proposal(s) from vendor emails", result.Processed)
	} else {
		result.Message = "no new proposals found from vendor emails"
	}
	return result, nil
}

// search runs the compound unseen-AND-from criteria server-side. Some
// servers reject deeply nested OR queries; those get one query per vendor
// address instead, with per-address failures logged and skipped.
func (p *Pipeline) search(c mailbox.Client, addrs []string) ([]uint32, error) {
	uids, err := c.UidSearch(mailbox.BuildVendorCriteria(addrs))
	if err == nil {
		return dedupeSorted(uids), nil
	}

	log.WithError(err).Warn("compound OR search rejected, falling back to per-vendor searches")

	var merged []uint32
	for _, addr := range addrs {
		got, err := c.UidSearch(mailbox.BuildVendorCriteria([]string{addr}))
		if err != nil {
			log.WithError(err).WithField("from", addr).Warn("per-vendor search failed")
			continue
		}
		merged = append(merged, got...)
	}
	return dedupeSorted(merged), nil
}

// Sometimes the fallback searches overlap; keep each UID once, ascending.
func dedupeSorted(uids []uint32) []uint32 {
	unique := make(map[uint32]struct{}, len(uids))
	for _, uid := range uids {
		unique[uid] = struct{}{}
	}
	out := make([]uint32, 0, len(unique))
	for uid := range unique {
		out = append(out, uid)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

var rawSection = &imap.BodySectionName{Peek: true}

func (p *Pipeline) fetch(c mailbox.Client, uids []uint32) ([]*imap.Message, error) {
	seqset := new(imap.SeqSet)
	seqset.AddNum(uids...)

	items := []imap.FetchItem{imap.FetchEnvelope, imap.FetchUid, rawSection.FetchItem()}

	ch := make(chan *imap.Message, len(uids))
	done := make(chan error, 1)
	go func() {
		done <- c.UidFetch(seqset, items, ch)
	}()

	var msgs []*imap.Message
	for msg := range ch {
		msgs = append(msgs, msg)
	}
	if err := <-done; err != nil {
		return nil, err
	}
	return msgs, nil
}

// processMessage runs Steps 3-9 for one message. Every failure is folded
// into the returned outcome; nothing here aborts the pass.
func (p *Pipeline) processMessage(ctx context.Context, c mailbox.Client, msg *imap.Message) models.EmailOutcome {
	body := msg.GetBody(rawSection)
	if body == nil {
		return models.EmailOutcome{Error: "server returned no body for message"}
	}

	raw, err := io.ReadAll(body)
	if err != nil {
		return models.EmailOutcome{Error: fmt.Sprintf("read message body: %v", err)}
	}

	pm, err := mailbox.Decompose(raw)
	if err != nil {
		return models.EmailOutcome{Error: fmt.Sprintf("parse message: %v", err)}
	}

	logger := log.WithFields(log.Fields{
		"uid":     msg.Uid,
		"from":    pm.SenderAddr,
		"subject": pm.Subject,
	})
	logger.Info("processing vendor email")

	vendor, err := p.resolveVendor(ctx, pm.SenderAddr)
	if err != nil {
		return failedOutcome(pm, fmt.Sprintf("resolve vendor: %v", err))
	}

	rfp, err := p.resolveRFP(ctx, pm.Subject, pm.Body)
	if err != nil {
		return failedOutcome(pm, fmt.Sprintf("resolve RFP: %v", err))
	}
	if rfp == nil {
		logger.Warn("no RFPs exist in system, cannot process email")
		return failedOutcome(pm, "no RFPs exist in system to match this email")
	}

	// Dedup: a repeat of an already-ingested message is skipped, not
	// re-created, but still flagged read so the next pass skips it too.
	if pm.MessageID != "" {
		existing, err := p.Proposals.ByMessageID(ctx, pm.MessageID)
		if err != nil {
			return failedOutcome(pm, fmt.Sprintf("dedup lookup: %v", err))
		}
		if existing != nil {
			logger.WithField("message_id", pm.MessageID).Info("skipping duplicate email")
			p.markSeen(c, msg.Uid)
			return models.EmailOutcome{
				Success:     true,
				Duplicate:   true,
				ProposalID:  &existing.ID,
				RFPToken:    rfp.Token,
				VendorEmail: vendor.Email,
				Subject:     pm.Subject,
			}
		}
	}

	count, err := p.Proposals.CountByRFPVendor(ctx, rfp.ID, vendor.ID)
	if err != nil {
		return failedOutcome(pm, fmt.Sprintf("count prior proposals: %v", err))
	}

	proposal := &models.Proposal{
		RFPID:    rfp.ID,
		VendorID: vendor.ID,
		Number:   count + 1,
		EmailContent: models.EmailContent{
			Subject: pm.Subject,
			From:    pm.SenderAddr,
			Body:    pm.Body,
			HTML:    pm.HTML,
		},
		Status: models.ProposalStatusPending,
	}
	if pm.MessageID != "" {
		proposal.EmailMessageID = &pm.MessageID
	}
	for _, att := range pm.Attachments {
		proposal.Attachments = append(proposal.Attachments, models.Attachment{
			Filename:    att.Filename,
			ContentType: att.ContentType,
			Size:        att.Size,
			Content:     att.Content,
		})
	}

	if err := p.Proposals.Create(ctx, proposal); err != nil {
		return failedOutcome(pm, fmt.Sprintf("create proposal: %v", err))
	}

	logger.WithFields(log.Fields{
		"proposal": proposal.ID,
		"number":   proposal.Number,
		"rfp":      rfp.Token,
	}).Info("created proposal")

	// Extraction is best-effort: the email is captured either way, so a
	// failure here leaves the record pending but still counts the message
	// as ingested.
	parsed := false
	if err := p.Extractor.ParseProposal(ctx, proposal.ID); err != nil {
		logger.WithError(err).Warn("proposal extraction failed")
	} else {
		parsed = true
	}

	p.markSeen(c, msg.Uid)

	return models.EmailOutcome{
		Success:        true,
		ProposalID:     &proposal.ID,
		ProposalNumber: proposal.Number,
		RFPToken:       rfp.Token,
		RFPTitle:       rfp.Title,
		VendorName:     vendor.Name,
		VendorEmail:    vendor.Email,
		Subject:        pm.Subject,
		Parsed:         parsed,
	}
}

// resolveVendor matches the sender to a vendor by local-part substring,
// creating a provisional vendor on first contact from an unknown address.
func (p *Pipeline) resolveVendor(ctx context.Context, senderAddr string) (*models.Vendor, error) {
	local := senderAddr
	if at := strings.Index(senderAddr, "@"); at > 0 {
		local = senderAddr[:at]
	}

	vendor, err := p.Vendors.ByEmailFragment(ctx, local)
	if err != nil {
		return nil, err
	}
	if vendor != nil {
		return vendor, nil
	}

	vendor = &models.Vendor{Name: local, Email: senderAddr}
	if err := p.Vendors.Create(ctx, vendor); err != nil {
		return nil, err
	}
	log.WithFields(log.Fields{"name": vendor.Name, "email": vendor.Email}).Info("created new vendor from sender")
	return vendor, nil
}

// resolveRFP applies the matching priority: exact token from subject or
// body, then the most recent "sent" RFP, then the most recent RFP of any
// status. Returns nil when the system has no RFPs at all.
func (p *Pipeline) resolveRFP(ctx context.Context, subject, body string) (*models.RFP, error) {
	if token := ExtractRFPToken(subject, body); token != "" {
		rfp, err := p.RFPs.ByToken(ctx, token)
		if err != nil {
			return nil, err
		}
		if rfp != nil {
			log.WithField("rfp", rfp.Token).Debug("matched RFP by token")
			return rfp, nil
		}
		log.WithField("token", token).Debug("token found but no matching RFP, trying fallback")
	}

	rfp, err := p.RFPs.LatestByStatus(ctx, models.RFPStatusSent)
	if err != nil {
		return nil, err
	}
	if rfp == nil {
		rfp, err = p.RFPs.LatestByStatus(ctx, "")
		if err != nil {
			return nil, err
		}
	}
	if rfp != nil {
		log.WithField("rfp", rfp.Token).Debug("auto-matched RFP")
	}
	return rfp, nil
}

// markSeen excludes the message from the next pass's unseen filter. A
// store failure only means the message gets re-examined next pass, where
// dedup catches it, so the error is logged and swallowed.
func (p *Pipeline) markSeen(c mailbox.Client, uid uint32) {
	seqset := new(imap.SeqSet)
	seqset.AddNum(uid)
	item := imap.FormatFlagsOp(imap.AddFlags, true)
	if err := c.UidStore(seqset, item, []interface{}{imap.SeenFlag}, nil); err != nil {
		log.WithError(err).WithField("uid", uid).Warn("failed to flag message as read")
	}
}

func failedOutcome(pm *mailbox.ParsedMessage, errMsg string) models.EmailOutcome {
	return models.EmailOutcome{
		VendorEmail: pm.SenderAddr,
		Subject:     pm.Subject,
		Error:       errMsg,
	}
}
