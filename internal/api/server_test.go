package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/procurehq/rfpflow/internal/extract"
	"github.com/procurehq/rfpflow/internal/mailer"
	"github.com/procurehq/rfpflow/internal/models"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeRFPStore struct {
	rfps map[uuid.UUID]*models.RFP
}

func newFakeRFPStore() *fakeRFPStore {
	return &fakeRFPStore{rfps: map[uuid.UUID]*models.RFP{}}
}

func (f *fakeRFPStore) Create(_ context.Context, r *models.RFP) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	if r.Token == "" {
		r.Token = models.NewRFPToken()
	}
	if r.Status == "" {
		r.Status = models.RFPStatusDraft
	}
	f.rfps[r.ID] = r
	return nil
}

func (f *fakeRFPStore) All(_ context.Context, status string) ([]models.RFP, error) {
	var out []models.RFP
	for _, r := range f.rfps {
		if status == "" || r.Status == status {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (f *fakeRFPStore) ByID(_ context.Context, id uuid.UUID) (*models.RFP, error) {
	return f.rfps[id], nil
}

func (f *fakeRFPStore) Update(_ context.Context, r *models.RFP) error {
	f.rfps[r.ID] = r
	return nil
}

func (f *fakeRFPStore) UpdateStatus(_ context.Context, id uuid.UUID, status string) error {
	f.rfps[id].Status = status
	return nil
}

func (f *fakeRFPStore) Delete(_ context.Context, id uuid.UUID) error {
	delete(f.rfps, id)
	return nil
}

type fakeVendorStore struct {
	vendors []models.Vendor
}

func (f *fakeVendorStore) All(_ context.Context) ([]models.Vendor, error) { return f.vendors, nil }

func (f *fakeVendorStore) ByID(_ context.Context, id uuid.UUID) (*models.Vendor, error) {
	for i := range f.vendors {
		if f.vendors[i].ID == id {
			return &f.vendors[i], nil
		}
	}
	return nil, nil
}

func (f *fakeVendorStore) Create(_ context.Context, v *models.Vendor) error {
	v.ID = uuid.New()
	f.vendors = append(f.vendors, *v)
	return nil
}

func (f *fakeVendorStore) Update(_ context.Context, v *models.Vendor) error { return nil }
func (f *fakeVendorStore) Delete(_ context.Context, _ uuid.UUID) error      { return nil }

type fakeChecker struct {
	result *models.CheckResult
}

func (f *fakeChecker) Run(_ context.Context, trigger string) (*models.CheckResult, error) {
	return f.result, nil
}

type fakeHistory struct{ runs []models.JobRun }

func (f *fakeHistory) Recent(_ context.Context, _ string, limit int) ([]models.JobRun, error) {
	if limit < len(f.runs) {
		return f.runs[:limit], nil
	}
	return f.runs, nil
}

type fakeExtractor struct{ out *extract.RFPExtraction }

func (f *fakeExtractor) ExtractRFP(_ context.Context, _ string) (*extract.RFPExtraction, error) {
	return f.out, nil
}

type fakeSender struct {
	sent    *models.RFP
	vendors []models.Vendor
}

func (f *fakeSender) SendRFP(rfp *models.RFP, vendors []models.Vendor) []mailer.SendResult {
	f.sent = rfp
	f.vendors = vendors
	results := make([]mailer.SendResult, len(vendors))
	for i, v := range vendors {
		results[i] = mailer.SendResult{VendorID: v.ID, VendorEmail: v.Email, Success: true}
	}
	return results
}

type fakeProposalStore struct {
	proposals map[uuid.UUID]*models.Proposal
	statuses  map[uuid.UUID]string
}

func newFakeProposalStore() *fakeProposalStore {
	return &fakeProposalStore{
		proposals: map[uuid.UUID]*models.Proposal{},
		statuses:  map[uuid.UUID]string{},
	}
}

func (f *fakeProposalStore) All(_ context.Context, _ string) ([]models.Proposal, error) {
	var out []models.Proposal
	for _, p := range f.proposals {
		out = append(out, *p)
	}
	return out, nil
}

func (f *fakeProposalStore) ByID(_ context.Context, id uuid.UUID) (*models.Proposal, error) {
	return f.proposals[id], nil
}

func (f *fakeProposalStore) ByRFP(_ context.Context, _ uuid.UUID) ([]models.Proposal, error) {
	return nil, nil
}

func (f *fakeProposalStore) UpdateStatus(_ context.Context, id uuid.UUID, status string) error {
	f.statuses[id] = status
	return nil
}

func doRequest(t *testing.T, r *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return env
}

func TestCreateRFPFromNaturalLanguage(t *testing.T) {
	rfps := newFakeRFPStore()
	s := &Server{
		RFPs: rfps,
		Extractor: &fakeExtractor{out: &extract.RFPExtraction{
			Title:  "Office Laptops",
			Budget: 25000,
			Items:  []models.RFPItem{{Name: "Laptop", Quantity: 10}},
		}},
	}
	r := s.Router()

	w := doRequest(t, r, http.MethodPost, "/api/rfps", gin.H{
		"naturalLanguage": "we need 10 laptops, budget 25k",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	env := decodeEnvelope(t, w)
	assert.True(t, env.Success)

	var created models.RFP
	require.NoError(t, json.Unmarshal(env.Data, &created))
	assert.Equal(t, "Office Laptops", created.Title)
	assert.Contains(t, created.Token, "RFP-")
	assert.Equal(t, models.RFPStatusDraft, created.Status)
	assert.Len(t, rfps.rfps, 1)
}

func TestCreateRFPRequiresTitle(t *testing.T) {
	s := &Server{RFPs: newFakeRFPStore()}
	w := doRequest(t, s.Router(), http.MethodPost, "/api/rfps", gin.H{"budget": 100})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSendRFPMarksSent(t *testing.T) {
	rfps := newFakeRFPStore()
	rfp := &models.RFP{Title: "Laptops"}
	require.NoError(t, rfps.Create(context.Background(), rfp))

	vendors := &fakeVendorStore{vendors: []models.Vendor{
		{ID: uuid.New(), Name: "Acme", Email: "sales@acme.com"},
	}}
	sender := &fakeSender{}
	s := &Server{RFPs: rfps, Vendors: vendors, Mailer: sender}

	w := doRequest(t, s.Router(), http.MethodPost, "/api/rfps/"+rfp.ID.String()+"/send", nil)
	require.Equal(t, http.StatusOK, w.Code)

	assert.Equal(t, models.RFPStatusSent, rfps.rfps[rfp.ID].Status)
	require.NotNil(t, sender.sent)
	assert.Len(t, sender.vendors, 1)
}

func TestSendRFPNoVendors(t *testing.T) {
	rfps := newFakeRFPStore()
	rfp := &models.RFP{Title: "Laptops"}
	require.NoError(t, rfps.Create(context.Background(), rfp))

	s := &Server{RFPs: rfps, Vendors: &fakeVendorStore{}, Mailer: &fakeSender{}}
	w := doRequest(t, s.Router(), http.MethodPost, "/api/rfps/"+rfp.ID.String()+"/send", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCheckEmailContention(t *testing.T) {
	s := &Server{Checker: &fakeChecker{result: &models.CheckResult{
		Emails:     []models.EmailOutcome{},
		Message:    "email check already in progress, skipping this run",
		InProgress: true,
	}}}

	w := doRequest(t, s.Router(), http.MethodPost, "/api/email/check", nil)
	require.Equal(t, http.StatusOK, w.Code)

	env := decodeEnvelope(t, w)
	var result models.CheckResult
	require.NoError(t, json.Unmarshal(env.Data, &result))
	assert.True(t, result.InProgress)
	assert.Zero(t, result.Processed)
	assert.NotNil(t, result.Emails)
	assert.Empty(t, result.Emails)
}

func TestUpdateProposalStatusValidation(t *testing.T) {
	proposals := newFakeProposalStore()
	id := uuid.New()
	proposals.proposals[id] = &models.Proposal{ID: id}
	s := &Server{Proposals: proposals}
	r := s.Router()

	w := doRequest(t, r, http.MethodPatch, "/api/proposals/"+id.String()+"/status", gin.H{"status": "bogus"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doRequest(t, r, http.MethodPatch, "/api/proposals/"+id.String()+"/status", gin.H{"status": "reviewed"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, models.ProposalStatusReviewed, proposals.statuses[id])
}

func TestGetRFPNotFound(t *testing.T) {
	s := &Server{RFPs: newFakeRFPStore()}
	w := doRequest(t, s.Router(), http.MethodGet, "/api/rfps/"+uuid.NewString(), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doRequest(t, s.Router(), http.MethodGet, "/api/rfps/not-a-uuid", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestEmailHistory(t *testing.T) {
	history := &fakeHistory{runs: []models.JobRun{
		{ID: uuid.New(), JobName: models.EmailCheckJobName, Status: models.JobStatusSuccess},
		{ID: uuid.New(), JobName: models.EmailCheckJobName, Status: models.JobStatusFailed},
	}}
	s := &Server{History: history}

	w := doRequest(t, s.Router(), http.MethodGet, "/api/email/history?limit=1", nil)
	require.Equal(t, http.StatusOK, w.Code)

	env := decodeEnvelope(t, w)
	var runs []models.JobRun
	require.NoError(t, json.Unmarshal(env.Data, &runs))
	assert.Len(t, runs, 1)
}
