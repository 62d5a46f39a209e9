package intake

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"regexp"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nexusq/internal/config"
	"nexusq/internal/logger"
	pkgerrors "nexusq/pkg/errors"
)

type recordingSender struct {
	payloads []Payload
	results  []TargetResult
}

func (s *recordingSender) Send(_ context.Context, p Payload) []TargetResult {
	s.payloads = append(s.payloads, p)
	return s.results
}

func validForm() Form {
	return Form{
		Service: "electrical",
		Address: "44 Borrowdale Rd, Harare",
		Name:    "Tendai Moyo",
		Phone:   "077 184 0862",
	}
}

func TestNewReferenceID(t *testing.T) {
	assert.Regexp(t, regexp.MustCompile(`^QX-[0-9A-F]{4}-[0-9A-F]{4}$`), NewReferenceID())
}

func TestService_SubmitBuildsPayload(t *testing.T) {
	sender := &recordingSender{results: []TargetResult{{StatusCode: 404}, {StatusCode: 200}}}
	svc := NewService(sender, config.IntakeConfig{}, logger.NopLogger())

	res, err := svc.Submit(context.Background(), validForm())
	require.NoError(t, err)
	assert.Equal(t, StepSuccess, res.Step)
	assert.Equal(t, 1, res.Acknowledged)

	require.Len(t, sender.payloads, 1)
	p := sender.payloads[0]
	assert.Equal(t, "nexusq-website", p.Source)
	assert.Equal(t, "standard", p.Urgency)
	assert.Equal(t, "+263771840862", p.Phone)
	assert.Equal(t, "077 184 0862", p.PhoneRaw)
	assert.Nil(t, p.Email)
	assert.Equal(t, res.ReferenceID, p.ReferenceID)

	body, err := json.Marshal(p)
	require.NoError(t, err)
	assert.Contains(t, string(body), `"email":null`)
}

func TestService_SubmitValidation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Form)
		want   string
	}{
		{"no service", func(f *Form) { f.Service = "" }, "Please select a service."},
		{"no address", func(f *Form) { f.Address = "" }, "Please enter the service address."},
		{"no name", func(f *Form) { f.Name = "" }, "Please enter your full name."},
		{"no phone", func(f *Form) { f.Phone = "" }, "Please enter your phone number."},
		{"bad phone", func(f *Form) { f.Phone = "12345" }, "Please enter a valid phone number (e.g. +44771840862)."},
		{"bad email", func(f *Form) { f.Email = "not-an-email" }, "validation failed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sender := &recordingSender{}
			svc := NewService(sender, config.IntakeConfig{}, logger.NopLogger())

			form := validForm()
			tt.mutate(&form)
			_, err := svc.Submit(context.Background(), form)

			require.Error(t, err)
			assert.Equal(t, http.StatusBadRequest, pkgerrors.ToHTTPStatus(err))
			assert.Equal(t, tt.want, pkgerrors.ToErrorResponse(err).Error)
			assert.Empty(t, sender.payloads)
		})
	}
}

func TestService_SubmitNoAcknowledgement(t *testing.T) {
	sender := &recordingSender{results: []TargetResult{{Err: errors.New("dial tcp")}, {StatusCode: 500}}}
	repo := newMemoryClaims()
	guard := NewGuard(repo, config.DedupConfig{Enabled: true}, logger.NopLogger())
	svc := NewService(sender, config.IntakeConfig{}, logger.NopLogger(), WithGuard(guard))

	_, err := svc.Submit(context.Background(), validForm())
	require.Error(t, err)
	assert.Equal(t, http.StatusBadGateway, pkgerrors.ToHTTPStatus(err))
	assert.Empty(t, repo.keys, "claim released after failure")
}

func TestService_SubmitDuplicate(t *testing.T) {
	sender := &recordingSender{results: []TargetResult{{StatusCode: 200}}}
	guard := NewGuard(newMemoryClaims(), config.DedupConfig{Enabled: true}, logger.NopLogger())
	svc := NewService(sender, config.IntakeConfig{}, logger.NopLogger(), WithGuard(guard))

	_, err := svc.Submit(context.Background(), validForm())
	require.NoError(t, err)

	_, err = svc.Submit(context.Background(), validForm())
	require.Error(t, err)
	assert.True(t, pkgerrors.IsConflict(err))
	assert.Len(t, sender.payloads, 1)
}

func TestFanout_Send(t *testing.T) {
	var hits atomic.Int32
	ok := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		var p Payload
		if err := json.NewDecoder(r.Body).Decode(&p); err != nil || p.ReferenceID == "" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer ok.Close()

	failing := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer failing.Close()

	f := NewFanout([]string{failing.URL, ok.URL}, nil, logger.NopLogger())
	results := f.Send(context.Background(), Payload{ReferenceID: "QX-1234-ABCD"})

	require.Len(t, results, 2)
	assert.False(t, results[0].OK())
	assert.Equal(t, http.StatusNotFound, results[0].StatusCode)
	assert.True(t, results[1].OK())
	assert.Equal(t, int32(2), hits.Load())
}

func TestService_Advance(t *testing.T) {
	svc := NewService(&recordingSender{}, config.IntakeConfig{}, logger.NopLogger())

	res, err := svc.Advance(context.Background(), StepRequest{Step: StepService, Action: "next", Form: Form{Service: "hvac"}})
	require.NoError(t, err)
	assert.Equal(t, StepDetails, res.Step)

	_, err = svc.Advance(context.Background(), StepRequest{Step: StepService, Action: "back"})
	assert.True(t, pkgerrors.IsValidation(err))

	_, err = svc.Advance(context.Background(), StepRequest{Step: "review", Action: "next"})
	assert.True(t, pkgerrors.IsValidation(err))
}
