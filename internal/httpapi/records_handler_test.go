package httpapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"kojen-data/internal/domain"
	"kojen-data/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeOps struct {
	submitted []domain.Record
	batched   []domain.Record
	updated   []domain.Record
	deleted   []string
	editor    string
	filters   map[string]string
	listCalls int
	all       []domain.Record
}

func (f *fakeOps) Submit(ctx context.Context, rec domain.Record) (*service.SubmitResult, error) {
	f.submitted = append(f.submitted, rec)
	return &service.SubmitResult{Success: true, RecordID: "1"}, nil
}

func (f *fakeOps) SubmitBatch(ctx context.Context, records []domain.Record, editor string) (*service.BatchResult, error) {
	f.batched = append(f.batched, records...)
	f.editor = editor
	return &service.BatchResult{Success: true, SavedCount: len(records)}, nil
}

func (f *fakeOps) Update(ctx context.Context, rec domain.Record, editor string) (*service.SubmitResult, error) {
	f.updated = append(f.updated, rec)
	f.editor = editor
	return &service.SubmitResult{Success: true}, nil
}

func (f *fakeOps) Delete(ctx context.Context, id string) (*service.SubmitResult, error) {
	f.deleted = append(f.deleted, id)
	return &service.SubmitResult{Success: true, RecordID: id}, nil
}

func (f *fakeOps) Refresh(ctx context.Context, filters map[string]string) (*service.ListResult, error) {
	f.filters = filters
	return &service.ListResult{Success: true, Records: f.all, Count: len(f.all)}, nil
}

func (f *fakeOps) List(ctx context.Context) *service.ListResult {
	f.listCalls++
	return &service.ListResult{Success: true, Records: f.all, Count: len(f.all)}
}

func (f *fakeOps) All(ctx context.Context) []domain.Record { return f.all }

func newHandler(kind domain.Kind, ops RecordOps) *RecordHandler {
	return NewRecordHandler(map[domain.Kind]RecordOps{kind: ops}, zap.NewNop())
}

func TestSubmit_ParsesFlatBody(t *testing.T) {
	ops := &fakeOps{}
	h := newHandler(domain.KindSteam, ops)

	body := `{"date":"2024-03-05","time":"09:00","amount":12.5,"recordedBy":"ali"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/records/buhar", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"success":true`)

	require.Len(t, ops.submitted, 1)
	sr, ok := ops.submitted[0].(*domain.SteamRecord)
	require.True(t, ok)
	assert.Equal(t, "2024-03-05", sr.Date)
	assert.InDelta(t, 12.5, sr.Amount, 1e-9)
	assert.Equal(t, "ali", sr.RecordedBy)
}

func TestList_DefaultRefreshCarriesFilters(t *testing.T) {
	ops := &fakeOps{}
	h := newHandler(domain.KindHourly, ops)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/records/saatlik?date=2024-03-05&shift=gunduz", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, map[string]string{"date": "2024-03-05", "shift": "gunduz"}, ops.filters)
	assert.Zero(t, ops.listCalls)
}

func TestList_LimitFilterIsNumericOnly(t *testing.T) {
	ops := &fakeOps{}
	h := newHandler(domain.KindSteam, ops)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/records/buhar?limit=10", nil)
	h.ServeHTTP(httptest.NewRecorder(), req)
	assert.Equal(t, map[string]string{"limit": "10"}, ops.filters)

	req = httptest.NewRequest(http.MethodGet, "/api/v1/records/buhar?limit=çok", nil)
	h.ServeHTTP(httptest.NewRecorder(), req)
	assert.Empty(t, ops.filters)
}

func TestList_CacheSourceSkipsRemote(t *testing.T) {
	ops := &fakeOps{}
	h := newHandler(domain.KindHourly, ops)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/records/saatlik?source=cache", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, 1, ops.listCalls)
	assert.Nil(t, ops.filters)
}

func TestBatch_DecodesRecordsAndEditor(t *testing.T) {
	ops := &fakeOps{}
	h := newHandler(domain.KindHourly, ops)

	body := `{"editor":"ayse","records":[
		{"date":"2024-03-05","shift":"gunduz","hour":"09:00","aktif":3},
		{"date":"2024-03-05","shift":"gunduz","hour":"10:00","aktif":4}
	]}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/records/saatlik/batch", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ayse", ops.editor)
	require.Len(t, ops.batched, 2)
	hr := ops.batched[1].(*domain.HourlyEnergyRecord)
	assert.Equal(t, "10:00", hr.Hour)
}

func TestUpdate_WrapsRecordWithEditor(t *testing.T) {
	ops := &fakeOps{}
	h := newHandler(domain.KindSteam, ops)

	body := `{"editor":"veli","record":{"id":"42","date":"2024-03-05","time":"09:00","amount":11}}`
	req := httptest.NewRequest(http.MethodPut, "/api/v1/records/buhar", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "veli", ops.editor)
	require.Len(t, ops.updated, 1)
	assert.Equal(t, "42", ops.updated[0].RecordID())
}

func TestDelete_UsesPathID(t *testing.T) {
	ops := &fakeOps{}
	h := newHandler(domain.KindSteam, ops)

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/records/buhar/1709631000000", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"1709631000000"}, ops.deleted)
}

func TestExport_ReturnsWorkbook(t *testing.T) {
	ops := &fakeOps{all: []domain.Record{
		&domain.SteamRecord{
			Meta:   domain.Meta{ID: "1", Timestamp: "05/03/2024 09:30"},
			Date:   "2024-03-05",
			Time:   "09:00",
			Amount: 12.5,
		},
	}}
	h := newHandler(domain.KindSteam, ops)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/records/buhar/export", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "buhar.xlsx")
	assert.Equal(t, "PK", rec.Body.String()[:2])
}

func TestUnknownModule404(t *testing.T) {
	h := newHandler(domain.KindSteam, &fakeOps{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/records/yok", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), `"success":false`)
}

func TestInvalidBodyRejected(t *testing.T) {
	ops := &fakeOps{}
	h := newHandler(domain.KindSteam, ops)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/records/buhar", strings.NewReader("{not json"))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"success":false`)
	assert.Empty(t, ops.submitted)
}

func TestReportSummary(t *testing.T) {
	ops := &fakeOps{all: []domain.Record{
		&domain.SteamRecord{Date: "2024-03-05", Time: "09:00", Amount: 10},
	}}
	h := NewReportHandler(map[domain.Kind]RecordOps{domain.KindSteam: ops}, zap.NewNop())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/reports/summary", nil)
	rec := httptest.NewRecorder()
	h.Summary(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"steamTotal":10`)
}

func TestReportSummary_DateRange(t *testing.T) {
	ops := &fakeOps{all: []domain.Record{
		&domain.SteamRecord{Date: "2024-03-04", Time: "09:00", Amount: 7},
		&domain.SteamRecord{Date: "2024-03-05", Time: "09:00", Amount: 10},
		&domain.SteamRecord{Date: "2024-03-06", Time: "09:00", Amount: 20},
	}}
	h := NewReportHandler(map[domain.Kind]RecordOps{domain.KindSteam: ops}, zap.NewNop())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/reports/summary?startDate=2024-03-05&endDate=2024-03-05", nil)
	rec := httptest.NewRecorder()
	h.Summary(rec, req)

	assert.Contains(t, rec.Body.String(), `"steamTotal":10`)
	assert.Contains(t, rec.Body.String(), `"steamCount":1`)
}

type fakePinger struct{ down map[domain.Kind]bool }

func (f *fakePinger) Ping(ctx context.Context, kind domain.Kind) error {
	if f.down[kind] {
		return context.DeadlineExceeded
	}
	return nil
}

func TestReadyz_DegradedWhenModuleUnreachable(t *testing.T) {
	h := NewHealthHandler(&fakePinger{down: map[domain.Kind]bool{domain.KindHourly: true}},
		[]domain.Kind{domain.KindSteam, domain.KindHourly}, zap.NewNop())

	req := httptest.NewRequest(http.MethodGet, "/readyz", nil)
	rec := httptest.NewRecorder()
	h.Readyz(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"degraded"`)
	assert.Contains(t, rec.Body.String(), `"saatlik":"unreachable"`)
}
