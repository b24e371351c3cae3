package http

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mavmaso/ficherors/internal/config"
	"github.com/mavmaso/ficherors/internal/model"
	"github.com/mavmaso/ficherors/internal/pipeline"
	"github.com/mavmaso/ficherors/internal/repository"
	"github.com/mavmaso/ficherors/internal/util"
)

const testKey = "0123456789abcdef0123"

type fakeQueue struct {
	enqueued []pipeline.Request
	contents []string
	jobs     map[string]model.Job
}

func (q *fakeQueue) Enqueue(_ context.Context, req pipeline.Request, content string) (string, error) {
	q.enqueued = append(q.enqueued, req)
	q.contents = append(q.contents, content)
	return util.NewID(), nil
}

func (q *fakeQueue) Get(_ context.Context, id string) (model.Job, error) {
	j, ok := q.jobs[id]
	if !ok {
		return model.Job{}, repository.ErrJobNotFound
	}
	return j, nil
}

type fakeReports struct {
	country string
	status  model.JobStatus
	limit   int
}

func (r *fakeReports) Insert(context.Context, model.JobStat) error { return nil }

func (r *fakeReports) List(_ context.Context, country string, status model.JobStatus, limit, _ int) ([]model.JobStat, error) {
	r.country, r.status, r.limit = country, status, limit
	return []model.JobStat{{JobID: "j1", Country: country, Status: model.JobDone, Rows: 2}}, nil
}

func testConfig() config.Config {
	return config.Config{
		Log:  config.LogConfig{Level: "error"},
		HTTP: config.HTTPConfig{MaxBodyBytes: 1 << 20, APIKeys: []string{testKey}},
	}
}

func call(t *testing.T, s *Server, method, path string, body any) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var payload string
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		payload = string(b)
	}
	req := httptest.NewRequest(method, path, strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-API-Key", testKey)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	var out map[string]any
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	}
	return rec, out
}

func TestHealthz(t *testing.T) {
	s := NewServer(testConfig(), Deps{})
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}

func TestV1_RequiresAPIKey(t *testing.T) {
	s := NewServer(testConfig(), Deps{})
	req := httptest.NewRequest(http.MethodGet, "/v1/countries", nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestProcessList(t *testing.T) {
	s := NewServer(testConfig(), Deps{})

	rec, out := call(t, s, http.MethodPost, "/v1/lists/process", map[string]any{
		"country": "br",
		"functions": map[string]any{
			"first": map[string]string{"fn": "first_word", "target": "name"},
			"tag":   map[string]string{"fn": "fixed", "target": "promo"},
		},
		"content": "phone,name,city\n11 97205 7032,Ana Paula,Rio\n",
	})

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "destination;first;tag;city\n5511972057032;Ana;promo;Rio\n", out["output"])
	assert.EqualValues(t, 1, out["rows"])
}

func TestProcessList_DefaultCountry(t *testing.T) {
	cfg := testConfig()
	cfg.Pipeline.DefaultCountry = "US"
	s := NewServer(cfg, Deps{})

	rec, out := call(t, s, http.MethodPost, "/v1/lists/process", map[string]any{
		"content": "phone\n623 366 8812\n",
	})

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "destination\n16233668812\n", out["output"])
}

func TestProcessList_Base64Latin1(t *testing.T) {
	s := NewServer(testConfig(), Deps{})

	raw := "telefone;nome\n11972057032;Jo\xe3o\n"
	rec, out := call(t, s, http.MethodPost, "/v1/lists/process", map[string]any{
		"country":        "BR",
		"encoding":       "latin1",
		"content_base64": base64.StdEncoding.EncodeToString([]byte(raw)),
	})

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "destination;nome\n5511972057032;João\n", out["output"])
}

func TestProcessList_Errors(t *testing.T) {
	s := NewServer(testConfig(), Deps{})

	tests := []struct {
		name   string
		body   map[string]any
		status int
		code   string
	}{
		{"duplicate headers", map[string]any{"country": "BR", "content": "phone;phone\n1;2\n"}, http.StatusUnprocessableEntity, "duplicate_headers"},
		{"empty header", map[string]any{"country": "BR", "content": "phone;\n1;2\n"}, http.StatusUnprocessableEntity, "empty_header"},
		{"row format", map[string]any{"country": "BR", "content": "phone;name\n1\n"}, http.StatusUnprocessableEntity, "row_format"},
		{"missing country", map[string]any{"content": "phone\n1\n"}, http.StatusBadRequest, "bad request"},
		{"bad country", map[string]any{"country": "BRA", "content": "phone\n1\n"}, http.StatusBadRequest, "bad request"},
		{"missing content", map[string]any{"country": "BR"}, http.StatusBadRequest, "bad request"},
		{"duplicate outputs", map[string]any{
			"country":   "BR",
			"content":   "phone\n1\n",
			"functions": []map[string]string{{"name": "a", "fn": "upcase"}, {"name": "a", "fn": "downcase"}},
		}, http.StatusBadRequest, "invalid_functions"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, out := call(t, s, http.MethodPost, "/v1/lists/process", tt.body)
			assert.Equal(t, tt.status, rec.Code, rec.Body.String())
			assert.Equal(t, tt.code, out["error"])
		})
	}
}

func TestVerifyList(t *testing.T) {
	s := NewServer(testConfig(), Deps{})

	rec, out := call(t, s, http.MethodPost, "/v1/lists/verify", map[string]any{
		"content": "phone;name\n123;ana\nabc;bob\n",
	})

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, false, out["valid"])
	assert.Equal(t, []any{"Error on line 3: abc invalid telephone"}, out["errors"])
	assert.Equal(t, map[string]any{"phone": "123", "name": "ana"}, out["sample"])
}

func TestReadList(t *testing.T) {
	s := NewServer(testConfig(), Deps{})

	rec, out := call(t, s, http.MethodPost, "/v1/lists/read", map[string]any{"content": "a|b\n1|2\n"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []any{"a", "b"}, out["headers"])
	assert.Equal(t, []any{[]any{"1", "2"}}, out["rows"])

	rec, out = call(t, s, http.MethodPost, "/v1/lists/read", map[string]any{"content": "a|a\n1|2\n"})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "duplicate_headers", out["error"])
}

func TestCountries(t *testing.T) {
	s := NewServer(testConfig(), Deps{})

	rec, out := call(t, s, http.MethodGet, "/v1/countries", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 20, out["count"])
	first := out["results"].([]any)[0].(map[string]any)
	assert.Equal(t, "AR", first["code"])
}

func TestJobs(t *testing.T) {
	id := util.NewID()
	out := "destination\n1\n"
	q := &fakeQueue{jobs: map[string]model.Job{id: {ID: id, Country: "US", Status: model.JobDone, Output: &out, Rows: 1}}}
	s := NewServer(testConfig(), Deps{Queue: q})

	rec, body := call(t, s, http.MethodPost, "/v1/jobs", map[string]any{"country": "us", "content": "phone\n1\n"})
	require.Equal(t, http.StatusAccepted, rec.Code, rec.Body.String())
	assert.Equal(t, true, body["enqueued"])
	assert.True(t, util.ValidID(body["id"].(string)))
	require.Len(t, q.enqueued, 1)
	assert.Equal(t, "US", q.enqueued[0].Country)
	assert.Equal(t, "phone\n1\n", q.contents[0])

	rec, body = call(t, s, http.MethodGet, "/v1/jobs/"+id, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "done", body["status"])
	assert.Equal(t, out, body["output"])

	rec, _ = call(t, s, http.MethodGet, "/v1/jobs/"+util.NewID(), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec, _ = call(t, s, http.MethodGet, "/v1/jobs/not-a-ulid", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestJobs_Disabled(t *testing.T) {
	s := NewServer(testConfig(), Deps{})

	rec, _ := call(t, s, http.MethodPost, "/v1/jobs", map[string]any{"country": "us", "content": "phone\n1\n"})
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestJobsReport(t *testing.T) {
	r := &fakeReports{}
	s := NewServer(testConfig(), Deps{Reports: r})

	rec, out := call(t, s, http.MethodGet, "/v1/reports/jobs?country=br&status=done&limit=5000", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "BR", r.country)
	assert.Equal(t, model.JobDone, r.status)
	assert.Equal(t, 50, r.limit)
	assert.EqualValues(t, 1, out["count"])
}
