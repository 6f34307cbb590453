package server

import (
	"bytes"
	"encoding/base64"
	"encoding/csv"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"resumescreen/internal/catalog"
	"resumescreen/internal/config"
	"resumescreen/internal/errors"
	"resumescreen/internal/extract"
	"resumescreen/internal/screening"
	"resumescreen/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *errors.Logger {
	logger, _ := errors.New("error")
	return logger
}

func newTestServer(t *testing.T, cfg ServerConfig) (*Server, *httptest.Server) {
	t.Helper()

	logger := testLogger()
	cat := catalog.Default()
	registry := extract.NewRegistry(config.ExtractionConfig{PDFEngine: config.PDFEngineNative}, logger, nil)

	if cfg.Version == "" {
		cfg.Version = "test"
	}
	s := NewServer(nil, cfg, Dependencies{
		Catalog:    cat,
		Screener:   screening.NewScreener(cat, registry, logger, screening.ScreenerOptions{}),
		Extraction: registry,
	}, logger)
	s.out = io.Discard

	ts := httptest.NewServer(s.setupRoutes())
	t.Cleanup(func() {
		ts.Close()
		s.Close()
	})
	return s, ts
}

func postJSON(t *testing.T, url string, body any, headers map[string]string) *http.Response {
	t.Helper()

	payload, err := json.Marshal(body)
	require.NoError(t, err)

	req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(payload))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decodeError(t *testing.T, resp *http.Response) ErrorResponse {
	t.Helper()
	var errResp ErrorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&errResp))
	return errResp
}

func TestScreenHandler(t *testing.T) {
	_, ts := newTestServer(t, ServerConfig{})

	resp := postJSON(t, ts.URL+"/screen", ScreenRequest{
		Role: "Data Scientist",
		Documents: []DocumentPayload{
			{Filename: "weak.txt", Text: "I enjoy hiking"},
			{Filename: "strong.txt", Text: "Python, pandas and machine learning"},
			{Filename: "broken.pdf", ContentBase64: base64.StdEncoding.EncodeToString([]byte("not a pdf"))},
		},
	}, nil)

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))

	var report types.ScreeningReport
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&report))

	assert.NotEmpty(t, report.RunID)
	assert.Equal(t, "Data Scientist", report.Role)
	require.Len(t, report.Records, 2)
	assert.Equal(t, "42.86", report.Records[1].ScorePercent)
	assert.Equal(t, []string{"python", "machine learning", "pandas"}, report.Records[1].Match.MatchedKeywords)

	require.Len(t, report.Ranking, 2)
	assert.Equal(t, "strong.txt", report.Ranking[0].Filename)
	assert.Equal(t, 1, report.Ranking[0].Rank)

	require.Len(t, report.Failures, 1)
	assert.Equal(t, "broken.pdf", report.Failures[0].Filename)
	assert.Equal(t, errors.ErrCodeExtractionFailed, report.Failures[0].Code)
}

func TestScreenHandlerErrors(t *testing.T) {
	tests := []struct {
		name        string
		cfg         ServerConfig
		contentType string
		body        string
		wantStatus  int
		wantCode    string
	}{
		{
			name:       "unknown role",
			body:       `{"role":"Astronaut","documents":[{"filename":"a.txt","text":"x"}]}`,
			wantStatus: http.StatusNotFound,
			wantCode:   errors.ErrCodeUnknownRole,
		},
		{
			name:       "missing role",
			body:       `{"documents":[{"filename":"a.txt","text":"x"}]}`,
			wantStatus: http.StatusBadRequest,
			wantCode:   errors.ErrCodeInvalidRequest,
		},
		{
			name:       "no documents",
			body:       `{"role":"Data Scientist","documents":[]}`,
			wantStatus: http.StatusBadRequest,
			wantCode:   errors.ErrCodeInvalidRequest,
		},
		{
			name:       "document without filename",
			body:       `{"role":"Data Scientist","documents":[{"text":"python"}]}`,
			wantStatus: http.StatusBadRequest,
			wantCode:   errors.ErrCodeInvalidRequest,
		},
		{
			name:       "invalid base64",
			body:       `{"role":"Data Scientist","documents":[{"filename":"a.pdf","contentBase64":"%%%"}]}`,
			wantStatus: http.StatusBadRequest,
			wantCode:   errors.ErrCodeInvalidRequest,
		},
		{
			name:       "text and base64 together",
			body:       `{"role":"Data Scientist","documents":[{"filename":"a.pdf","text":"x","contentBase64":"eA=="}]}`,
			wantStatus: http.StatusBadRequest,
			wantCode:   errors.ErrCodeInvalidRequest,
		},
		{
			name:       "malformed json",
			body:       `{"role":`,
			wantStatus: http.StatusBadRequest,
			wantCode:   errors.ErrCodeInvalidRequest,
		},
		{
			name:        "wrong content type",
			contentType: "text/plain",
			body:        `{"role":"Data Scientist"}`,
			wantStatus:  http.StatusUnsupportedMediaType,
			wantCode:    "UNSUPPORTED_MEDIA_TYPE",
		},
		{
			name:       "request too large",
			cfg:        ServerConfig{MaxRequestSize: 16},
			body:       `{"role":"Data Scientist","documents":[{"filename":"a.txt","text":"python"}]}`,
			wantStatus: http.StatusRequestEntityTooLarge,
			wantCode:   "REQUEST_TOO_LARGE",
		},
		{
			name:       "document too large",
			cfg:        ServerConfig{MaxDocumentSize: 4},
			body:       `{"role":"Data Scientist","documents":[{"filename":"a.txt","text":"python"}]}`,
			wantStatus: http.StatusBadRequest,
			wantCode:   errors.ErrCodeInvalidRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, ts := newTestServer(t, tt.cfg)

			contentType := tt.contentType
			if contentType == "" {
				contentType = "application/json"
			}
			resp, err := http.Post(ts.URL+"/screen", contentType, strings.NewReader(tt.body))
			require.NoError(t, err)
			defer resp.Body.Close()

			assert.Equal(t, tt.wantStatus, resp.StatusCode)
			errResp := decodeError(t, resp)
			assert.Equal(t, tt.wantCode, errResp.Code)
			assert.NotEmpty(t, errResp.Message)
		})
	}
}

func TestExportHandler(t *testing.T) {
	_, ts := newTestServer(t, ServerConfig{})

	resp := postJSON(t, ts.URL+"/screen/export", ScreenRequest{
		Role:      "Data Scientist",
		Documents: []DocumentPayload{{Filename: "cv.txt", Text: "Python and regression"}},
	}, nil)

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/csv; charset=utf-8", resp.Header.Get("Content-Type"))
	assert.Equal(t, `attachment; filename="resume_screening_results.csv"`, resp.Header.Get("Content-Disposition"))
	assert.NotEmpty(t, resp.Header.Get("X-Run-ID"))

	rows, err := csv.NewReader(resp.Body).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 8)
	assert.Equal(t, screening.CSVHeader, rows[0])
	assert.Equal(t, []string{"cv.txt", "python", "Yes", "28.57"}, rows[1])
	assert.Equal(t, []string{"cv.txt", "machine learning", "No", "28.57"}, rows[2])
}

func TestRolesHandler(t *testing.T) {
	_, ts := newTestServer(t, ServerConfig{})

	resp, err := http.Get(ts.URL + "/roles")
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	var roles types.RoleList
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&roles))

	require.Len(t, roles.Roles, 3)
	assert.Equal(t, "Data Scientist", roles.Roles[0].Name)
	assert.Equal(t, "Web Developer", roles.Roles[1].Name)
	assert.Contains(t, roles.Roles[1].Warnings, "node.js")
}

func TestHealthHandler(t *testing.T) {
	_, ts := newTestServer(t, ServerConfig{Version: "1.2.3"})

	resp, err := http.Get(ts.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))

	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, "1.2.3", body["version"])
	assert.Equal(t, float64(3), body["catalog"].(map[string]any)["roles"])
	assert.Equal(t, "healthy", body["extraction"].(map[string]any)["status"])
	assert.NotContains(t, body, "certificates")
}

func TestStatsHandler(t *testing.T) {
	_, ts := newTestServer(t, ServerConfig{
		APIKeys:   []string{"secret-key-1234"},
		RateLimit: &config.RateLimitConfig{Enabled: true, RequestsPerMin: 60, BurstCapacity: 5, ByIP: true},
	})

	resp, err := http.Get(ts.URL + "/stats")
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))

	assert.Equal(t, true, body["server"].(map[string]any)["auth_enabled"])
	limiting := body["rate_limiting"].(map[string]any)
	assert.Equal(t, true, limiting["enabled"])
	assert.InDelta(t, 60.0, limiting["rate_per_minute"], 0.001)
}

func TestAuthMiddleware(t *testing.T) {
	_, ts := newTestServer(t, ServerConfig{APIKeys: []string{"secret-key-1234", ""}})

	tests := []struct {
		name       string
		path       string
		headers    map[string]string
		wantStatus int
	}{
		{name: "missing key", path: "/roles", wantStatus: http.StatusUnauthorized},
		{name: "wrong key", path: "/roles", headers: map[string]string{"X-API-Key": "nope"}, wantStatus: http.StatusUnauthorized},
		{name: "header key", path: "/roles", headers: map[string]string{"X-API-Key": "secret-key-1234"}, wantStatus: http.StatusOK},
		{name: "bearer token", path: "/roles", headers: map[string]string{"Authorization": "Bearer secret-key-1234"}, wantStatus: http.StatusOK},
		{name: "health is public", path: "/health", wantStatus: http.StatusOK},
		{name: "stats is public", path: "/stats", wantStatus: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := http.NewRequest(http.MethodGet, ts.URL+tt.path, nil)
			require.NoError(t, err)
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}

			resp, err := http.DefaultClient.Do(req)
			require.NoError(t, err)
			defer resp.Body.Close()
			assert.Equal(t, tt.wantStatus, resp.StatusCode)
		})
	}
}

func TestMethodNotAllowed(t *testing.T) {
	_, ts := newTestServer(t, ServerConfig{})

	resp, err := http.Get(ts.URL + "/screen")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  *errors.AppError
		want int
	}{
		{errors.NewScreeningError(errors.ErrCodeUnknownRole, "x", nil), http.StatusNotFound},
		{errors.NewValidationError(errors.ErrCodeInvalidRequest, "x", nil), http.StatusBadRequest},
		{errors.NewNetworkError(errors.ErrCodeCircuitOpen, "x", nil), http.StatusServiceUnavailable},
		{errors.NewNetworkError(errors.ErrCodeNetworkTimeout, "x", nil), http.StatusBadGateway},
		{errors.NewInternalError("BOOM", "x", nil), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.err.Code, func(t *testing.T) {
			assert.Equal(t, tt.want, statusFor(tt.err))
		})
	}
}

func TestWriteAppErrorPlainError(t *testing.T) {
	rec := httptest.NewRecorder()
	writeAppError(rec, io.ErrUnexpectedEOF)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	var errResp ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&errResp))
	assert.Equal(t, "unexpected EOF", errResp.Message)
}
