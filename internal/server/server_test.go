package server

import (
	"bytes"
	"crypto/tls"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orizon-lang/exprir/internal/cli"
	"github.com/orizon-lang/exprir/internal/codegen"
	"github.com/orizon-lang/exprir/internal/errors"
)

func newTestServer(t *testing.T, cacheSize int) *Server {
	t.Helper()
	s, err := New(codegen.DefaultOptions(), cacheSize, cli.NewLoggerTo(io.Discard, true, true, false))
	require.NoError(t, err)
	return s
}

func post(t *testing.T, h http.Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/compile", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestCompileOK(t *testing.T) {
	s := newTestServer(t, 4)
	rec := post(t, s, `{"expression":"ab-"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var resp CompileResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp.Arity)
	assert.Equal(t, "llvm", resp.Emit)
	assert.Contains(t, resp.Output, "sub i32 %b, %a")
}

func TestCompileOverrides(t *testing.T) {
	s := newTestServer(t, 0)
	rec := post(t, s, `{"expression":"ab+","emit":"mir","module":"m","function":"f"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp CompileResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, strings.HasPrefix(resp.Output, "module m\nfunc ccc f("), resp.Output)
}

func TestCompileErrors(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		status int
		code   string
	}{
		{"malformed", `{"expression":"a+"}`, http.StatusBadRequest, errors.CodeMalformedExpression},
		{"empty", `{"expression":""}`, http.StatusBadRequest, errors.CodeMalformedExpression},
		{"emit", `{"expression":"ab+","emit":"wasm"}`, http.StatusBadRequest, errors.CodeUnsupportedEmit},
		{"json", `{"expression":`, http.StatusBadRequest, ""},
		{"unknown field", `{"expr":"ab+"}`, http.StatusBadRequest, ""},
	}
	s := newTestServer(t, 4)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := post(t, s, tt.body)
			require.Equal(t, tt.status, rec.Code)
			var resp ErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Equal(t, tt.code, resp.Code)
			assert.NotEmpty(t, resp.Error)
		})
	}
}

func TestCompileMethodNotAllowed(t *testing.T) {
	s := newTestServer(t, 4)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/compile", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.Equal(t, http.MethodPost, rec.Header().Get("Allow"))
}

func TestVerificationFailureStatus(t *testing.T) {
	s := newTestServer(t, 0)
	rec := httptest.NewRecorder()
	s.writeError(rec, errors.BackendVerification("exprFunc", io.ErrUnexpectedEOF))
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, errors.CodeBackendVerification, resp.Code)
}

func TestCacheAndMetrics(t *testing.T) {
	s := newTestServer(t, 4)
	for i := 0; i < 3; i++ {
		require.Equal(t, http.StatusOK, post(t, s, `{"expression":"abc+*","emit":"lir"}`).Code)
	}
	post(t, s, `{"expression":"+"}`)

	assert.Equal(t, 1, s.cache.Len())
	assert.Equal(t, 1.0, testutil.ToFloat64(s.compilations.WithLabelValues("lir", resultOK)))
	assert.Equal(t, 2.0, testutil.ToFloat64(s.compilations.WithLabelValues("lir", resultCached)))
	assert.Equal(t, 1.0, testutil.ToFloat64(s.compilations.WithLabelValues("llvm", resultMalformed)))

	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `exprir_compilations_total{emit="lir",result="cached"} 2`)
	assert.Contains(t, rec.Body.String(), "exprir_compile_seconds_count 2")
}

func TestHealthz(t *testing.T) {
	s := newTestServer(t, 0)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok\n", rec.Body.String())
}

func TestHTTP3Loopback(t *testing.T) {
	tlsCfg, err := SelfSignedTLS([]string{"127.0.0.1", "localhost"}, time.Hour)
	require.NoError(t, err)

	s := NewHTTP3Server("127.0.0.1:0", tlsCfg, newTestServer(t, 4))
	addr, err := s.Start()
	if err != nil {
		t.Skip("http3 not supported here:", err)
	}
	defer s.Stop()

	c := HTTP3Client(&tls.Config{InsecureSkipVerify: true, MinVersion: tls.VersionTLS13}, 2*time.Second)
	defer CloseClient(c)
	resp, err := c.Post("https://"+addr+"/compile", "application/json", bytes.NewBufferString(`{"expression":"ab+","emit":"mir"}`))
	if err != nil {
		t.Skip("http3 dial failed:", err)
	}
	defer resp.Body.Close()

	var out CompileResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Equal(t, 2, out.Arity)
	assert.Contains(t, out.Output, "add i32 %b, %a")
}

func TestTLSConfigMissingFiles(t *testing.T) {
	_, err := TLSConfig("/nonexistent/cert.pem", "/nonexistent/key.pem", nil)
	assert.Error(t, err)

	cfg, err := TLSConfig("", "", []string{"localhost"})
	require.NoError(t, err)
	assert.Len(t, cfg.Certificates, 1)
}
