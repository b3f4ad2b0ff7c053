package zerolog_config

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in       string
		expected zerolog.Level
	}{
		{in: "debug", expected: zerolog.DebugLevel},
		{in: "WARN", expected: zerolog.WarnLevel},
		{in: " error ", expected: zerolog.ErrorLevel},
		{in: "", expected: zerolog.InfoLevel},
		{in: "chatty", expected: zerolog.InfoLevel},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, ParseLevel(tt.in), "level %q", tt.in)
	}
}

func TestStartupRequiresSubAddress(t *testing.T) {
	assert.Error(t, StartupWithEnv("", "", "info"))
}

func TestNewLoggerShipsECSDocuments(t *testing.T) {
	var received []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/logs/_doc", r.URL.Path)
		received, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	var console bytes.Buffer
	logger := NewLogger(&console, srv.URL, "logs")
	logger.Info().Str("id", "P001").Msg("Patient created")

	require.NotEmpty(t, received)
	assert.Contains(t, string(received), "Patient created")
	assert.Contains(t, console.String(), "Patient created")
}

func TestElasticsearchWriterReportsHTTPErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := ElasticsearchWriter{URL: srv.URL}.Write([]byte(`{}`))
	assert.Error(t, err)
}
