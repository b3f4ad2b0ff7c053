package zerolog_config

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"go.elastic.co/ecszerolog"
)

var appPrefix string
var setAppPrefixOnce *sync.Once = &sync.Once{}
var startupLoggerOnce *sync.Once = &sync.Once{}

// ElasticsearchWriter sends logs directly to Elasticsearch
type ElasticsearchWriter struct {
	URL    string
	Client *http.Client
}

func (ew ElasticsearchWriter) Write(p []byte) (n int, err error) {
	client := ew.Client
	if client == nil {
		client = &http.Client{Timeout: 5 * time.Second}
	}

	resp, err := client.Post(
		ew.URL+"/_doc",
		"application/json",
		bytes.NewBuffer(p),
	)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return 0, fmt.Errorf("elasticsearch returned %d", resp.StatusCode)
	}

	return len(p), nil
}

// ParseLevel maps a level name onto a zerolog level, defaulting to info
func ParseLevel(level string) zerolog.Level {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil || level == "" {
		return zerolog.InfoLevel
	}
	return lvl
}

// NewLogger builds the service logger: pretty console output, plus ECS
// documents shipped to Elasticsearch when elasticsearchURL is set.
func NewLogger(console io.Writer, elasticsearchURL string, subAddress string) zerolog.Logger {
	consoleWriter := zerolog.ConsoleWriter{Out: console, TimeFormat: time.RFC3339}

	if elasticsearchURL == "" {
		return zerolog.New(consoleWriter).With().Str("app", appPrefix).
			Timestamp().Logger()
	}

	// ECS format for Elasticsearch with semantic endpoint
	ecsLogger := ecszerolog.New(&ElasticsearchWriter{
		URL: elasticsearchURL + "/" + subAddress,
	})

	// MultiLevelWriter: ECS to Elasticsearch + Pretty to Console
	multi := zerolog.MultiLevelWriter(
		ecsLogger,
		consoleWriter,
	)

	return zerolog.New(multi).With().Str("app", appPrefix).
		Timestamp().Logger()
}

// SetAppPrefix sets the app prefix
func SetAppPrefix(subAddress string) {
	setAppPrefixOnce.Do(func() {
		appPrefix = subAddress
	})
}

// StartupWithEnv sets up the global logger with the given Elasticsearch URL,
// subAddress and level. It returns an error if the subAddress is empty.
// Run SetAppPrefix before StartupWithEnv.
func StartupWithEnv(elasticsearchURL string, subAddress string, level string) error {
	if subAddress == "" {
		return fmt.Errorf("subAddress is required")
	}
	startupLoggerOnce.Do(func() {
		zerolog.SetGlobalLevel(ParseLevel(level))
		log.Logger = NewLogger(os.Stdout, elasticsearchURL, subAddress)
	})
	return nil
}
