package logger

import (
	"errors"
	"testing"

	"wallscraper/pkg/config"
)

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		input     string
		wantError bool
	}{
		{"debug", false},
		{"info", false},
		{"warn", false},
		{"warning", false},
		{"error", false},
		{"fatal", false},
		{"disabled", false},
		{"DEBUG", false},
		{"trace", true},
		{"", true},
	}

	for _, test := range tests {
		t.Run(test.input, func(t *testing.T) {
			_, err := parseLogLevel(test.input)
			if test.wantError && err == nil {
				t.Errorf("Expected error for level %q", test.input)
			}
			if !test.wantError && err != nil {
				t.Errorf("Unexpected error for level %q: %v", test.input, err)
			}
		})
	}
}

func TestNewRejectsInvalidLevel(t *testing.T) {
	_, err := New(&config.LoggingConfig{Level: "nonsense"})
	if err == nil {
		t.Error("Expected error for invalid log level")
	}
}

func TestWithFieldReturnsNewLogger(t *testing.T) {
	log, err := New(&config.LoggingConfig{Level: "info"})
	if err != nil {
		t.Fatalf("Failed to create logger: %v", err)
	}

	derived := log.WithField("site", "wallhaven")
	if derived == log {
		t.Error("Expected WithField to return a new logger instance")
	}

	// Original logger's fields must not be mutated
	base := log.(*zerologLogger)
	if len(base.fields) != 0 {
		t.Errorf("Expected base logger fields to stay empty, got %v", base.fields)
	}
}

func TestTestLoggerCaptures(t *testing.T) {
	log := NewTestLogger()

	log.Info("crawl started")
	log.WarnWithFields("no items found", map[string]interface{}{
		"page": "https://example.com/listing",
	})
	log.WithError(errors.New("boom")).Error("download failed")

	messages := log.Messages()
	if len(messages) != 3 {
		t.Fatalf("Expected 3 captured messages, got %d", len(messages))
	}

	if !log.HasMessage("crawl started") {
		t.Error("Expected 'crawl started' to be captured")
	}

	warnings := log.MessagesByLevel("WARN")
	if len(warnings) != 1 {
		t.Fatalf("Expected 1 warning, got %d", len(warnings))
	}
	if warnings[0].Fields["page"] != "https://example.com/listing" {
		t.Errorf("Expected page field to be preserved, got %v", warnings[0].Fields)
	}

	if !log.HasError() {
		t.Error("Expected an error-level message to be captured")
	}

	errs := log.MessagesByLevel("ERROR")
	if errs[0].Fields["error"] != "boom" {
		t.Errorf("Expected error field 'boom', got %v", errs[0].Fields)
	}
}

func TestTestLoggerDerivedSharesSink(t *testing.T) {
	log := NewTestLogger()

	derived := log.WithField("site", "wallhere")
	derived.Info("fetching page")

	if !log.HasMessage("fetching page") {
		t.Error("Expected derived logger's message to land in the parent sink")
	}

	messages := log.MessagesByLevel("INFO")
	if messages[0].Fields["site"] != "wallhere" {
		t.Errorf("Expected site field from derived logger, got %v", messages[0].Fields)
	}
}

func TestTestLoggerClear(t *testing.T) {
	log := NewTestLogger()

	log.Info("one")
	log.Info("two")
	log.Clear()

	if len(log.Messages()) != 0 {
		t.Error("Expected no messages after Clear")
	}
	if log.String() != "" {
		t.Error("Expected empty string output after Clear")
	}
}
