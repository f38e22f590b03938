package logger

import (
	"testing"

	"github.com/rs/zerolog"

	"sqliteguard/pkg/config"
)

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected zerolog.Level
		wantErr  bool
	}{
		{"debug", zerolog.DebugLevel, false},
		{"info", zerolog.InfoLevel, false},
		{"warn", zerolog.WarnLevel, false},
		{"warning", zerolog.WarnLevel, false},
		{"error", zerolog.ErrorLevel, false},
		{"DEBUG", zerolog.DebugLevel, false},
		{"disabled", zerolog.Disabled, false},
		{"chatty", zerolog.InfoLevel, true},
	}

	for _, test := range tests {
		t.Run(test.input, func(t *testing.T) {
			level, err := parseLogLevel(test.input)
			if (err != nil) != test.wantErr {
				t.Fatalf("parseLogLevel(%q) error = %v, wantErr %v", test.input, err, test.wantErr)
			}
			if !test.wantErr && level != test.expected {
				t.Errorf("parseLogLevel(%q) = %v, want %v", test.input, level, test.expected)
			}
		})
	}
}

func TestNewRejectsInvalidLevel(t *testing.T) {
	_, err := New(&config.LoggingConfig{Level: "nope"})
	if err == nil {
		t.Fatal("expected error for invalid log level")
	}
}

func TestWithFieldsDoesNotMutateParent(t *testing.T) {
	base, err := New(&config.LoggingConfig{Level: "debug"})
	if err != nil {
		t.Fatal(err)
	}

	child := base.WithField("scope", "transaction")
	if child == base {
		t.Error("expected WithField to return a derived logger")
	}

	// Parent keeps no fields; deriving twice from the same parent must
	// not cross-contaminate.
	a := base.WithField("a", 1)
	b := base.WithField("b", 2)

	za := a.(*zerologLogger)
	zb := b.(*zerologLogger)
	if _, ok := za.fields["b"]; ok {
		t.Error("sibling field leaked into derived logger")
	}
	if _, ok := zb.fields["a"]; ok {
		t.Error("sibling field leaked into derived logger")
	}
}

func TestTestLoggerCaptures(t *testing.T) {
	log := NewTestLogger()

	log.Debug("plain")
	log.DebugWithFields("with fields", map[string]interface{}{"attempt": 1})
	log.WithField("scope", "connection").Warn("bound")

	if !log.HasMessage("plain") || !log.HasMessage("with fields") || !log.HasMessage("bound") {
		t.Fatalf("missing captured messages: %s", log.String())
	}

	debugs := log.GetMessagesByLevel("DEBUG")
	if len(debugs) != 2 {
		t.Errorf("expected 2 debug messages, got %d", len(debugs))
	}
	if debugs[1].Fields["attempt"] != 1 {
		t.Errorf("expected attempt field, got %v", debugs[1].Fields)
	}

	warns := log.GetMessagesByLevel("WARN")
	if len(warns) != 1 || warns[0].Fields["scope"] != "connection" {
		t.Errorf("expected bound field on warn message, got %+v", warns)
	}

	log.Clear()
	if len(log.GetMessages()) != 0 {
		t.Error("expected Clear to drop captured messages")
	}
}
