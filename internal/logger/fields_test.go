package logger

import (
	"testing"

	"go.uber.org/zap"
)

func TestStringFieldsSkipsEmptyEntries(t *testing.T) {
	t.Parallel()

	fields := StringFields(
		StringField{Key: "provider", Value: "gemini"},
		StringField{Key: "   ", Value: "ignored"},
		StringField{Key: "model", Value: "  "},
		StringField{Key: " session ", Value: " abc "},
	)

	if len(fields) != 2 {
		t.Fatalf("expected 2 fields, got %d", len(fields))
	}

	if fields[0].Key != "provider" || fields[0].String != "gemini" {
		t.Fatalf("unexpected first field: %+v", fields[0])
	}

	if fields[1].Key != "session" || fields[1].String != "abc" {
		t.Fatalf("unexpected second field: %+v", fields[1])
	}
}

func TestWithFieldsNilLogger(t *testing.T) {
	t.Parallel()

	if got := WithFields(nil); got == nil {
		t.Fatal("expected non-nil logger")
	}

	if got := WithFields(nil, zap.String("k", "v")); got == nil {
		t.Fatal("expected non-nil logger with fields")
	}
}

func TestGeneratorFields(t *testing.T) {
	t.Parallel()

	fields := GeneratorFields("gemini", "")
	if len(fields) != 1 {
		t.Fatalf("expected model to be omitted, got %d fields", len(fields))
	}

	if fields[0].Key != FieldProvider {
		t.Fatalf("unexpected key: %s", fields[0].Key)
	}
}
