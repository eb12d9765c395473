package timeutil

import (
	"encoding/json"
	"testing"
	"time"
)

func TestTimestampRoundTripKeepsNanoseconds(t *testing.T) {
	want := time.Date(2025, 10, 11, 9, 30, 0, 123456789, time.UTC)
	b, err := json.Marshal(At(want))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var got Timestamp
	if err := json.Unmarshal(b, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !got.Equal(want) {
		t.Fatalf("expected %v, got %v", want, got.Time)
	}
}

func TestTimestampZeroIsEmptyString(t *testing.T) {
	b, err := json.Marshal(Timestamp{})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(b) != `""` {
		t.Fatalf("expected empty string, got %s", b)
	}
	var got Timestamp
	if err := json.Unmarshal(b, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !got.IsZero() {
		t.Fatalf("expected zero time, got %v", got.Time)
	}
}

func TestParseTimeLegacyDateString(t *testing.T) {
	got, err := ParseTime("Sat Oct 11 2025 09:30:00 GMT-0700 (Pacific Daylight Time)")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	want := time.Date(2025, 10, 11, 16, 30, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("expected %v, got %v", want, got.UTC())
	}
}

func TestParseTimeRejectsGarbage(t *testing.T) {
	if _, err := ParseTime("yesterday-ish"); err == nil {
		t.Fatal("expected error")
	}
}
