package id_test

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/xraph/quotewatch/id"
)

func TestNewRequestID(t *testing.T) {
	i := id.NewRequestID()
	if i.IsNil() {
		t.Fatal("expected non-nil ID")
	}
	if !strings.HasPrefix(i.String(), "req_") {
		t.Errorf("expected req_ prefix, got %q", i.String())
	}
	if i.Prefix() != id.PrefixRequest {
		t.Errorf("Prefix() = %q, want %q", i.Prefix(), id.PrefixRequest)
	}
}

func TestParseRequestID(t *testing.T) {
	original := id.NewRequestID()
	parsed, err := id.ParseRequestID(original.String())
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if parsed.String() != original.String() {
		t.Errorf("parsed %q, want %q", parsed, original)
	}
}

func TestParseRequestID_RejectsOtherPrefix(t *testing.T) {
	other := id.New("job")
	if _, err := id.ParseRequestID(other.String()); err == nil {
		t.Fatal("expected prefix mismatch error")
	}
}

func TestParse_Invalid(t *testing.T) {
	for _, s := range []string{"", "not-a-typeid"} {
		if _, err := id.Parse(s); err == nil {
			t.Errorf("Parse(%q) expected error", s)
		}
	}
}

func TestNil(t *testing.T) {
	if !id.Nil.IsNil() {
		t.Error("Nil should be nil")
	}
	if id.Nil.String() != "" {
		t.Errorf("Nil.String() = %q, want empty", id.Nil.String())
	}
	v, err := id.Nil.Value()
	if err != nil || v != nil {
		t.Errorf("Nil.Value() = %v, %v; want nil, nil", v, err)
	}
}

func TestJSONField(t *testing.T) {
	type wrapper struct {
		ID id.ID `json:"id"`
	}
	in := wrapper{ID: id.NewRequestID()}
	data, err := json.Marshal(in)
	if err != nil {
		t.Fatal(err)
	}
	var out wrapper
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatal(err)
	}
	if out.ID.String() != in.ID.String() {
		t.Errorf("got %q, want %q", out.ID, in.ID)
	}

	var empty wrapper
	if err := json.Unmarshal([]byte(`{"id":""}`), &empty); err != nil {
		t.Fatal(err)
	}
	if !empty.ID.IsNil() {
		t.Errorf("expected Nil for empty id, got %q", empty.ID)
	}
}

func TestScan(t *testing.T) {
	original := id.NewRequestID()
	for _, src := range []any{original.String(), []byte(original.String())} {
		var got id.ID
		if err := got.Scan(src); err != nil {
			t.Fatalf("Scan(%T) error: %v", src, err)
		}
		if got.String() != original.String() {
			t.Errorf("Scan(%T) = %q, want %q", src, got, original)
		}
	}
	var got id.ID
	if err := got.Scan(nil); err != nil || !got.IsNil() {
		t.Errorf("Scan(nil) = %q, %v", got, err)
	}
	if err := got.Scan(42); err == nil {
		t.Error("Scan(int) expected error")
	}
}
