package cache

import (
	"errors"
	"strings"
	"testing"
)

func TestValidateKey(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		wantErr error
	}{
		{"empty key", "", ErrInvalidKey},
		{"object key", "coid://example.com/Widget", nil},
		{"attachment key", "coid://example.com/Widget#logo.png", nil},
		{"too long", strings.Repeat("x", MaxKeyLength+1), ErrKeyTooLong},
		{"contains newline", "key\nwith\nnewlines", ErrInvalidKey},
		{"contains carriage return", "key\rwith\rreturns", ErrInvalidKey},
		{"whitespace only", "   ", ErrInvalidKey},
		{"max length exactly", strings.Repeat("x", MaxKeyLength), nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := ValidateKey(tt.key); !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateKey(%q) = %v, want %v", tt.key, err, tt.wantErr)
			}
		})
	}
}

func TestEntry_Encode(t *testing.T) {
	e := Entry{Marker: "1-abc", Payload: []byte(`{"a":"b|c"}`)}
	if got := string(e.Encode(ObjectSeparator)); got != `1-abc|{"a":"b|c"}` {
		t.Errorf("Encode() = %q", got)
	}
	if got := string(e.Encode(AttachmentSeparator)); got != `1-abc#{"a":"b|c"}` {
		t.Errorf("Encode(#) = %q", got)
	}
}

func TestDecodeEntry(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		sep     byte
		marker  string
		payload string
		ok      bool
	}{
		{"object", "1-abc|payload", ObjectSeparator, "1-abc", "payload", true},
		{"splits at first separator", "r1#a#b", AttachmentSeparator, "r1", "a#b", true},
		{"empty marker", "|payload", ObjectSeparator, "", "payload", true},
		{"empty payload", "r1#", AttachmentSeparator, "r1", "", true},
		{"missing separator", "payload", ObjectSeparator, "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, ok := DecodeEntry([]byte(tt.data), tt.sep)
			if ok != tt.ok {
				t.Fatalf("DecodeEntry() ok = %v, want %v", ok, tt.ok)
			}
			if e.Marker != tt.marker || string(e.Payload) != tt.payload {
				t.Errorf("DecodeEntry() = (%q, %q), want (%q, %q)", e.Marker, e.Payload, tt.marker, tt.payload)
			}
		})
	}
}

func TestSentinelErrors(t *testing.T) {
	tests := []struct {
		err     error
		wantMsg string
	}{
		{ErrNilStore, "cache: store is nil"},
		{ErrInvalidKey, "cache: key is invalid"},
		{ErrKeyTooLong, "cache: key exceeds max length"},
		{ErrUnknownProvider, "cache: unknown provider"},
	}
	for _, tt := range tests {
		if got := tt.err.Error(); got != tt.wantMsg {
			t.Errorf("Error() = %q, want %q", got, tt.wantMsg)
		}
	}
}
