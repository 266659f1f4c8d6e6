package model

import (
	"testing"
)

// TestPageComputeHash tests the ComputeHash method.
func TestPageComputeHash(t *testing.T) {
	t.Parallel()

	t.Run("computes SHA3-256 hash of raw content", func(t *testing.T) {
		t.Parallel()

		page := &Page{
			Raw: []byte("abc"),
		}
		page.ComputeHash()

		// NIST test vector for SHA3-256("abc")
		expected := "3a985da74fe225b2045c172d6bd390bd855f086e3e9d525b46bfe24511431532"
		if page.Hash != expected {
			t.Errorf("got %q, expected %q", page.Hash, expected)
		}
	})

	t.Run("empty content produces empty hash", func(t *testing.T) {
		t.Parallel()

		page := &Page{
			Raw:  []byte{},
			Hash: "stale",
		}
		page.ComputeHash()

		if page.Hash != "" {
			t.Errorf("expected empty hash, got %q", page.Hash)
		}
	})
}

// TestIsHTMLContentType tests media type detection.
func TestIsHTMLContentType(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		contentType string
		want        bool
	}{
		{"plain html", "text/html", true},
		{"html with charset", "text/html; charset=utf-8", true},
		{"upper case", "TEXT/HTML", true},
		{"xhtml", "application/xhtml+xml", true},
		{"malformed parameter", "text/html; charset", true},
		{"pdf", "application/pdf", false},
		{"plain text", "text/plain", false},
		{"json", "application/json", false},
		{"empty", "", false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := IsHTMLContentType(tt.contentType); got != tt.want {
				t.Errorf("IsHTMLContentType(%q) = %v, want %v", tt.contentType, got, tt.want)
			}
		})
	}
}

func TestPageFetched(t *testing.T) {
	t.Parallel()

	if !(&Page{Status: FetchStatusOK}).Fetched() {
		t.Error("expected ok page to be fetched")
	}
	if (&Page{Status: FetchStatusTransportError}).Fetched() {
		t.Error("expected transport failure not to be fetched")
	}
	if (&Page{Status: FetchStatusContentTypeError}).Fetched() {
		t.Error("expected content type failure not to be fetched")
	}
}
