package qdrant

import (
	"errors"
	"strings"
	"testing"
)

func TestParseEndpoint(t *testing.T) {
	t.Parallel()

	tests := []struct {
		raw  string
		want endpoint
	}{
		{"", endpoint{host: "localhost", port: 6334}},
		{"   ", endpoint{host: "localhost", port: 6334}},
		{"https://db.example.com", endpoint{host: "db.example.com", port: 6334, useTLS: true}},
		{"http://db.example.com", endpoint{host: "db.example.com", port: 6334}},
		{"https://db.example.com:7443", endpoint{host: "db.example.com", port: 7443, useTLS: true}},
		{"localhost:6334", endpoint{host: "localhost", port: 6334}},
		{"db.internal", endpoint{host: "db.internal", port: 6334}},
	}

	for _, tt := range tests {
		got, err := parseEndpoint(tt.raw)
		if err != nil {
			t.Fatalf("parseEndpoint(%q): %v", tt.raw, err)
		}
		if got != tt.want {
			t.Fatalf("parseEndpoint(%q)=%+v, want %+v", tt.raw, got, tt.want)
		}
	}

	if _, err := parseEndpoint("db.example.com:notaport"); err == nil {
		t.Fatalf("parseEndpoint with bad port: expected error")
	}
}

func TestEndpointToggled(t *testing.T) {
	t.Parallel()

	secure := endpoint{host: "db.example.com", port: 6334, useTLS: true}
	insecure := secure.toggled()
	if insecure.useTLS {
		t.Fatalf("toggled() of secure endpoint should be insecure")
	}
	if insecure.host != secure.host || insecure.port != secure.port {
		t.Fatalf("toggled() must only change the scheme, got %+v", insecure)
	}
	if back := insecure.toggled(); back != secure {
		t.Fatalf("double toggle=%+v, want %+v", back, secure)
	}

	if got := secure.String(); got != "https://db.example.com:6334" {
		t.Fatalf("String()=%q, want %q", got, "https://db.example.com:6334")
	}
	if got := insecure.String(); got != "http://db.example.com:6334" {
		t.Fatalf("String()=%q, want %q", got, "http://db.example.com:6334")
	}
}

func TestConnectErrorMessage(t *testing.T) {
	t.Parallel()

	err := &ConnectError{
		Primary:  errors.New("tls handshake failed"),
		Fallback: errors.New("connection refused"),
	}

	msg := err.Error()
	if !strings.Contains(msg, "tls handshake failed") {
		t.Fatalf("ConnectError message missing primary cause: %q", msg)
	}
	if !strings.Contains(msg, "connection refused") {
		t.Fatalf("ConnectError message missing fallback cause: %q", msg)
	}
}
