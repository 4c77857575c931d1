package payment

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func TestNewHTTPClientValidatesURL(t *testing.T) {
	if _, err := NewHTTPClient("://bad-url", testLogger()); err == nil {
		t.Fatal("expected error for invalid url")
	}
	if _, err := NewHTTPClient("/relative", testLogger()); err == nil {
		t.Fatal("expected error for relative url")
	}
}

func TestHTTPClientVerifyHold(t *testing.T) {
	charges := map[string]Charge{
		"charge-held":    {Reference: "charge-held", Status: "held", Amount: 5000},
		"charge-partial": {Reference: "charge-partial", Status: "held", Amount: 100},
		"charge-settled": {Reference: "charge-settled", Status: "settled", Amount: 5000},
	}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ref := r.URL.Path[len("/api/charges/"):]
		charge, ok := charges[ref]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(charge)
	}))
	defer server.Close()

	client, err := NewHTTPClient(server.URL, testLogger())
	if err != nil {
		t.Fatalf("failed to create client: %v", err)
	}

	tests := []struct {
		name      string
		chargeRef string
		amount    int64
		wantErr   error
	}{
		{"held for full amount", "charge-held", 5000, nil},
		{"held above requested amount", "charge-held", 1200, nil},
		{"held below requested amount", "charge-partial", 5000, ErrChargeNotHeld},
		{"already settled", "charge-settled", 5000, ErrChargeNotHeld},
		{"unknown charge", "charge-missing", 5000, ErrChargeNotHeld},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := client.VerifyHold(context.Background(), tc.chargeRef, tc.amount)
			if tc.wantErr == nil {
				if err != nil {
					t.Fatalf("expected success, got %v", err)
				}
				return
			}
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("expected %v, got %v", tc.wantErr, err)
			}
		})
	}
}

func TestHTTPClientVerifyHoldServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client, err := NewHTTPClient(server.URL, testLogger())
	if err != nil {
		t.Fatalf("failed to create client: %v", err)
	}
	if err := client.VerifyHold(context.Background(), "charge-1", 10); err == nil {
		t.Fatal("expected error for server failure")
	}
}

func TestHTTPClientVerifyHoldBadBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("not json"))
	}))
	defer server.Close()

	client, err := NewHTTPClient(server.URL, testLogger())
	if err != nil {
		t.Fatalf("failed to create client: %v", err)
	}
	if err := client.VerifyHold(context.Background(), "charge-1", 10); err == nil {
		t.Fatal("expected error for malformed body")
	}
}

func TestStaticClient(t *testing.T) {
	if err := (StaticClient{}).VerifyHold(context.Background(), "anything", 100); err != nil {
		t.Fatalf("expected static client to accept, got %v", err)
	}
}
