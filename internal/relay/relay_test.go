package relay

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"chessmind/internal/core"
)

func TestGenerateSuccess(t *testing.T) {
	var got Request
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/generate" {
			t.Errorf("path = %q, want /v1/generate", r.URL.Path)
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer test-key" {
			t.Errorf("authorization header = %q", auth)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("content type = %q", ct)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode request: %v", err)
		}
		json.NewEncoder(w).Encode(Response{Result: "Move: e2e4", Success: true})
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL, "test-key")
	resp, err := c.Generate(context.Background(), Request{
		Instruction: "choose a move",
		Temperature: 0.3,
		Task:        "move",
		Position:    "some-fen",
	})
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if resp.Result != "Move: e2e4" {
		t.Fatalf("result = %q", resp.Result)
	}
	if got.Task != "move" || got.Position != "some-fen" {
		t.Fatalf("relay received %+v", got)
	}
}

func TestGenerateNoAuthHeaderWithoutKey(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if auth := r.Header.Get("Authorization"); auth != "" {
			t.Errorf("unexpected authorization header %q", auth)
		}
		json.NewEncoder(w).Encode(Response{Result: "ok", Success: true})
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL, "")
	if _, err := c.Generate(context.Background(), Request{}); err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
}

func TestGenerateErrorsAreTransport(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{
			name: "http error status",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusBadGateway)
			},
		},
		{
			name: "invalid json",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte("not json"))
			},
		},
		{
			name: "relay-side failure",
			handler: func(w http.ResponseWriter, r *http.Request) {
				json.NewEncoder(w).Encode(Response{Success: false, Error: "model overloaded"})
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			c := NewHTTPClient(srv.URL, "")
			_, err := c.Generate(context.Background(), Request{})
			if !errors.Is(err, core.ErrTransport) {
				t.Fatalf("error = %v, want ErrTransport", err)
			}
		})
	}
}

func TestGenerateUnreachableHost(t *testing.T) {
	c := NewHTTPClient("http://127.0.0.1:1", "")
	_, err := c.Generate(context.Background(), Request{})
	if !errors.Is(err, core.ErrTransport) {
		t.Fatalf("error = %v, want ErrTransport", err)
	}
}
