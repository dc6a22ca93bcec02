package models

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dohr-michael/todomind/internal/config"
)

func TestOllamaConfig_Defaults(t *testing.T) {
	got, err := ollamaConfig(config.ProviderConfig{Driver: "ollama", Model: "llama3.2"})
	if err != nil {
		t.Fatalf("ollamaConfig: %v", err)
	}
	if got.BaseURL != "http://localhost:11434" {
		t.Errorf("base url: got %q", got.BaseURL)
	}
	if got.Timeout != 300*time.Second {
		t.Errorf("timeout: got %v", got.Timeout)
	}
	if got.Options == nil || got.Options.Temperature != 0 || got.Options.NumPredict != 0 {
		t.Errorf("expected zero options, got %+v", got.Options)
	}
}

func TestOllamaConfig_RequiresModel(t *testing.T) {
	_, err := ollamaConfig(config.ProviderConfig{Driver: "ollama"})
	if err == nil || !strings.Contains(err.Error(), "model is required") {
		t.Fatalf("expected model required error, got %v", err)
	}
}

func TestOllamaConfig_Options(t *testing.T) {
	temp, top := 0.2, 0.9
	cfg := config.ProviderConfig{
		Driver:    "ollama",
		Model:     "qwen2.5",
		BaseURL:   "http://gpu-box:11434",
		MaxTokens: 256,
		Timeout:   config.Duration(45 * time.Second),
		Options: map[string]any{
			"temperature": temp,
			"top_p":       top,
			"num_ctx":     float64(8192),
			"top_k":       float64(40),
		},
	}
	got, err := ollamaConfig(cfg)
	if err != nil {
		t.Fatalf("ollamaConfig: %v", err)
	}
	if got.BaseURL != "http://gpu-box:11434" || got.Timeout != 45*time.Second {
		t.Errorf("unexpected endpoint %q %v", got.BaseURL, got.Timeout)
	}
	o := got.Options
	if o.Temperature != float32(temp) || o.TopP != float32(top) {
		t.Errorf("sampling: temperature %v top_p %v", o.Temperature, o.TopP)
	}
	if o.NumCtx != 8192 || o.TopK != 40 || o.NumPredict != 256 {
		t.Errorf("limits: %+v", o)
	}

	cfg.Options["num_predict"] = float64(64)
	got, _ = ollamaConfig(cfg)
	if got.Options.NumPredict != 64 {
		t.Errorf("expected num_predict to win over max_tokens, got %d", got.Options.NumPredict)
	}
}

func TestOllamaTransport(t *testing.T) {
	tests := []struct {
		name        string
		contentType string
		status      int
		body        string
		wantErr     string // substring of ErrModelUnavailable.Body, "" for success
	}{
		{"json", "application/json", http.StatusOK, `{"model":"llama3.2"}`, ""},
		{"ndjson stream", "application/x-ndjson", http.StatusOK, `{"done":false}` + "\n", ""},
		{"no content type", "", http.StatusOK, `{}`, ""},
		{"plain text proxy", "text/plain", http.StatusOK, "no available server", "no available server"},
		{"html gateway", "text/html", http.StatusOK, "<h1>Bad Gateway</h1>", "Bad Gateway"},
		{"server error", "application/json", http.StatusServiceUnavailable, `{"error":"model loading"}`, "model loading"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				if tt.contentType != "" {
					w.Header().Set("Content-Type", tt.contentType)
				} else {
					w.Header()["Content-Type"] = nil
				}
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.body)
			}))
			defer srv.Close()

			transport := &ollamaTransport{inner: http.DefaultTransport, provider: "ollama"}
			req, _ := http.NewRequest(http.MethodPost, srv.URL+"/api/chat", nil)
			resp, err := transport.RoundTrip(req)

			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				defer resp.Body.Close()
				data, _ := io.ReadAll(resp.Body)
				if string(data) != tt.body {
					t.Errorf("body: got %q, want %q", data, tt.body)
				}
				return
			}

			var unavail *ErrModelUnavailable
			if !errors.As(err, &unavail) {
				t.Fatalf("expected ErrModelUnavailable, got %T: %v", err, err)
			}
			if unavail.Provider != "ollama" || !strings.Contains(unavail.Body, tt.wantErr) {
				t.Errorf("unexpected error %+v", unavail)
			}
		})
	}
}

func TestOllamaTransport_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	transport := &ollamaTransport{inner: http.DefaultTransport, provider: "ollama"}
	req, _ := http.NewRequest(http.MethodPost, url+"/api/chat", nil)
	_, err := transport.RoundTrip(req)

	var unavail *ErrModelUnavailable
	if !errors.As(err, &unavail) || unavail.Cause == nil {
		t.Fatalf("expected ErrModelUnavailable with cause, got %v", err)
	}
}
