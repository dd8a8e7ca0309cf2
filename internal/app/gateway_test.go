package app

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/samvad-hq/samvad-mirror-gateway/internal/config"
	"github.com/samvad-hq/samvad-mirror-gateway/internal/domain"
)

func testConfig(t *testing.T, providersFile, publishersFile string) *config.Config {
	t.Helper()
	return &config.Config{
		AppName:            "gateway-test",
		ListenAddr:         "127.0.0.1:0",
		ProvidersFile:      providersFile,
		PublishersFile:     publishersFile,
		AttemptTimeout:     time.Second,
		GlobalDeadline:     3 * time.Second,
		GuardBand:          100 * time.Millisecond,
		GateCookieName:     "yuki",
		GateCookieMaxAge:   time.Hour,
		TelemetryQueueSize: 8,
		ShutdownTimeout:    2 * time.Second,
	}
}

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestGatewayServesVideoThroughFallback(t *testing.T) {
	down := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer down.Close()

	var (
		mu        sync.Mutex
		telemetry []domain.ResolveReport
	)
	collector := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var evt struct {
			Report domain.ResolveReport `json:"report"`
		}
		if err := json.NewDecoder(r.Body).Decode(&evt); err == nil {
			mu.Lock()
			telemetry = append(telemetry, evt.Report)
			mu.Unlock()
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer collector.Close()

	up := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/videos/abc" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"title":"Fallback works","videoId":"abc","author":"A","authorId":"UCa"}`)
	}))
	defer up.Close()

	dir := t.TempDir()
	providersFile := writeFile(t, dir, "providers.yaml", "providers:\n  - base_url: "+down.URL+"\n    id: down\n  - base_url: "+up.URL+"\n    id: up\n")
	publishersFile := writeFile(t, dir, "publishers.yaml", "publishers:\n  - id: collector\n    type: http\n    http:\n      url: "+collector.URL+"\n")

	gw, err := NewGateway(context.Background(), testConfig(t, providersFile, publishersFile), nil)
	if err != nil {
		t.Fatalf("NewGateway: %v", err)
	}

	if gw.dispatcher == nil || gw.dispatcher.Sinks() != 1 {
		t.Fatalf("expected a dispatcher with one sink")
	}

	req := httptest.NewRequest(http.MethodGet, "/watch?v=abc", nil)
	req.AddCookie(&http.Cookie{Name: "yuki", Value: "True"})
	resp, err := gw.Handler().Test(req, -1)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK || !strings.Contains(string(body), "Fallback works") {
		t.Fatalf("unexpected response %d:\n%s", resp.StatusCode, body)
	}

	closeDispatcher(gw.dispatcher, gw.log, 2*time.Second)
	mu.Lock()
	defer mu.Unlock()
	if gw.dispatcher.Published() != 1 || len(telemetry) != 1 {
		t.Fatalf("expected one telemetry event, published=%d received=%d", gw.dispatcher.Published(), len(telemetry))
	}
	if r := telemetry[0]; r.ProviderID != "up" || len(r.Attempts) != 2 || r.Attempts[0].Outcome != domain.AttemptStatus {
		t.Fatalf("unexpected report %+v", r)
	}
}

func TestGatewayWithoutTelemetry(t *testing.T) {
	dir := t.TempDir()
	providersFile := writeFile(t, dir, "providers.yaml", "providers:\n  - base_url: https://mirror.example\n")

	gw, err := NewGateway(context.Background(), testConfig(t, providersFile, ""), nil)
	if err != nil {
		t.Fatalf("NewGateway: %v", err)
	}
	if gw.dispatcher != nil {
		t.Fatalf("dispatcher should be nil without publishers")
	}
}

func TestGatewayRunStopsOnCancel(t *testing.T) {
	gw, err := NewGateway(context.Background(), testConfig(t, "", ""), nil)
	if err != nil {
		t.Fatalf("NewGateway: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- gw.Run(ctx) }()

	time.Sleep(100 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run: %v", err)
		}
	case <-time.After(3 * time.Second):
		t.Fatalf("Run did not return after cancel")
	}
}

func TestNewGatewayRejectsBadProvidersFile(t *testing.T) {
	cfg := testConfig(t, filepath.Join(t.TempDir(), "missing.yaml"), "")
	if _, err := NewGateway(context.Background(), cfg, nil); err == nil {
		t.Fatalf("expected error for missing providers file")
	}
}

func TestNewGatewayRequiresConfig(t *testing.T) {
	if _, err := NewGateway(context.Background(), nil, nil); err == nil {
		t.Fatalf("expected error for nil config")
	}
}
