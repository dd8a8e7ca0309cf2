package httpclient

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestRestyClientReturnsNon2xxAsResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("X-Test"); got != "1" {
			t.Errorf("missing header, got %q", got)
		}
		if got := r.Header.Get("Accept"); got != defaultAccept {
			t.Errorf("accept header = %q", got)
		}
		http.Error(w, "nope", http.StatusBadGateway)
	}))
	defer srv.Close()

	resp, err := NewRestyClient(time.Second).Get(context.Background(), srv.URL, map[string]string{"X-Test": "1"})
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if resp.StatusCode() != http.StatusBadGateway {
		t.Fatalf("status = %d", resp.StatusCode())
	}
}

func TestRestyClientTimeoutIsDetected(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		<-release
	}))
	defer srv.Close()
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	_, err := NewRestyClient(time.Second).Get(ctx, srv.URL, nil)
	if err == nil {
		t.Fatalf("expected timeout error")
	}
	if !IsTimeout(err) {
		t.Fatalf("expected IsTimeout to be true for %v", err)
	}
}

func TestIsTimeout(t *testing.T) {
	if IsTimeout(nil) {
		t.Fatalf("nil is not a timeout")
	}
	if IsTimeout(errors.New("connection refused")) {
		t.Fatalf("plain error is not a timeout")
	}
	if !IsTimeout(context.DeadlineExceeded) {
		t.Fatalf("deadline exceeded is a timeout")
	}
}
