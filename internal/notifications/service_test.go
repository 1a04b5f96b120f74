package notifications

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"reelforge/internal/config"
	"reelforge/internal/jobs"
	"reelforge/internal/testsupport"
)

type recordedRequest struct {
	title    string
	tags     string
	priority string
	body     string
}

func recordingServer(t *testing.T) (*httptest.Server, func() []recordedRequest) {
	t.Helper()
	var mu sync.Mutex
	var requests []recordedRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		buf := make([]byte, r.ContentLength)
		r.Body.Read(buf)
		mu.Lock()
		requests = append(requests, recordedRequest{
			title:    r.Header.Get("Title"),
			tags:     r.Header.Get("Tags"),
			priority: r.Header.Get("Priority"),
			body:     string(buf),
		})
		mu.Unlock()
	}))
	t.Cleanup(server.Close)
	return server, func() []recordedRequest {
		mu.Lock()
		defer mu.Unlock()
		return append([]recordedRequest(nil), requests...)
	}
}

func serviceFor(t *testing.T, url string) Service {
	t.Helper()
	return NewService(testsupport.NewConfig(t, testsupport.WithWebhook(url)))
}

func TestNewServiceReturnsNoopWithoutWebhook(t *testing.T) {
	svc := NewService(&config.Config{})
	if _, ok := svc.(noopService); !ok {
		t.Fatalf("expected noop service, got %T", svc)
	}
	if err := svc.NotifyJobStarted(context.Background(), "x"); err != nil {
		t.Fatalf("noop must not error: %v", err)
	}
}

func TestNotifyJobCompletedVideo(t *testing.T) {
	server, requests := recordingServer(t)
	svc := serviceFor(t, server.URL)

	err := svc.NotifyJobCompleted(context.Background(), "My Short", "video", 42*time.Second)
	if err != nil {
		t.Fatalf("NotifyJobCompleted: %v", err)
	}

	got := requests()
	if len(got) != 1 {
		t.Fatalf("request count = %d", len(got))
	}
	if got[0].title != "Reelforge - Complete" {
		t.Fatalf("title = %q", got[0].title)
	}
	if got[0].priority != "high" {
		t.Fatalf("priority = %q", got[0].priority)
	}
}

func TestNotifyJobCompletedDegradedKind(t *testing.T) {
	server, requests := recordingServer(t)
	svc := serviceFor(t, server.URL)

	if err := svc.NotifyJobCompleted(context.Background(), "My Short", "slideshow", time.Minute); err != nil {
		t.Fatal(err)
	}
	got := requests()
	if got[0].title != "Reelforge - Complete (degraded)" {
		t.Fatalf("title = %q", got[0].title)
	}
}

func TestNotifyFailureSurfacesServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "denied", http.StatusForbidden)
	}))
	defer server.Close()

	svc := serviceFor(t, server.URL)
	if err := svc.NotifyJobFailed(context.Background(), "x", "boom"); err == nil {
		t.Fatal("expected error for 403 response")
	}
}

func TestObservePushesTerminalEvents(t *testing.T) {
	server, requests := recordingServer(t)
	svc := serviceFor(t, server.URL)

	tracker := jobs.NewTracker("Observed Short", nil)
	cancel := Observe(context.Background(), svc, tracker)
	defer cancel()

	tracker.Start()
	tracker.SetProgress(50) // non-terminal events must not notify
	tracker.Complete("/out/a.mp4", "video")

	got := requests()
	if len(got) != 1 {
		t.Fatalf("request count = %d: %+v", len(got), got)
	}
	if got[0].title != "Reelforge - Complete" {
		t.Fatalf("title = %q", got[0].title)
	}
}
