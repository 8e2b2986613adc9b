package slack

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"costwatch/pkg/config"
)

func testClient(serverURL string) *Client {
	c := NewClient(&config.SlackConfig{
		BotToken:       "xoxb-test",
		MaxRetries:     2,
		RetryDelay:     1,
		Timeout:        5,
		MessagesPerSec: 1000,
	})
	c.baseURL = serverURL
	c.retryDelay = 5 * time.Millisecond
	return c
}

func TestPostMessageSuccess(t *testing.T) {
	var got postMessageRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat.postMessage" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer xoxb-test" {
			t.Errorf("auth header = %q", auth)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		json.NewEncoder(w).Encode(postMessageResponse{OK: true, TS: "1724900000.000100"})
	}))
	defer server.Close()

	ts, err := testClient(server.URL).PostMessage(context.Background(), "C123", "hello", "")
	if err != nil {
		t.Fatalf("PostMessage failed: %v", err)
	}
	if ts != "1724900000.000100" {
		t.Errorf("ts = %q", ts)
	}
	if got.Channel != "C123" || got.Text != "hello" {
		t.Errorf("request = %+v", got)
	}
	if got.ThreadTS != "" {
		t.Errorf("thread_ts should be empty, got %q", got.ThreadTS)
	}
}

func TestPostMessageThreaded(t *testing.T) {
	var got postMessageRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&got)
		json.NewEncoder(w).Encode(postMessageResponse{OK: true, TS: "1.2"})
	}))
	defer server.Close()

	_, err := testClient(server.URL).PostMessage(context.Background(), "C123", "reply", "1724900000.000100")
	if err != nil {
		t.Fatalf("PostMessage failed: %v", err)
	}
	if got.ThreadTS != "1724900000.000100" {
		t.Errorf("thread_ts = %q", got.ThreadTS)
	}
}

func TestPostMessageRetriesTransient(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		json.NewEncoder(w).Encode(postMessageResponse{OK: true, TS: "1.2"})
	}))
	defer server.Close()

	ts, err := testClient(server.URL).PostMessage(context.Background(), "C123", "hi", "")
	if err != nil {
		t.Fatalf("PostMessage failed after retry: %v", err)
	}
	if ts != "1.2" {
		t.Errorf("ts = %q", ts)
	}
	if attempts != 2 {
		t.Errorf("attempts = %d, want 2", attempts)
	}
}

func TestPostMessagePermanentNoRetry(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		json.NewEncoder(w).Encode(postMessageResponse{OK: false, Error: "invalid_auth"})
	}))
	defer server.Close()

	_, err := testClient(server.URL).PostMessage(context.Background(), "C123", "hi", "")
	if err == nil {
		t.Fatal("expected error")
	}
	if !IsPermanent(err) {
		t.Errorf("invalid_auth should be permanent, got %v", err)
	}
	if attempts != 1 {
		t.Errorf("attempts = %d, permanent errors must not retry", attempts)
	}
}

func TestPostMessageExhaustsRetries(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	_, err := testClient(server.URL).PostMessage(context.Background(), "C123", "hi", "")
	if err == nil {
		t.Fatal("expected error after exhausting retries")
	}
	if attempts != 3 { // initial + 2 retries
		t.Errorf("attempts = %d, want 3", attempts)
	}
}

func TestPostMessageCapturesRetryAfter(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "30")
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	_, err := testClient(server.URL).doPostMessage(context.Background(), "C123", "hi", "")
	if err == nil {
		t.Fatal("expected error")
	}
	apiErr, ok := err.(*APIError)
	if !ok {
		t.Fatalf("expected *APIError, got %T", err)
	}
	if apiErr.RetryAfter != 30*time.Second {
		t.Errorf("RetryAfter = %v, want 30s", apiErr.RetryAfter)
	}
	if !apiErr.Transient {
		t.Error("429 must be transient")
	}
}

func TestErrorClassification(t *testing.T) {
	if !IsTransient(newAPIError("rate_limited", 429)) {
		t.Error("rate_limited should be transient")
	}
	if !IsPermanent(newAPIError("channel_not_found", 200)) {
		t.Error("channel_not_found should be permanent")
	}
	if IsPermanent(newAPIError("internal_error", 200)) {
		t.Error("unknown api error should default to transient")
	}
	if IsTransient(nil) {
		t.Error("nil error is not transient")
	}
}
