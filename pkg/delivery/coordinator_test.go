package delivery

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"costwatch/pkg/report"
)

type sentMessage struct {
	channel  string
	text     string
	threadTS string
}

// fakeTransport records sends and fails on demand per text content
type fakeTransport struct {
	sent   []sentMessage
	failOn map[string]error
	nextTS int
}

func newFakeTransport() *fakeTransport {
	return &fakeTransport{failOn: map[string]error{}}
}

func (f *fakeTransport) PostMessage(_ context.Context, channel, text, threadTS string) (string, error) {
	if err, ok := f.failOn[text]; ok {
		return "", err
	}
	f.sent = append(f.sent, sentMessage{channel: channel, text: text, threadTS: threadTS})
	f.nextTS++
	return fmt.Sprintf("ts-%d", f.nextTS), nil
}

func rendered() *report.Rendered {
	return &report.Rendered{
		Summary: "summary",
		Details: []report.Detail{
			{Service: "BigQuery", Text: "detail-1"},
			{Service: "Compute Engine", Text: "detail-2"},
			{Service: "Storage", Text: "detail-3"},
		},
	}
}

func TestDeliverThreadsInOrder(t *testing.T) {
	transport := newFakeTransport()
	result, err := NewCoordinator(transport).Deliver(context.Background(), "C123", rendered())
	if err != nil {
		t.Fatalf("Deliver failed: %v", err)
	}

	if result.SummaryTS != "ts-1" {
		t.Errorf("summary ts = %q", result.SummaryTS)
	}
	if result.RepliesSent != 3 {
		t.Errorf("replies sent = %d, want 3", result.RepliesSent)
	}

	if len(transport.sent) != 4 {
		t.Fatalf("sent %d messages, want 4", len(transport.sent))
	}
	if transport.sent[0].threadTS != "" {
		t.Error("summary must not be threaded")
	}
	wantOrder := []string{"detail-1", "detail-2", "detail-3"}
	for i, want := range wantOrder {
		msg := transport.sent[i+1]
		if msg.text != want {
			t.Errorf("reply %d = %q, want %q", i, msg.text, want)
		}
		if msg.threadTS != "ts-1" {
			t.Errorf("reply %d threadTS = %q, want ts-1", i, msg.threadTS)
		}
	}
}

func TestDeliverSummaryFailureAbortsChannel(t *testing.T) {
	transport := newFakeTransport()
	transport.failOn["summary"] = errors.New("channel_not_found")

	result, err := NewCoordinator(transport).Deliver(context.Background(), "C123", rendered())
	if err == nil {
		t.Fatal("expected error")
	}
	if result.RepliesSent != 0 {
		t.Errorf("replies sent = %d, want 0", result.RepliesSent)
	}
	if len(transport.sent) != 0 {
		t.Errorf("no replies should be attempted after summary failure, sent %d", len(transport.sent))
	}
}

func TestDeliverReplyFailureStopsRemaining(t *testing.T) {
	transport := newFakeTransport()
	transport.failOn["detail-2"] = errors.New("permanent failure")

	result, err := NewCoordinator(transport).Deliver(context.Background(), "C123", rendered())
	if err == nil {
		t.Fatal("expected error")
	}
	if result.RepliesSent != 1 {
		t.Errorf("replies sent = %d, want 1", result.RepliesSent)
	}
	// detail-3 must not be sent out of order after detail-2 failed
	for _, msg := range transport.sent {
		if msg.text == "detail-3" {
			t.Error("later reply sent despite earlier failure")
		}
	}
}
