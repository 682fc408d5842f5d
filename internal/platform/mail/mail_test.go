package mail

import (
	"context"
	"testing"
)

func TestMockSenderRecordsCalls(t *testing.T) {
	sender := &MockSender{}

	id, err := sender.Send(context.Background(), Message{
		From:    "alertas@example.com",
		To:      []string{"dr@example.com"},
		Subject: "Alerta",
	})
	if err != nil {
		t.Fatalf("Send failed: %v", err)
	}
	if id != "mock-message-id" {
		t.Errorf("unexpected message id: %q", id)
	}

	calls := sender.Calls()
	if len(calls) != 1 || calls[0].To[0] != "dr@example.com" {
		t.Errorf("unexpected recorded calls: %+v", calls)
	}
}

func TestMockSenderFailure(t *testing.T) {
	sender := &MockSender{ShouldFail: true, FailError: "ses down"}

	if _, err := sender.Send(context.Background(), Message{}); err == nil {
		t.Fatal("expected send failure")
	} else if err.Error() != "ses down" {
		t.Errorf("unexpected error: %v", err)
	}

	// Failed sends are still recorded.
	if len(sender.Calls()) != 1 {
		t.Errorf("expected failed call recorded, got %d", len(sender.Calls()))
	}
}
