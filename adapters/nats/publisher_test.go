package nats

import (
	"context"
	"encoding/json"
	"os"
	"testing"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/lborres/arena/core"
)

func TestSubject(t *testing.T) {
	tests := []struct {
		event string
		want  string
	}{
		{event: core.EventUserCreated, want: "arena.users.created"},
		{event: core.EventUserDeleted, want: "arena.users.deleted"},
		{event: core.EventScoreUpdated, want: "arena.scores.updated"},
		{event: core.EventSubmissionAdded, want: "arena.submissions.added"},
	}

	for _, test := range tests {
		if got := Subject(test.event); got != test.want {
			t.Errorf("Subject(%q) = %q, want %q", test.event, got, test.want)
		}
	}
}

func TestPublisher_Publish(t *testing.T) {
	url := os.Getenv("NATS_URL")
	if url == "" {
		url = nats.DefaultURL
	}
	config := DefaultConfig()
	config.URL = url
	config.MaxReconnects = 0

	pub, err := Connect(config)
	if err != nil {
		t.Skipf("nats not available: %v", err)
	}
	defer pub.Close()

	sub, err := pub.conn.SubscribeSync(Subject(core.EventScoreUpdated))
	if err != nil {
		t.Fatalf("SubscribeSync() error = %v", err)
	}

	// Act
	payload := map[string]any{"userId": "u1", "score": 42}
	if err := pub.Publish(context.Background(), core.EventScoreUpdated, payload); err != nil {
		t.Fatalf("Publish() error = %v", err)
	}

	// Assert
	msg, err := sub.NextMsg(2 * time.Second)
	if err != nil {
		t.Fatalf("NextMsg() error = %v", err)
	}
	var got map[string]any
	if err := json.Unmarshal(msg.Data, &got); err != nil {
		t.Fatalf("payload is not JSON: %v", err)
	}
	if got["userId"] != "u1" || got["score"] != float64(42) {
		t.Errorf("payload = %v", got)
	}
}

func TestPublisher_CanceledContext(t *testing.T) {
	// Requirement: a canceled context never reaches the connection
	p := &Publisher{}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := p.Publish(ctx, core.EventUserCreated, nil); err == nil {
		t.Error("Publish() with canceled context returned nil error")
	}
}
