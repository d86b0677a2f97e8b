package notification

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func TestRedisSinkPublishesIntentJSON(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	sink := NewRedisSink(client, "test-notifications", zap.NewNop())

	sub := client.Subscribe(context.Background(), "test-notifications")
	defer sub.Close()
	if _, err := sub.Receive(context.Background()); err != nil {
		t.Fatalf("subscribe: %v", err)
	}

	intent := Intent{
		RecipientID: "worker-1",
		ComplaintID: "c-1",
		Kind:        KindReminder,
		Message:     "complaint c-1 is due in 2h",
	}
	if err := sink.Deliver(context.Background(), intent); err != nil {
		t.Fatalf("deliver: %v", err)
	}

	select {
	case msg := <-sub.Channel():
		var got Intent
		if err := json.Unmarshal([]byte(msg.Payload), &got); err != nil {
			t.Fatalf("unmarshal payload: %v", err)
		}
		if got != intent {
			t.Fatalf("published intent = %+v, want %+v", got, intent)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no message received on channel")
	}
}

func TestRedisSinkDefaultChannel(t *testing.T) {
	sink := NewRedisSink(nil, "", zap.NewNop())
	if sink.channel != "complaint-notifications" {
		t.Fatalf("channel = %q, want default", sink.channel)
	}
}
