package rabbitmq_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/orielmalik/people-directory/business/brokertest"
)

const queueTest = "queue_people_events_test"

func TestClient(t *testing.T) {
	//slow machine
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute*2)
	defer cancel()

	client := brokertest.NewTestClient(t, ctx, "test_rabbitmqClient")

	if err := client.DeclareQueue(queueTest); err != nil {
		t.Fatalf("expected to declare queue %s: %s", queueTest, err)
	}

	//publish
	msg := map[string]string{
		"kind":  "created",
		"email": "john@gmail.com",
	}
	bs, err := json.Marshal(msg)
	if err != nil {
		t.Fatalf("marshalling msg: %s", err)
	}

	if err := client.Publish(queueTest, bs); err != nil {
		t.Fatalf("expected to publish into %s: %s", queueTest, err)
	}

	msgs, err := client.Consumer(queueTest)
	if err != nil {
		t.Fatalf("expected to get delivery channel: %s", err)
	}

	delivery := <-msgs
	if delivery.ContentType != "application/json" {
		t.Errorf("contentType= %s, got %s", "application/json", delivery.ContentType)
	}

	var parsedMsg map[string]string
	if err := json.Unmarshal(delivery.Body, &parsedMsg); err != nil {
		t.Fatalf("expected msg to be parsed into map: %s", err)
	}

	if parsedMsg["email"] != msg["email"] {
		t.Errorf("email= %s, got %s", msg["email"], parsedMsg["email"])
	}
}
