package push

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestHTTPSenderSend(t *testing.T) {
	var received Delivery
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if err := json.NewDecoder(r.Body).Decode(&received); err != nil {
			t.Errorf("decode body: %v", err)
		}
		w.WriteHeader(http.StatusAccepted)
	}))
	defer server.Close()

	sender := NewHTTPSender(server.URL)

	d := Delivery{DeliveryID: "abc", UserID: "user-1", Title: "You won!", Message: "First place"}
	if err := sender.Send(context.Background(), d); err != nil {
		t.Fatalf("Send error: %v", err)
	}

	if received != d {
		t.Errorf("gateway received %+v, want %+v", received, d)
	}
}

func TestHTTPSenderSendGatewayError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "overloaded", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	sender := NewHTTPSender(server.URL)

	err := sender.Send(context.Background(), Delivery{DeliveryID: "abc", UserID: "user-1"})
	if err == nil {
		t.Fatal("expected error for non-2xx response")
	}
}

func TestHTTPSenderSendUnreachable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // immediately unreachable

	sender := NewHTTPSender(server.URL)

	if err := sender.Send(context.Background(), Delivery{DeliveryID: "abc"}); err == nil {
		t.Fatal("expected error for unreachable gateway")
	}
}
