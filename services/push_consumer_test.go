package services

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func newExpoServer(t *testing.T, status string, received *[]PushMessage) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.Header.Get("Content-Type") != "application/json" {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}
		var msgs []PushMessage
		if err := json.NewDecoder(r.Body).Decode(&msgs); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		*received = append(*received, msgs...)
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"data": []map[string]string{{"status": status, "message": "DeviceNotRegistered"}},
		})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestHandleMessage(t *testing.T) {
	var received []PushMessage
	srv := newExpoServer(t, "ok", &received)
	consumer := NewPushConsumer("", NewExpoPushClient(srv.URL))

	body, _ := json.Marshal(NewPushMessage("bob has checked out", "ExponentPushToken[bob]"))
	if err := consumer.HandleMessage(context.Background(), body); err != nil {
		t.Fatalf("HandleMessage() error = %v", err)
	}
	if len(received) != 1 || received[0].Body != "bob has checked out" || received[0].To != "ExponentPushToken[bob]" {
		t.Errorf("unexpected delivery %+v", received)
	}
}

func TestHandleMessageErrors(t *testing.T) {
	var received []PushMessage
	failing := newExpoServer(t, "error", &received)
	consumer := NewPushConsumer("", NewExpoPushClient(failing.URL))
	ctx := context.Background()

	if err := consumer.HandleMessage(ctx, []byte("{")); err == nil || Retryable(err) {
		t.Errorf("malformed JSON: got %v, want a permanent error", err)
	}

	bad, _ := json.Marshal(PushMessage{To: "nope", Body: "x"})
	if err := consumer.HandleMessage(ctx, bad); !errors.Is(err, ErrInvalidPushToken) || Retryable(err) {
		t.Errorf("invalid token: got %v", err)
	}
	if len(received) != 0 {
		t.Error("invalid messages must not reach the push service")
	}

	good, _ := json.Marshal(NewPushMessage("x", "ExpoPushToken[abc]"))
	if err := consumer.HandleMessage(ctx, good); err == nil || Retryable(err) {
		t.Errorf("error ticket: got %v, want a permanent error", err)
	}

	down := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer down.Close()
	if err := NewExpoPushClient(down.URL).Send(ctx, []PushMessage{NewPushMessage("x", "ExpoPushToken[abc]")}); !Retryable(err) {
		t.Errorf("503: got %v, want a retryable error", err)
	}
}

func TestSendClassifiesFailures(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		retryable bool
	}{
		{"unavailable", http.StatusServiceUnavailable, true},
		{"bad gateway", http.StatusBadGateway, true},
		{"rate limited", http.StatusTooManyRequests, true},
		{"bad request", http.StatusBadRequest, false},
		{"unauthorized", http.StatusUnauthorized, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			}))
			defer srv.Close()

			err := NewExpoPushClient(srv.URL).Send(context.Background(), []PushMessage{NewPushMessage("x", "ExpoPushToken[abc]")})
			if err == nil {
				t.Fatal("expected an error")
			}
			if got := Retryable(err); got != tt.retryable {
				t.Errorf("Retryable(%v) = %v, want %v", err, got, tt.retryable)
			}
		})
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()
	err := NewExpoPushClient(url).Send(context.Background(), []PushMessage{NewPushMessage("x", "ExpoPushToken[abc]")})
	if err == nil || !Retryable(err) {
		t.Errorf("connection refused: got %v, want a retryable error", err)
	}
}
