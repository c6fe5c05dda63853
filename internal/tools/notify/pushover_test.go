package notify

import (
	"bytes"
	"context"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync"
	"testing"
	"time"
)

func TestPushSendsForm(t *testing.T) {
	received := make(chan map[string]string, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Errorf("ParseForm: %v", err)
		}
		received <- map[string]string{
			"token":   r.PostForm.Get("token"),
			"user":    r.PostForm.Get("user"),
			"message": r.PostForm.Get("message"),
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	client := NewClient("app-token", "user-key", WithEndpoint(srv.URL))
	if err := client.Push(context.Background(), "task finished"); err != nil {
		t.Fatalf("Push: %v", err)
	}

	got := <-received
	if got["token"] != "app-token" || got["user"] != "user-key" || got["message"] != "task finished" {
		t.Errorf("form = %v", got)
	}
}

func TestPushAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	client := NewClient("t", "u", WithEndpoint(srv.URL))
	if err := client.Push(context.Background(), "m"); err == nil {
		t.Fatal("expected error on 400")
	}
}

func TestNotificationToolFireAndForget(t *testing.T) {
	received := make(chan string, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = r.ParseForm()
		received <- r.PostForm.Get("message")
	}))
	defer srv.Close()

	tool := NewNotificationTool(NewClient("t", "u", WithEndpoint(srv.URL)))

	out, err := tool.Fn(context.Background(), map[string]any{"message": "heads up"})
	if err != nil {
		t.Fatalf("tool: %v", err)
	}
	if out != "notification queued" {
		t.Errorf("out = %q", out)
	}

	// The tool returns before delivery; the push still arrives.
	select {
	case msg := <-received:
		if msg != "heads up" {
			t.Errorf("delivered message = %q", msg)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("notification never delivered")
	}
}

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestNotificationToolLogsDeliveryFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	var logs syncBuffer
	log.SetOutput(&logs)
	defer log.SetOutput(os.Stderr)

	tool := NewNotificationTool(NewClient("t", "u", WithEndpoint(srv.URL)))
	out, err := tool.Fn(context.Background(), map[string]any{"message": "heads up"})
	if err != nil {
		t.Fatalf("tool: %v", err)
	}
	if out != "notification queued" {
		t.Errorf("out = %q", out)
	}

	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if strings.Contains(logs.String(), "notification delivery failed") {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("delivery failure was never logged")
}

func TestNotificationToolRejectsEmptyMessage(t *testing.T) {
	tool := NewNotificationTool(NewClient("t", "u"))
	if _, err := tool.Fn(context.Background(), map[string]any{"message": " "}); err == nil {
		t.Fatal("expected error for blank message")
	}
}
