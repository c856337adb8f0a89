package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	chathttp "github.com/titipin/api/internal/chat/adapters/http"
	"github.com/titipin/api/internal/chat/adapters/memory"
	"github.com/titipin/api/internal/chat/app"
	"github.com/titipin/api/internal/chat/domain"
	"github.com/titipin/api/internal/chat/metrics"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

type noopDispatcher struct{}

func (noopDispatcher) DispatchMessageSent(context.Context, domain.MessageSentEvent) error {
	return nil
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	m, err := metrics.NewMetrics(mp.Meter("test"))
	if err != nil {
		t.Fatalf("NewMetrics() failed: %v", err)
	}

	repo := memory.NewRepository()
	logger := slog.New(slog.DiscardHandler)
	service := app.NewService(repo, noopDispatcher{}, logger, m, nil)
	handler := chathttp.NewHandler(service)

	mux := http.NewServeMux()
	handler.Register(mux)

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func postJSON(t *testing.T, url string, payload any) *http.Response {
	t.Helper()

	body, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	resp, err := http.Post(url, "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func messagePayload(content string) map[string]any {
	return map[string]any{
		"sender_id":    "shopper-1",
		"recipient_id": "traveler-1",
		"content":      content,
	}
}

func TestSubmitMessageEndpoint(t *testing.T) {
	t.Run("stores an allowed message", func(t *testing.T) {
		server := newTestServer(t)

		resp := postJSON(t, server.URL+"/v1/chats/chat-1/messages", messagePayload("is the blue one still in stock?"))

		if resp.StatusCode != http.StatusCreated {
			t.Fatalf("status = %d, want 201", resp.StatusCode)
		}

		var body struct {
			Message domain.Message `json:"message"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		if body.Message.ChatID != "chat-1" {
			t.Errorf("chat id = %s, want chat-1", body.Message.ChatID)
		}
	})

	t.Run("rejected content maps to 400 with the category", func(t *testing.T) {
		server := newTestServer(t)

		resp := postJSON(t, server.URL+"/v1/chats/chat-1/messages", messagePayload("just whatsapp me instead"))

		if resp.StatusCode != http.StatusBadRequest {
			t.Fatalf("status = %d, want 400", resp.StatusCode)
		}

		var body struct {
			Category string `json:"category"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		if body.Category != "social_handle" {
			t.Errorf("category = %s, want social_handle", body.Category)
		}

		list, err := http.Get(server.URL + "/v1/chats/chat-1/messages")
		if err != nil {
			t.Fatalf("request failed: %v", err)
		}
		defer list.Body.Close()

		var listBody struct {
			Messages []domain.Message `json:"messages"`
		}
		if err := json.NewDecoder(list.Body).Decode(&listBody); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		if len(listBody.Messages) != 0 {
			t.Error("rejected message was stored")
		}
	})
}

func TestMarkReadEndpoint(t *testing.T) {
	t.Run("reports how many messages flipped", func(t *testing.T) {
		server := newTestServer(t)

		for i := 0; i < 2; i++ {
			resp := postJSON(t, server.URL+"/v1/chats/chat-1/messages", messagePayload("any update on the pickup?"))
			if resp.StatusCode != http.StatusCreated {
				t.Fatalf("seed message failed with status %d", resp.StatusCode)
			}
		}

		resp := postJSON(t, server.URL+"/v1/chats/chat-1/read", map[string]any{"reader_id": "traveler-1"})
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("status = %d, want 200", resp.StatusCode)
		}

		var body struct {
			MarkedRead int64 `json:"marked_read"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		if body.MarkedRead != 2 {
			t.Errorf("marked_read = %d, want 2", body.MarkedRead)
		}
	})

	t.Run("requires a reader id", func(t *testing.T) {
		server := newTestServer(t)

		resp := postJSON(t, server.URL+"/v1/chats/chat-1/read", map[string]any{})
		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", resp.StatusCode)
		}
	})
}
