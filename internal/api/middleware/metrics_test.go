package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

func TestNormalizePath(t *testing.T) {
	cases := []struct{ in, want string }{
		{"/ws/some-token", "/ws/:token"},
		{"/api/v1/chat/rooms/property/42", "/api/v1/chat/rooms/property/:id"},
		{"/api/v1/chat/rooms/room1/messages", "/api/v1/chat/rooms/:id"},
		{"/api/v1/chat/rooms", "/api/v1/chat/rooms"},
		{"/health", "/health"},
	}
	for _, c := range cases {
		if got := normalizePath(c.in); got != c.want {
			t.Fatalf("normalizePath(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

// The connection entry point lives behind the metrics and logging
// middleware, so the wrapped writer must still hand the TCP connection
// to the websocket upgrade.
func TestMetricsAllowsWebsocketUpgrade(t *testing.T) {
	upgrader := websocket.Upgrader{}
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade failed through middleware: %v", err)
			return
		}
		defer conn.Close()
		mt, msg, err := conn.ReadMessage()
		if err != nil {
			return
		}
		conn.WriteMessage(mt, msg)
	})

	srv := httptest.NewServer(Metrics(Logger(zerolog.Nop())(inner)))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/some-token"
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial failed: %v", err)
	}
	defer conn.Close()
	if resp.StatusCode != http.StatusSwitchingProtocols {
		t.Fatalf("expected 101, got %d", resp.StatusCode)
	}

	if err := conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"typing"}`)); err != nil {
		t.Fatal(err)
	}
	_, echo, err := conn.ReadMessage()
	if err != nil {
		t.Fatal(err)
	}
	if string(echo) != `{"type":"typing"}` {
		t.Fatalf("unexpected echo %q", echo)
	}
}

func TestStatusWriterHijackUnsupported(t *testing.T) {
	// httptest.ResponseRecorder cannot hijack; the error must surface
	// instead of panicking.
	w := &statusWriter{ResponseWriter: httptest.NewRecorder()}
	if _, _, err := w.Hijack(); err == nil {
		t.Fatal("expected an error from a non-hijackable writer")
	}
}
