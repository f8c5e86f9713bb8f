package relay

import (
	"bytes"
	"context"
	"encoding/json"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"wordcircuit/internal/app"
	"wordcircuit/internal/domain"
	"wordcircuit/internal/wire"
)

func newTestRelay(t *testing.T) (*httptest.Server, *app.PeerTokenService) {
	t.Helper()
	tokens := app.NewPeerTokenService("relay-secret", "wordcircuit", time.Minute)
	srv := httptest.NewServer(NewServer(NewHub(zerolog.Nop()), tokens, zerolog.Nop()).Handler())
	t.Cleanup(srv.Close)
	return srv, tokens
}

func wsURL(srv *httptest.Server) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func encodedGame(t *testing.T, seed int64) []byte {
	t.Helper()
	svc := app.NewService(rand.New(rand.NewSource(seed)), nil, zerolog.Nop())
	game, _ := svc.NewGame(domain.Modes{})
	return wire.MarshalSnapshot(game.Snapshot(domain.SideA, domain.IntentInit))
}

func dialSide(t *testing.T, srv *httptest.Server, tokens *app.PeerTokenService, room string, side domain.Side) *Client {
	t.Helper()
	tok, err := tokens.Issue(room, "user-"+side.String(), side)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	c, err := Dial(ctx, wsURL(srv), room, tok)
	if err != nil {
		t.Fatalf("Dial side %s: %v", side, err)
	}
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func receive(t *testing.T, c *Client) []byte {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	data, err := c.Receive(ctx)
	if err != nil {
		t.Fatalf("Receive: %v", err)
	}
	return data
}

func waitForStatus(t *testing.T, srv *httptest.Server, room string, ok func(RoomStatus) bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		resp, err := http.Get(srv.URL + "/rooms/" + room)
		if err == nil {
			var st RoomStatus
			decodeErr := json.NewDecoder(resp.Body).Decode(&st)
			resp.Body.Close()
			if resp.StatusCode == http.StatusOK && decodeErr == nil && ok(st) {
				return
			}
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("room %s never reached the expected state", room)
}

func TestRelayForwardsSnapshot(t *testing.T) {
	srv, tokens := newTestRelay(t)
	room := uuid.NewString()

	a := dialSide(t, srv, tokens, room, domain.SideA)
	b := dialSide(t, srv, tokens, room, domain.SideB)

	payload := encodedGame(t, 1)
	if err := a.Send(context.Background(), payload); err != nil {
		t.Fatalf("Send: %v", err)
	}
	if got := receive(t, b); !bytes.Equal(got, payload) {
		t.Fatalf("forwarded payload differs: %d bytes, want %d", len(got), len(payload))
	}

	reply := encodedGame(t, 2)
	if err := b.Send(context.Background(), reply); err != nil {
		t.Fatalf("Send: %v", err)
	}
	if got := receive(t, a); !bytes.Equal(got, reply) {
		t.Fatal("reply was not forwarded to side A")
	}
}

func TestRelayReplaysLatestToLateJoiner(t *testing.T) {
	srv, tokens := newTestRelay(t)
	room := uuid.NewString()

	a := dialSide(t, srv, tokens, room, domain.SideA)
	payload := encodedGame(t, 3)
	if err := a.Send(context.Background(), payload); err != nil {
		t.Fatalf("Send: %v", err)
	}
	waitForStatus(t, srv, room, func(st RoomStatus) bool { return st.Published[domain.SideA] })

	b := dialSide(t, srv, tokens, room, domain.SideB)
	if got := receive(t, b); !bytes.Equal(got, payload) {
		t.Fatal("late joiner did not receive the latest snapshot")
	}
}

func TestRelayDropsMalformedSnapshots(t *testing.T) {
	srv, tokens := newTestRelay(t)
	room := uuid.NewString()

	a := dialSide(t, srv, tokens, room, domain.SideA)
	b := dialSide(t, srv, tokens, room, domain.SideB)

	ctx := context.Background()
	if err := a.Send(ctx, []byte{0xff}); err != nil {
		t.Fatalf("Send: %v", err)
	}
	if err := a.Send(ctx, wire.MarshalSnapshot(domain.Snapshot{Intent: domain.IntentInit})); err != nil {
		t.Fatalf("Send: %v", err)
	}
	payload := encodedGame(t, 4)
	if err := a.Send(ctx, payload); err != nil {
		t.Fatalf("Send: %v", err)
	}
	if got := receive(t, b); !bytes.Equal(got, payload) {
		t.Fatal("expected only the well-formed snapshot to be forwarded")
	}
}

func TestRelayRejectsConnections(t *testing.T) {
	srv, tokens := newTestRelay(t)
	room := uuid.NewString()
	dialSide(t, srv, tokens, room, domain.SideA)
	waitForStatus(t, srv, room, func(st RoomStatus) bool { return st.Connected[domain.SideA] })

	issue := func(room string, side domain.Side) string {
		tok, err := tokens.Issue(room, "someone", side)
		if err != nil {
			t.Fatalf("Issue: %v", err)
		}
		return tok
	}
	other := app.NewPeerTokenService("other-secret", "wordcircuit", time.Minute)
	forged, err := other.Issue(room, "someone", domain.SideB)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	tests := []struct {
		name   string
		room   string
		token  string
		status int
	}{
		{"room is not a uuid", "lobby", issue("lobby", domain.SideB), http.StatusBadRequest},
		{"missing token", room, "", http.StatusUnauthorized},
		{"wrong secret", room, forged, http.StatusUnauthorized},
		{"token for another room", room, issue(uuid.NewString(), domain.SideB), http.StatusForbidden},
		{"side already connected", room, issue(room, domain.SideA), http.StatusConflict},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			conn, resp, err := websocket.DefaultDialer.Dial(wsURL(srv)+"/rooms/"+tt.room+"/ws?token="+tt.token, nil)
			if err == nil {
				conn.Close()
				t.Fatal("expected the handshake to fail")
			}
			if resp == nil || resp.StatusCode != tt.status {
				t.Fatalf("status = %v, want %d", resp, tt.status)
			}
		})
	}
}

func TestRoomStatusNotFound(t *testing.T) {
	srv, _ := newTestRelay(t)
	resp, err := http.Get(srv.URL + "/rooms/" + uuid.NewString())
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", resp.StatusCode)
	}
}

func TestHubLeaveDropsEmptyRoom(t *testing.T) {
	h := NewHub(zerolog.Nop())
	a, err := h.Join("r1", domain.SideA)
	if err != nil {
		t.Fatalf("Join: %v", err)
	}
	if _, err := h.Join("r1", domain.SideA); err != ErrSideTaken {
		t.Fatalf("second Join err = %v, want ErrSideTaken", err)
	}
	if h.Forward(a, []byte("x")) {
		t.Fatal("forward with no opponent should not deliver")
	}

	b, err := h.Join("r1", domain.SideB)
	if err != nil {
		t.Fatalf("Join: %v", err)
	}
	if got := <-b.send; string(got) != "x" {
		t.Fatalf("replayed %q, want x", got)
	}

	h.Leave(a)
	if _, ok := <-a.send; ok {
		t.Fatal("send channel should be closed after Leave")
	}
	if st, ok := h.Status("r1"); !ok || st.Connected[domain.SideA] || !st.Connected[domain.SideB] {
		t.Fatalf("status = %+v, %v", st, ok)
	}
	h.Leave(b)
	if _, ok := h.Status("r1"); ok {
		t.Fatal("empty room should be dropped")
	}
}
