package integration

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/heroiclabs/nakama-common/rtapi"
	"github.com/heroiclabs/nakama-go/v2"

	"wordcircuit/internal/wire"
)

const (
	ServerKey = "defaultkey"
	Host      = "127.0.0.1"
	Port      = 7350
)

// Op codes mirrored from the server module.
const (
	OpStartGame   int64 = 1
	OpPlaceTile   int64 = 2
	OpCommitMove  int64 = 4
	OpPassTurn    int64 = 5
	OpMatchState  int64 = 101
	OpGameStarted int64 = 103
	OpHandDealt   int64 = 104
	OpTurnPassed  int64 = 106
	OpSnapshot    int64 = 109
	OpGameError   int64 = 110
)

type TestClient struct {
	Client  *nakama.Client
	Session *nakama.Session
	Socket  *nakama.Socket
	UserID  string
	inbox   chan *rtapi.MatchData
}

func NewTestClient(t *testing.T) *TestClient {
	client := nakama.NewClient(ServerKey, Host, Port, false)

	deviceID := fmt.Sprintf("test_device_%d", time.Now().UnixNano())
	session, err := client.AuthenticateDevice(context.Background(), deviceID, true, "")
	if err != nil {
		t.Fatalf("Failed to authenticate: %v", err)
	}

	tc := &TestClient{
		Client:  client,
		Session: session,
		UserID:  session.UserId,
		inbox:   make(chan *rtapi.MatchData, 256),
	}

	socket := client.NewSocket()
	socket.OnMatchData = func(data *rtapi.MatchData) {
		select {
		case tc.inbox <- data:
		default:
		}
	}
	if err := socket.Connect(context.Background(), session, true); err != nil {
		t.Fatalf("Failed to connect socket: %v", err)
	}
	tc.Socket = socket
	return tc
}

func (tc *TestClient) Close() {
	if tc.Socket != nil {
		tc.Socket.Close()
	}
}

// QuickMatch calls the quick_match RPC and joins the returned match.
func (tc *TestClient) QuickMatch(t *testing.T) string {
	rpc, err := tc.Client.RpcFunc(context.Background(), tc.Session, "quick_match", "{}")
	if err != nil {
		t.Fatalf("RPC quick_match failed: %v", err)
	}

	var resp struct {
		MatchID string `json:"match_id"`
	}
	if err := json.Unmarshal([]byte(rpc.Payload), &resp); err != nil || resp.MatchID == "" {
		t.Fatalf("RPC quick_match returned %q: %v", rpc.Payload, err)
	}

	if _, err := tc.Socket.JoinMatch(context.Background(), nil, resp.MatchID, nil); err != nil {
		t.Fatalf("Failed to join match %s: %v", resp.MatchID, err)
	}
	return resp.MatchID
}

// SendOp marshals payload and sends it as opCode. A nil payload sends no data.
func (tc *TestClient) SendOp(t *testing.T, matchID string, opCode int64, payload wire.Message) {
	var data []byte
	if payload != nil {
		data = payload.Marshal()
	}
	if _, err := tc.Socket.SendMatchState(context.Background(), matchID, opCode, data, nil); err != nil {
		t.Fatalf("Failed to send op %d: %v", opCode, err)
	}
}

// WaitForEvent waits for opCode and decodes its payload into msg.
func (tc *TestClient) WaitForEvent(t *testing.T, opCode int64, msg wire.Message, timeout time.Duration) {
	data := tc.WaitForMatchState(t, opCode, timeout)
	if err := msg.Unmarshal(data.Data); err != nil {
		t.Fatalf("Failed to unmarshal op %d: %v", opCode, err)
	}
}

// WaitForMatchState returns the next message with opCode, dropping others.
func (tc *TestClient) WaitForMatchState(t *testing.T, opCode int64, timeout time.Duration) *rtapi.MatchData {
	deadline := time.After(timeout)
	for {
		select {
		case data := <-tc.inbox:
			if data.OpCode == opCode {
				return data
			}
		case <-deadline:
			t.Fatalf("Timeout waiting for OpCode %d", opCode)
			return nil
		}
	}
}
