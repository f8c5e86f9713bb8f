package app

import (
	"errors"
	"strings"
	"testing"
	"time"

	"wordcircuit/internal/domain"
)

func TestPeerTokenRoundTrip(t *testing.T) {
	svc := NewPeerTokenService("test-secret", "wordcircuit", time.Minute)
	token, err := svc.Issue("room-1", "user-1", domain.SideB)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	claims, err := svc.Verify(token)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if claims.Room != "room-1" || claims.Subject != "user-1" || claims.Side != domain.SideB {
		t.Fatalf("claims = %+v", claims)
	}
	if claims.ExpiresAt.Before(time.Now()) {
		t.Fatalf("token already expired at %v", claims.ExpiresAt)
	}
}

func TestPeerTokenVerifyRejects(t *testing.T) {
	good := NewPeerTokenService("test-secret", "wordcircuit", time.Minute)
	token, err := good.Issue("room-1", "user-1", domain.SideA)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	expired := NewPeerTokenService("test-secret", "wordcircuit", time.Minute)
	expired.now = func() time.Time { return time.Now().Add(-time.Hour) }
	expiredToken, err := expired.Issue("room-1", "user-1", domain.SideA)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	other, err := good.Issue("room-2", "user-1", domain.SideA)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	parts := strings.Split(token, ".")
	parts[1] = strings.Split(other, ".")[1]
	tampered := strings.Join(parts, ".")

	tests := []struct {
		name  string
		svc   *PeerTokenService
		token string
	}{
		{name: "wrong secret", svc: NewPeerTokenService("other", "wordcircuit", time.Minute), token: token},
		{name: "wrong issuer", svc: NewPeerTokenService("test-secret", "elsewhere", time.Minute), token: token},
		{name: "expired", svc: good, token: expiredToken},
		{name: "garbage", svc: good, token: "not.a.token"},
		{name: "tampered", svc: good, token: tampered},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := tt.svc.Verify(tt.token); !errors.Is(err, ErrInvalidPeerToken) {
				t.Fatalf("err = %v, want ErrInvalidPeerToken", err)
			}
		})
	}
}

func TestPeerTokenIssueRequiresInput(t *testing.T) {
	tests := []struct {
		name    string
		svc     *PeerTokenService
		room    string
		subject string
		side    domain.Side
	}{
		{name: "missing secret", svc: NewPeerTokenService("", "wordcircuit", 0), room: "r", subject: "u"},
		{name: "missing room", svc: NewPeerTokenService("s", "wordcircuit", 0), subject: "u"},
		{name: "missing subject", svc: NewPeerTokenService("s", "wordcircuit", 0), room: "r"},
		{name: "bad side", svc: NewPeerTokenService("s", "wordcircuit", 0), room: "r", subject: "u", side: 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := tt.svc.Issue(tt.room, tt.subject, tt.side); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}
