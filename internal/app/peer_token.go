package app

import (
	"errors"
	"fmt"
	"time"

	"github.com/form3tech-oss/jwt-go"

	"wordcircuit/internal/domain"
)

// ErrInvalidPeerToken is returned when a relay token fails verification.
var ErrInvalidPeerToken = errors.New("invalid peer token")

// PeerClaims identifies one peer of a relay room.
type PeerClaims struct {
	Room      string
	Subject   string
	Side      domain.Side
	ExpiresAt time.Time
}

// PeerTokenService signs and verifies the tokens peers present to the relay.
type PeerTokenService struct {
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

// NewPeerTokenService builds a service signing with HS256.
func NewPeerTokenService(secret, issuer string, ttl time.Duration) *PeerTokenService {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &PeerTokenService{
		secret: []byte(secret),
		issuer: issuer,
		ttl:    ttl,
		now:    time.Now,
	}
}

// Issue signs a token admitting subject to room as side.
func (s *PeerTokenService) Issue(room, subject string, side domain.Side) (string, error) {
	if s == nil {
		return "", fmt.Errorf("peer token service is nil")
	}
	if len(s.secret) == 0 {
		return "", fmt.Errorf("peer token secret is not configured")
	}
	if room == "" || subject == "" {
		return "", fmt.Errorf("room and subject are required")
	}
	if side != domain.SideA && side != domain.SideB {
		return "", fmt.Errorf("unknown side %d", side)
	}

	claims := jwt.MapClaims{
		"iss":  s.issuer,
		"sub":  subject,
		"room": room,
		"side": int(side),
		"exp":  s.now().Add(s.ttl).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// Verify checks the signature, expiry and issuer of a token and returns its claims.
func (s *PeerTokenService) Verify(tokenString string) (PeerClaims, error) {
	if s == nil || len(s.secret) == 0 {
		return PeerClaims{}, fmt.Errorf("%w: service not configured", ErrInvalidPeerToken)
	}
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		return PeerClaims{}, fmt.Errorf("%w: %v", ErrInvalidPeerToken, err)
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return PeerClaims{}, ErrInvalidPeerToken
	}
	if !claims.VerifyIssuer(s.issuer, true) {
		return PeerClaims{}, fmt.Errorf("%w: issuer mismatch", ErrInvalidPeerToken)
	}

	room, _ := claims["room"].(string)
	sub, _ := claims["sub"].(string)
	side, okSide := claims["side"].(float64)
	exp, okExp := claims["exp"].(float64)
	if room == "" || sub == "" || !okSide || !okExp || (side != 0 && side != 1) {
		return PeerClaims{}, fmt.Errorf("%w: missing claims", ErrInvalidPeerToken)
	}
	return PeerClaims{
		Room:      room,
		Subject:   sub,
		Side:      domain.Side(side),
		ExpiresAt: time.Unix(int64(exp), 0),
	}, nil
}
