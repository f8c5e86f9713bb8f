// Package relay forwards replication snapshots between the two peers of a room
// over websockets. Payloads are checked to be well-formed snapshots and passed
// on unchanged.
package relay

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"wordcircuit/internal/app"
	"wordcircuit/internal/domain"
	"wordcircuit/internal/wire"
)

const maxSnapshotBytes = 64 << 10

// TokenVerifier checks a peer token and returns its claims.
type TokenVerifier interface {
	Verify(token string) (app.PeerClaims, error)
}

// Server bundles the router, hub and token verifier.
type Server struct {
	r        *chi.Mux
	hub      *Hub
	tokens   TokenVerifier
	log      zerolog.Logger
	upgrader websocket.Upgrader
}

// NewServer constructs a Server and registers its routes.
func NewServer(hub *Hub, tokens TokenVerifier, logger zerolog.Logger) *Server {
	s := &Server{
		r:      chi.NewRouter(),
		hub:    hub,
		tokens: tokens,
		log:    logger,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}

	s.r.Use(chimw.RequestID)
	s.r.Use(chimw.RealIP)
	s.r.Use(chimw.Recoverer)

	s.r.Group(func(r chi.Router) {
		r.Use(chimw.Timeout(10 * time.Second))
		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
		})
		r.Get("/rooms/{room}", s.handleRoomStatus)
	})
	s.r.Get("/rooms/{room}/ws", s.handleWS)

	return s
}

// Handler exposes the router.
func (s *Server) Handler() http.Handler {
	return s.r
}

func (s *Server) handleRoomStatus(w http.ResponseWriter, r *http.Request) {
	st, ok := s.hub.Status(chi.URLParam(r, "room"))
	if !ok {
		writeError(w, http.StatusNotFound, "room not found")
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	roomID := chi.URLParam(r, "room")
	if _, err := uuid.Parse(roomID); err != nil {
		writeError(w, http.StatusBadRequest, "room must be a uuid")
		return
	}
	claims, err := s.tokens.Verify(peerToken(r))
	if err != nil {
		s.log.Debug().Err(err).Str("room", roomID).Msg("peer token rejected")
		writeError(w, http.StatusUnauthorized, "invalid token")
		return
	}
	if claims.Room != roomID {
		writeError(w, http.StatusForbidden, "token is for another room")
		return
	}

	peer, err := s.hub.Join(roomID, claims.Side)
	if err != nil {
		if errors.Is(err, ErrSideTaken) {
			writeError(w, http.StatusConflict, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.hub.Leave(peer)
		return
	}
	conn.SetReadLimit(maxSnapshotBytes)

	logger := s.log.With().
		Str("room", roomID).
		Str("peer", peer.ID).
		Str("side", peer.Side.String()).
		Str("subject", claims.Subject).
		Str("request_id", chimw.GetReqID(r.Context())).
		Logger()

	go func() {
		defer conn.Close()
		if err := writeWithHeartbeat(conn, peer.send); err != nil {
			logger.Debug().Err(err).Msg("peer write failed")
		}
	}()

	s.readSnapshots(conn, peer, logger)
	s.hub.Leave(peer)
}

func (s *Server) readSnapshots(conn *websocket.Conn, peer *Peer, logger zerolog.Logger) {
	for {
		kind, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				logger.Warn().Err(err).Msg("peer connection lost")
			}
			return
		}
		if kind != websocket.BinaryMessage {
			continue
		}
		snap, err := wire.UnmarshalSnapshot(data)
		if err == nil && len(snap.Board) != domain.BoardSize*domain.BoardSize {
			err = fmt.Errorf("%w: board has %d cells", wire.ErrMalformed, len(snap.Board))
		}
		if err != nil {
			logger.Warn().Err(err).Int("bytes", len(data)).Msg("dropping malformed snapshot")
			continue
		}
		delivered := s.hub.Forward(peer, data)
		logger.Debug().
			Int("turn", snap.Turn).
			Int("intent", int(snap.Intent)).
			Bool("delivered", delivered).
			Msg("snapshot forwarded")
	}
}

func peerToken(r *http.Request) string {
	if tok := r.URL.Query().Get("token"); tok != "" {
		return tok
	}
	return strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
