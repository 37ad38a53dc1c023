// Package server accepts chat messages from a tabletop relay over a websocket
// and runs them through the command dispatcher one at a time.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/traveller-vtt/dv/internal/cache"
	"github.com/traveller-vtt/dv/internal/config"
	"github.com/traveller-vtt/dv/internal/dispatcher"
	"github.com/traveller-vtt/dv/internal/parser"
	"github.com/traveller-vtt/dv/pkg/core"
)

const (
	sendChSize      = 256
	shutdownTimeout = 5 * time.Second
)

// Error strings sent back to clients.
const (
	ErrRateLimited    = "rate limited"
	ErrInvalidMessage = "invalid message"
	ErrNotCommand     = "not a command"
)

// Dispatcher runs parsed commands.
type Dispatcher interface {
	Dispatch(ctx context.Context, e dispatcher.Event) (any, error)
}

// ChatSource hands over the chat produced by the last command.
type ChatSource interface {
	Drain() []core.Outgoing
}

// Response is the frame sent back for every inbound message. Chat produced
// by a command is also sent to every other connected client.
type Response struct {
	Command string          `json:"command,omitempty"`
	Result  any             `json:"result,omitempty"`
	Error   string          `json:"error,omitempty"`
	Chat    []core.Outgoing `json:"chat,omitempty"`
}

type client struct {
	id        string
	conn      *websocket.Conn
	send      chan Response
	done      chan struct{}
	closeOnce sync.Once
}

func (c *client) closeChannels() {
	c.closeOnce.Do(func() {
		close(c.done)
	})
}

// Server is the websocket front end.
type Server struct {
	cfg  config.ServerConfig
	d    Dispatcher
	chat ChatSource
	log  zerolog.Logger

	// dispatchMu keeps command handling single threaded.
	dispatchMu sync.Mutex

	clientsMu sync.RWMutex
	clients   map[*client]struct{}

	limitersMu sync.Mutex
	limiters   map[string]*rate.Limiter

	connections cache.SafeCounter
	handled     cache.SafeCounter
	failed      cache.SafeCounter
}

// New creates a Server.
func New(cfg config.ServerConfig, d Dispatcher, chat ChatSource, log zerolog.Logger) *Server {
	return &Server{
		cfg:      cfg,
		d:        d,
		chat:     chat,
		log:      log,
		clients:  make(map[*client]struct{}),
		limiters: make(map[string]*rate.Limiter),
	}
}

// Handler returns the HTTP routes: /ws and /healthz.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.serveWS)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	return mux
}

// Run listens on the configured address until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Address,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(_ net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info().Str("address", s.cfg.Address).Msg("listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

// Connections returns the number of open websocket clients.
func (s *Server) Connections() int {
	return s.connections.Value()
}

// Handled returns the number of commands dispatched, failed ones included.
func (s *Server) Handled() int {
	return s.handled.Value()
}

// Failed returns the number of commands whose handler returned an error.
func (s *Server) Failed() int {
	return s.failed.Value()
}

// Handle parses and dispatches one chat message and collects its chat output.
func (s *Server) Handle(ctx context.Context, msg core.ChatMessage) Response {
	e, err := parser.Parse(msg)
	if err != nil {
		return Response{Error: ErrNotCommand}
	}

	s.dispatchMu.Lock()
	defer s.dispatchMu.Unlock()

	result, err := s.d.Dispatch(ctx, e)
	s.handled.Inc()
	resp := Response{
		Command: e.Command,
		Result:  result,
		Chat:    s.chat.Drain(),
	}
	if err != nil {
		s.failed.Inc()
		resp.Error = err.Error()
	}
	return resp
}

// Allow reports whether the player may send another command now.
func (s *Server) Allow(playerID string) bool {
	s.limitersMu.Lock()
	defer s.limitersMu.Unlock()

	l, ok := s.limiters[playerID]
	if !ok {
		l = rate.NewLimiter(rate.Limit(s.cfg.RateLimit), s.cfg.Burst)
		s.limiters[playerID] = l
	}
	return l.Allow()
}

func (s *Server) serveWS(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		s.log.Error().Err(err).Msg("failed to accept websocket connection")
		return
	}
	c := &client{
		id:   uuid.NewString(),
		conn: conn,
		send: make(chan Response, sendChSize),
		done: make(chan struct{}),
	}
	s.addClient(c)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		s.writeLoop(ctx, c)
	}()
	go func() {
		defer wg.Done()
		s.readLoop(ctx, c)
	}()
	wg.Wait()
}

func (s *Server) readLoop(ctx context.Context, c *client) {
	defer func() {
		s.removeClient(c)
		_ = c.conn.Close(websocket.StatusNormalClosure, "")
	}()

	for {
		msgType, data, err := c.conn.Read(ctx)
		if err != nil {
			status := websocket.CloseStatus(err)
			if status != websocket.StatusNormalClosure && status != websocket.StatusGoingAway && ctx.Err() == nil {
				s.log.Warn().Err(err).Str("client", c.id).Msg("websocket read error")
			}
			return
		}
		if msgType != websocket.MessageText {
			s.sendTo(c, Response{Error: ErrInvalidMessage})
			continue
		}

		var msg core.ChatMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			s.log.Debug().Err(err).Str("client", c.id).Msg("undecodable frame")
			s.sendTo(c, Response{Error: ErrInvalidMessage})
			continue
		}
		if !s.Allow(msg.PlayerID) {
			s.log.Debug().Str("player", msg.PlayerID).Msg("command throttled")
			s.sendTo(c, Response{Error: ErrRateLimited})
			continue
		}

		resp := s.Handle(ctx, msg)
		s.sendTo(c, resp)
		if len(resp.Chat) > 0 {
			s.broadcast(Response{Chat: resp.Chat}, c)
		}
	}
}

func (s *Server) writeLoop(ctx context.Context, c *client) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-c.done:
			return
		case resp := <-c.send:
			data, err := json.Marshal(resp)
			if err != nil {
				s.log.Error().Err(err).Msg("failed to encode response")
				continue
			}
			if err := c.conn.Write(ctx, websocket.MessageText, data); err != nil {
				s.log.Warn().Err(err).Str("client", c.id).Msg("websocket write error")
				return
			}
		}
	}
}

func (s *Server) addClient(c *client) {
	s.clientsMu.Lock()
	defer s.clientsMu.Unlock()
	s.clients[c] = struct{}{}
	s.connections.Inc()
	s.log.Debug().Str("client", c.id).Int("connections", s.connections.Value()).Msg("client connected")
}

func (s *Server) removeClient(c *client) {
	s.clientsMu.Lock()
	if _, ok := s.clients[c]; ok {
		delete(s.clients, c)
		s.connections.Dec()
	}
	s.clientsMu.Unlock()
	c.closeChannels()
	s.log.Debug().Str("client", c.id).Msg("client disconnected")
}

// sendTo queues a frame, dropping it when the client is gone or too slow.
func (s *Server) sendTo(c *client, resp Response) {
	select {
	case <-c.done:
	case c.send <- resp:
	default:
		s.log.Warn().Str("client", c.id).Msg("send channel full, dropping frame")
	}
}

func (s *Server) broadcast(resp Response, exclude *client) {
	s.clientsMu.RLock()
	targets := make([]*client, 0, len(s.clients))
	for c := range s.clients {
		if c != exclude {
			targets = append(targets, c)
		}
	}
	s.clientsMu.RUnlock()

	for _, c := range targets {
		s.sendTo(c, resp)
	}
}
