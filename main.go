package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/gorilla/websocket"
	"golang.org/x/sync/errgroup"

	"arena-server/internal/config"
	"arena-server/internal/protocol"
	"arena-server/internal/room"
	"arena-server/internal/telemetry"
)

// ipRateLimiter tracks the last connection time per IP to prevent abuse.
type ipRateLimiter struct {
	mu       sync.Mutex
	cooldown time.Duration
	times    map[string]time.Time
}

func newIPRateLimiter(cooldown time.Duration) *ipRateLimiter {
	return &ipRateLimiter{cooldown: cooldown, times: make(map[string]time.Time)}
}

// allow returns true if this IP can connect, and records the attempt.
func (rl *ipRateLimiter) allow(ip string, now time.Time) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	if last, ok := rl.times[ip]; ok && now.Sub(last) < rl.cooldown {
		return false
	}
	rl.times[ip] = now
	return true
}

// prune drops entries older than the cooldown.
func (rl *ipRateLimiter) prune(now time.Time) {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	for ip, t := range rl.times {
		if now.Sub(t) >= rl.cooldown {
			delete(rl.times, ip)
		}
	}
}

func (rl *ipRateLimiter) run(ctx context.Context) error {
	t := time.NewTicker(time.Minute)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case now := <-t.C:
			rl.prune(now)
		}
	}
}

var upgrader = websocket.Upgrader{
	// Allow all origins; the edge proxy enforces origin policy.
	CheckOrigin:       func(r *http.Request) bool { return true },
	ReadBufferSize:    1024,
	WriteBufferSize:   4096,
	EnableCompression: true,
}

type server struct {
	cfg     config.Config
	manager *room.Manager
	limiter *ipRateLimiter
	log     telemetry.Logger
	conns   atomic.Int64
}

func newServer(cfg config.Config, manager *room.Manager, logger telemetry.Logger) *server {
	return &server{
		cfg:     cfg,
		manager: manager,
		limiter: newIPRateLimiter(cfg.IPCooldown),
		log:     logger,
	}
}

func (s *server) routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWS)
	mux.HandleFunc("/status", s.handleStatus)
	mux.HandleFunc("/ping", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("pong"))
	})
	mux.Handle("/", http.FileServer(http.Dir(s.cfg.StaticDir)))
	return mux
}

// clientIP prefers the first X-Forwarded-For hop for reverse proxies.
func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		return strings.TrimSpace(strings.Split(fwd, ",")[0])
	}
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

// sendErrorAndClose sends an error message then closes the socket.
func sendErrorAndClose(ws *websocket.Conn, msg string) {
	if b, err := protocol.Encode(protocol.MsgError, protocol.Error{Message: msg}); err == nil {
		ws.SetWriteDeadline(time.Now().Add(writeWait))
		_ = ws.WriteMessage(websocket.TextMessage, b)
	}
	ws.Close()
}

func (s *server) handleWS(w http.ResponseWriter, r *http.Request) {
	ip := clientIP(r)
	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Printf("ws upgrade error: %v", err)
		return
	}

	// Check limits after upgrade so the client can receive the reason.
	if int(s.conns.Load()) >= s.cfg.MaxConnections {
		sendErrorAndClose(ws, "Server full. Please try again later.")
		return
	}
	if !s.limiter.allow(ip, time.Now()) {
		sendErrorAndClose(ws, "Too many connections. Please wait a moment.")
		return
	}
	ws.EnableWriteCompression(true)

	s.conns.Add(1)
	defer s.conns.Add(-1)

	conn := NewConn(ws, s.log)
	s.log.Printf("player connected: %s from %s", conn.ID, ip)
	go conn.writePump()
	conn.ReadLoop(s.manager)
	s.log.Printf("player disconnected: %s", conn.ID)
}

type statusResponse struct {
	Connections int64             `json:"connections"`
	Rooms       room.ManagerStats `json:"rooms"`
}

func (s *server) handleStatus(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	resp := statusResponse{Connections: s.conns.Load(), Rooms: s.manager.Stats()}
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		s.log.Printf("status encode: %v", err)
	}
}

func roomOptions(cfg config.Config, logger telemetry.Logger) room.Options {
	var reporter room.ResultReporter = room.LogReporter{Logger: logger}
	if cfg.ResultsURL != "" {
		reporter = room.NewHTTPReporter(cfg.ResultsURL)
	}
	return room.Options{
		TickRate:        cfg.TickRate,
		MaxBroadcastHz:  cfg.MaxBroadcastHz,
		Capacity:        cfg.RoomCapacity,
		Width:           cfg.WorldWidth,
		Height:          cfg.WorldHeight,
		EnableAI:        cfg.EnableAI,
		AICount:         cfg.AICount,
		MaxRooms:        cfg.MaxRooms,
		CleanupInterval: cfg.CleanupInterval,
		Logger:          logger,
		Reporter:        reporter,
	}
}

// run serves until ctx is cancelled or the listener fails.
func run(ctx context.Context, cfg config.Config, logger telemetry.Logger) error {
	manager := room.NewManager(roomOptions(cfg, logger))
	s := newServer(cfg, manager, logger)
	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           s.routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return manager.Run(gctx) })
	g.Go(func() error { return s.limiter.run(gctx) })
	g.Go(func() error {
		logger.Printf("server listening on %s (world %.0fx%.0f, %d Hz)", cfg.Addr, cfg.WorldWidth, cfg.WorldHeight, cfg.TickRate)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

func main() {
	logger := telemetry.WrapLogger(log.Default())
	cfg := config.Load(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
