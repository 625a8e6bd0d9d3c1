// Package api exposes the bridge over HTTP with JSON bodies: scene
// changes, manual fader sets and a read-only view of the connection
// settings and channel values.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"ma3bridge/lib/fade"
	"ma3bridge/lib/logging"
)

// Controller is the engine surface the handlers drive.
type Controller interface {
	Crossfade(scene, xfadeMs int) (fade.Result, error)
	SetFader(channel, value int) error
	Snapshot() []int
	Channels() int
	Scenes() int
}

// Connection describes the console link reported by GET /api/config.
type Connection struct {
	IP        string
	Port      int
	LocalPort int
	Prefix    string
}

type Server struct {
	ctrl        Controller
	conn        Connection
	allowOrigin string
	logger      *slog.Logger

	server *http.Server
}

func NewServer(ctrl Controller, conn Connection, allowOrigin string, logger *slog.Logger) *Server {
	if logger == nil {
		logger = logging.NewNop()
	}
	s := &Server{
		ctrl:        ctrl,
		conn:        conn,
		allowOrigin: allowOrigin,
		logger:      logger,
	}
	s.server = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return s
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/scene/{id}", s.handleScene)
	mux.HandleFunc("POST /api/fader/{id}", s.handleFader)
	mux.HandleFunc("GET /api/config", s.handleConfig)
	return s.cors(mux)
}

// Serve accepts connections on ln until ctx is done, then shuts down
// gracefully, letting in-flight crossfades finish.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	errc := make(chan error, 1)
	go func() {
		errc <- s.server.Serve(ln)
	}()
	s.logger.Info("api server listening", slog.String("address", ln.Addr().String()))

	select {
	case err := <-errc:
		return fmt.Errorf("api serve: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := s.server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("api shutdown: %w", err)
	}
	if err := <-errc; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) handleScene(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil || id < 1 || id > s.ctrl.Scenes() {
		s.reject(w, r, fade.ErrInvalidScene)
		return
	}

	var req SceneRequest
	if err := decodeBody(r, &req); err != nil {
		s.reject(w, r, err)
		return
	}
	xfade := 0
	if req.XFade != nil {
		xfade = *req.XFade
	}

	res, err := s.ctrl.Crossfade(id, xfade)
	if err != nil {
		s.reject(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, SceneResponse{OK: true, Scene: res.Scene, XFade: res.XFade})
}

func (s *Server) handleFader(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil || id < 1 || id > s.ctrl.Channels() {
		s.reject(w, r, fade.ErrInvalidChannel)
		return
	}

	var req FaderRequest
	if err := decodeBody(r, &req); err != nil {
		s.reject(w, r, err)
		return
	}
	if req.Value == nil {
		s.reject(w, r, fade.ErrInvalidValue)
		return
	}

	if err := s.ctrl.SetFader(id, *req.Value); err != nil {
		s.reject(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, FaderResponse{OK: true, Fader: id, Value: *req.Value})
}

func (s *Server) handleConfig(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, ConfigResponse{
		IP:            s.conn.IP,
		Port:          s.conn.Port,
		LocalPort:     s.conn.LocalPort,
		Prefix:        s.conn.Prefix,
		CurrentValues: s.ctrl.Snapshot(),
	})
}

var errBadBody = errors.New("invalid request body")

// decodeBody accepts an empty body as a zero request. Anything after the
// first JSON value is rejected.
func decodeBody(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, 1<<16))
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("%w: %v", errBadBody, err)
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return fmt.Errorf("%w: trailing data after JSON value", errBadBody)
	}
	return nil
}

func (s *Server) reject(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusBadRequest
	var msg string
	switch {
	case errors.Is(err, fade.ErrInvalidScene):
		msg = "Invalid scene id"
	case errors.Is(err, fade.ErrInvalidChannel):
		msg = "Invalid fader id"
	case errors.Is(err, fade.ErrInvalidValue):
		msg = "Invalid fader value"
	case errors.Is(err, fade.ErrInvalidDuration):
		msg = "Invalid crossfade duration"
	case errors.Is(err, errBadBody):
		msg = "Invalid request body"
	default:
		status = http.StatusInternalServerError
		msg = "Internal error"
	}
	s.logger.Warn("request rejected",
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
		slog.Int("status", status),
		slog.String("error", err.Error()))
	s.writeJSON(w, status, ErrorResponse{Error: msg})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Warn("write response failed", slog.String("error", err.Error()))
	}
}

func (s *Server) cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.allowOrigin != "" {
			h := w.Header()
			h.Set("Access-Control-Allow-Origin", s.allowOrigin)
			h.Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			h.Set("Access-Control-Allow-Headers", "Content-Type")
		}
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
