// Package server is the editor bridge. It answers board analysis requests
// over HTTP and lets websocket clients drive one shared Session.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/nathoo/tilequest/config"
	"github.com/nathoo/tilequest/engine"
	"github.com/nathoo/tilequest/engine/analyzer"
	"github.com/nathoo/tilequest/engine/grid"
	"github.com/nathoo/tilequest/logger"
	"github.com/nathoo/tilequest/types"
)

const maxBoardSize = 1 << 20

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Server serves /analyze and /ws on one address.
type Server struct {
	Addr string

	hub      *Hub
	analyzer *analyzer.Analyzer
}

// New creates a server for s, which must already be started.
func New(s *engine.Session, cfg config.Config) *Server {
	opts := analyzer.Options{
		BudgetFactor: cfg.Analyzer.BudgetFactor,
		HoleBridging: cfg.Analyzer.HoleBridging,
	}
	return &Server{
		Addr:     cfg.Server.Addr,
		hub:      NewHub(s),
		analyzer: analyzer.New(opts),
	}
}

// Handler returns the HTTP routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/analyze", enableCORS(s.handleAnalyze))
	mux.HandleFunc("/ws", s.handleWS)
	mux.HandleFunc("/health", s.handleHealth)
	return mux
}

// Run starts the hub and listens on Addr until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	go s.hub.Run(ctx)

	srv := &http.Server{Addr: s.Addr, Handler: s.Handler()}
	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()
	logger.Log.WithField("addr", s.Addr).Info("editor bridge listening")

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

func enableCORS(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		w.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next(w, r)
	}
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "POST a board JSON")
		return
	}
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBoardSize))
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("reading body: %v", err))
		return
	}
	var def types.BoardDef
	if err := json.Unmarshal(body, &def); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("parsing board: %v", err))
		return
	}
	b, err := grid.NewBoard(def)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	res := s.analyzer.Analyze(b)
	logger.Log.WithField("playable", res.Playable).Debug("board analysed")
	writeJSON(w, http.StatusOK, AnalyzeResponse{
		Playable:      res.Playable,
		Reasons:       orEmpty(res.Reasons),
		CriticalHoles: res.CriticalHoles,
		Report:        s.analyzer.Report(b),
		Fixes:         s.analyzer.SuggestFixes(b),
	})
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Log.WithError(err).Warn("websocket upgrade failed")
		return
	}
	c := newClient(s.hub, conn)
	if !s.hub.join(c) {
		_ = conn.Close()
		return
	}
	go c.writePump()
	go c.readPump()
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Log.WithError(err).Debug("writing response failed")
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, ErrorPayload{Error: msg})
}

func orEmpty(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
