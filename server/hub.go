package server

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/nathoo/tilequest/engine"
	"github.com/nathoo/tilequest/engine/command"
	"github.com/nathoo/tilequest/logger"
)

// request is one command line from one client.
type request struct {
	client *Client
	line   string
	// reject is set when the frame could not be decoded.
	reject string
}

// Hub owns the Session. Only the goroutine running Run touches it; clients
// hand it commands over a channel and receive every result.
type Hub struct {
	session *engine.Session

	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client
	commands   chan request
	done       chan struct{}
}

// NewHub creates a hub around s. s must already be started.
func NewHub(s *engine.Session) *Hub {
	return &Hub{
		session:    s,
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		commands:   make(chan request, 64),
		done:       make(chan struct{}),
	}
}

// Run serves clients until ctx is cancelled, then closes every client.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			for c := range h.clients {
				h.drop(c)
			}
			return

		case c := <-h.register:
			h.clients[c] = true
			logger.Log.WithFields(logrus.Fields{"client": c.ID, "clients": len(h.clients)}).Info("client connected")
			h.send(c, TypeWelcome, WelcomePayload{ClientID: c.ID, State: stateOf(h.session)})

		case c := <-h.unregister:
			if h.clients[c] {
				h.drop(c)
				logger.Log.WithFields(logrus.Fields{"client": c.ID, "clients": len(h.clients)}).Info("client disconnected")
			}

		case req := <-h.commands:
			if !h.clients[req.client] {
				continue
			}
			if req.reject != "" {
				h.send(req.client, TypeError, ErrorPayload{Error: req.reject})
				continue
			}
			h.execute(req)
		}
	}
}

// join registers c. It reports false once the hub has stopped.
func (h *Hub) join(c *Client) bool {
	select {
	case h.register <- c:
		return true
	case <-h.done:
		return false
	}
}

func (h *Hub) leave(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}

func (h *Hub) submit(req request) bool {
	select {
	case h.commands <- req:
		return true
	case <-h.done:
		return false
	}
}

func (h *Hub) execute(req request) {
	cmd := command.Parse(req.line)
	if cmd.Verb == "" {
		h.send(req.client, TypeError, ErrorPayload{Error: "empty command"})
		return
	}
	res := command.Execute(h.session, cmd)
	logger.Log.WithFields(logrus.Fields{
		"client": req.client.ID,
		"verb":   cmd.Verb,
		"events": len(res.Events),
	}).Debug("command applied")

	h.broadcast(TypeResult, ResultPayload{
		ClientID: req.client.ID,
		Output:   res.Output,
		Events:   eventsOf(res),
		State:    stateOf(h.session),
	})
}

func (h *Hub) drop(c *Client) {
	delete(h.clients, c)
	close(c.send)
}

func (h *Hub) send(c *Client, kind string, payload any) {
	msg, err := newMessage(kind, payload)
	if err != nil {
		logger.Log.WithError(err).Warn("encoding message failed")
		return
	}
	h.deliver(c, msg)
}

func (h *Hub) broadcast(kind string, payload any) {
	msg, err := newMessage(kind, payload)
	if err != nil {
		logger.Log.WithError(err).Warn("encoding message failed")
		return
	}
	for c := range h.clients {
		h.deliver(c, msg)
	}
}

// deliver queues msg for c, dropping a client whose queue is full.
func (h *Hub) deliver(c *Client, msg Message) {
	select {
	case c.send <- msg:
	default:
		logger.Log.WithField("client", c.ID).Warn("client too slow, dropping")
		h.drop(c)
	}
}
