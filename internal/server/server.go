// Package server owns the listening socket and the per-connection
// parse -> dispatch -> write pipeline.
package server

import (
	"errors"
	"fmt"
	"net"
	"strconv"
	"sync/atomic"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/tixx/currency-converter/internal/httperr"
	"github.com/tixx/currency-converter/internal/request"
	"github.com/tixx/currency-converter/internal/response"
)

// Handler produces the response for one parsed request. A returned
// *httperr.Error becomes its own status; any other error becomes an
// opaque 500.
type Handler func(req *request.Request) (*response.Response, error)

type Config struct {
	Host string
	Port int

	// Name is the server name a request's Host header must carry,
	// optionally suffixed with ":<Port>".
	Name string
}

type Server struct {
	cfg      Config
	listener net.Listener
	isClosed atomic.Bool
	handler  Handler
	log      *zap.Logger
}

// Serve binds the listener and starts accepting in the background.
// Connections are served strictly one at a time: a connection is parsed,
// dispatched, answered and closed before the next accept. Each carries
// exactly one request/response exchange.
func Serve(cfg Config, handler Handler, logger *zap.Logger) (*Server, error) {
	ln, err := net.Listen("tcp", net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port)))
	if err != nil {
		return nil, fmt.Errorf("failed to create listener: %w", err)
	}
	server := &Server{
		cfg:      cfg,
		listener: ln,
		handler:  handler,
		log:      logger,
	}

	go server.listen()

	return server, nil
}

// Addr reports the bound listen address.
func (s *Server) Addr() net.Addr {
	return s.listener.Addr()
}

func (s *Server) Close() error {
	s.isClosed.Store(true)

	return s.listener.Close()
}

func (s *Server) listen() {
	for {
		conn, err := s.listener.Accept()

		if s.isClosed.Load() {
			return
		}

		if err != nil {
			s.log.Error("error accepting connection", zap.Error(err))
			continue
		}

		s.handle(conn)
	}
}

func (s *Server) handle(conn net.Conn) {
	defer conn.Close()

	log := s.log.With(
		zap.String("conn_id", uuid.NewString()),
		zap.String("peer", conn.RemoteAddr().String()),
	)
	log.Info("parsing request")

	req, err := request.FromReader(conn)
	if err != nil {
		var herr *httperr.Error
		if !errors.As(err, &herr) {
			// Transport-level failure: the peer is gone, nothing to
			// answer to.
			log.Warn("dropping connection", zap.Error(err))
			return
		}
		s.writeError(conn, herr, log)
		return
	}

	if herr := req.ValidateHost(s.cfg.Name, s.cfg.Port); herr != nil {
		s.writeError(conn, herr, log)
		return
	}

	log.Info("handling request",
		zap.String("method", req.Method),
		zap.String("target", req.Target))

	resp, err := s.handler(req)
	if err != nil {
		var herr *httperr.Error
		if !errors.As(err, &herr) {
			log.Error("request failed", zap.Error(err))
			herr = httperr.New(500, "Internal Server Error", "")
		}
		s.writeError(conn, herr, log)
		return
	}

	if err := response.NewWriter(conn).WriteResponse(resp); err != nil {
		log.Warn("writing response", zap.Error(err))
		return
	}
	log.Info("response written", zap.Int("status", resp.Status))
}

// writeError collapses a protocol error into a response. The body is the
// error's detail text when present, the reason phrase otherwise.
func (s *Server) writeError(conn net.Conn, herr *httperr.Error, log *zap.Logger) {
	log.Error("request rejected", zap.Error(herr))

	body := herr.Body
	if body == "" {
		body = herr.Reason
	}

	resp := response.New(herr.Status)
	resp.Reason = herr.Reason
	resp.Body = []byte(body)
	resp.Headers.Set("Content-Length", strconv.Itoa(len(resp.Body)))

	if err := response.NewWriter(conn).WriteResponse(resp); err != nil {
		log.Warn("writing error response", zap.Error(err))
	}
}
