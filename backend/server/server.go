package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/PhilHem/netlog/backend/config"
)

type Server struct {
	server *http.Server
	tls    config.TLSConfig
}

func New(addr string, handler http.Handler, tls config.TLSConfig) *Server {
	return &Server{
		server: &http.Server{
			Addr:              addr,
			Handler:           handler,
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       15 * time.Second,
			WriteTimeout:      60 * time.Second,
			IdleTimeout:       120 * time.Second,
		},
		tls: tls,
	}
}

// Start blocks until the server stops. A graceful Stop is not an error.
func (s *Server) Start() error {
	var err error
	if s.tls.Enabled {
		slog.Info("starting server with TLS", "source", "server", "listen", s.server.Addr)
		err = s.server.ListenAndServeTLS(s.tls.Cert, s.tls.Key)
	} else {
		slog.Info("starting server", "source", "server", "listen", s.server.Addr)
		err = s.server.ListenAndServe()
	}
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func (s *Server) Stop(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}
