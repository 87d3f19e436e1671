package ws

import (
	"context"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/julienschmidt/httprouter"

	"bingosink/internal/app"
	"bingosink/internal/config"
	"bingosink/internal/logging"
)

const (
	readWriteTimeout = 10 * time.Second
	sendBufferSize   = 8
)

// handleConnect upgrades one HTTP request to a websocket connection and
// runs its read/write pumps until the client disconnects.
func handleConnect(d *app.Dispatcher, logger logging.Logger) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logger.Warn("ws: upgrade error: %v", err)
			return
		}

		logger.Debug("ws: connection from %s", conn.RemoteAddr())
		client := &Client{conn: conn, send: make(chan map[string]any, sendBufferSize), logger: logger}
		session := &app.Session{}

		go client.writePump()
		client.readPump(d, session)
	}
}

func serveHealthz(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok\n"))
}

// Serve starts the standalone websocket server and blocks until ctx is
// canceled: an httprouter mux, an http.Server with fixed timeouts, TLS
// dispatched on whether cert/key were both supplied.
func Serve(ctx context.Context, cfg *config.ServerConfig, d *app.Dispatcher, logger logging.Logger) error {
	mux := httprouter.New()
	mux.GET("/healthz", serveHealthz)
	mux.GET("/ws", handleConnect(d, logger))

	srv := &http.Server{
		Addr:              net.JoinHostPort(cfg.Bind, strconv.Itoa(cfg.Port)),
		Handler:           mux,
		IdleTimeout:       10 * time.Minute,
		ReadTimeout:       readWriteTimeout,
		ReadHeaderTimeout: readWriteTimeout,
		WriteTimeout:      readWriteTimeout,
	}

	errs := make(chan error, 1)
	go func() {
		logger.Info("ws: listening on %s://%s/", cfg.Scheme(), srv.Addr)
		var err error
		if cfg.TLSCert != "" && cfg.TLSKey != "" {
			err = srv.ListenAndServeTLS(cfg.TLSCert, cfg.TLSKey)
		} else {
			err = srv.ListenAndServe()
		}
		if err != nil && err != http.ErrServerClosed {
			errs <- err
		}
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), readWriteTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errs:
		return err
	}
}
