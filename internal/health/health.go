// Package health serves the liveness endpoint polled by cmd/healthcheck.
package health

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rotisserie/eris"

	"podstats-discord-bot/internal/logging"
	"podstats-discord-bot/internal/version"
)

// Path is the health route.
const Path = "/healthz"

// Status reports the state of the running bot.
type Status struct {
	Connected   func() bool
	ActiveGames func() int
}

// Router returns the health engine.
func Router(p Status) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.GET(Path, func(c *gin.Context) {
		connected := p.Connected != nil && p.Connected()
		games := 0
		if p.ActiveGames != nil {
			games = p.ActiveGames()
		}
		status, code := "ok", http.StatusOK
		if !connected {
			status, code = "degraded", http.StatusServiceUnavailable
		}
		c.JSON(code, gin.H{
			"status":            status,
			"version":           version.Version,
			"commit":            version.Commit,
			"discord_connected": connected,
			"active_games":      games,
		})
	})
	return r
}

// Serve listens on addr until ctx is done.
func Serve(ctx context.Context, addr string, h http.Handler) error {
	srv := &http.Server{Addr: addr, Handler: h, ReadHeaderTimeout: 5 * time.Second}
	errc := make(chan error, 1)
	go func() {
		logging.Info("health server started", logging.Fields{"addr": addr})
		errc <- srv.ListenAndServe()
	}()
	select {
	case err := <-errc:
		return eris.Wrap(err, "health server")
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return eris.Wrap(err, "shutdown health server")
	}
	return nil
}
