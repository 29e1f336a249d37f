// routes_serve.go - Server-Start und Lifecycle-Management
// Enthaelt: Serve() - Hauptfunktion zum Starten des HTTP-Servers

package server

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"slices"
	"syscall"

	"github.com/durchblick-ai/durchblick/envconfig"
	"github.com/durchblick-ai/durchblick/license"
	"github.com/durchblick-ai/durchblick/llm"
	"github.com/durchblick-ai/durchblick/logutil"
	"github.com/durchblick-ai/durchblick/version"
)

// Serve startet den HTTP-Server mit verdrahteter Vision-Pipeline
func Serve(ln net.Listener) error {
	slog.SetDefault(logutil.NewLogger(os.Stderr, envconfig.LogLevel()))
	slog.Info("server config", "env", envconfig.Values())

	gate, err := license.NewManager()
	if err != nil {
		return err
	}

	// Expliziter Startup-Schritt: persistierten Lizenz-/Metering-Zustand
	// laden. Korrupter Zustand blockiert den Start nicht.
	if err := gate.LoadCache(); err != nil {
		slog.Warn("could not load license state, starting fresh", "error", err)
	}

	cfg := PipelineConfigFromEnv()
	if cfg.DevMode {
		slog.Warn("vision dev mode enabled, license checks and metering are skipped")
	}

	s := NewServer(gate, llm.NewRunner(), cfg)
	s.addr = ln.Addr()

	h, err := s.GenerateRoutes()
	if err != nil {
		return err
	}

	http.Handle("/", h)

	ctx, done := context.WithCancel(context.Background())
	defer done()

	slog.Info(fmt.Sprintf("Listening on %s (version %s)", ln.Addr(), version.Version))
	srvr := &http.Server{
		// http.DefaultServeMux liefert net/http/pprof gratis mit
		Handler: nil,
	}

	// auf ctrl+c reagieren und sauber herunterfahren
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-signals
		srvr.Close()
		done()
	}()

	err = srvr.Serve(ln)
	// Wenn der Server aus dem Signal-Handler geschlossen wurde, auf den
	// Context warten, sonst den Fehler direkt melden
	if !slices.Contains([]error{http.ErrServerClosed}, err) {
		return err
	}
	<-ctx.Done()
	return nil
}
