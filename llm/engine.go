// MODUL: engine
// ZWECK: Inferenz-Invoker mit hartem Wandzeit-Limit
// INPUT: VisionEngine, Bild-Payload, Prompt, GenOptions, Timeout
// OUTPUT: Roh-Text des Modells oder ErrTimeout
// NEBENEFFEKTE: Startet eine Goroutine pro Aufruf
// ABHAENGIGKEITEN: vision (intern), context
// HINWEISE: Bei Timeout wird die laufende Generierung ueber den Context
//           abgebrochen; der Aufrufer blockiert nie laenger als das Limit.
//           Kein automatischer Retry.

package llm

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/durchblick-ai/durchblick/vision"
)

// ErrTimeout meldet eine abgebrochene Inferenz. Mit errors.Is vom
// generischen Inferenz-Fehler unterscheidbar, damit Aufrufer eine eigene
// Retry-Policy anwenden koennen.
var ErrTimeout = errors.New("vision inference timed out")

// VisionEngine ist die Generierungs-Faehigkeit eines vision-faehigen Backends.
// Implementierungen muessen Context-Abbruch respektieren.
type VisionEngine interface {
	Generate(ctx context.Context, model string, image []byte, prompt string, opts vision.GenOptions) (string, error)
}

type generateResult struct {
	text string
	err  error
}

// Invoke fuehrt eine Generierung mit festem Wandzeit-Limit aus.
// Die Goroutine laeuft nach einem Timeout in den abgebrochenen Context
// hinein und beendet sich selbst; ihr Ergebnis wird verworfen.
func Invoke(ctx context.Context, engine VisionEngine, model string, image []byte, prompt string, opts vision.GenOptions, timeout time.Duration) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ch := make(chan generateResult, 1)
	go func() {
		text, err := engine.Generate(ctx, model, image, prompt, opts)
		ch <- generateResult{text: text, err: err}
	}()

	select {
	case res := <-ch:
		if res.err != nil {
			if errors.Is(res.err, context.DeadlineExceeded) {
				return "", fmt.Errorf("%w after %s", ErrTimeout, timeout)
			}
			return "", fmt.Errorf("vision inference failed: %w", res.err)
		}
		return res.text, nil
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return "", fmt.Errorf("%w after %s", ErrTimeout, timeout)
		}
		return "", ctx.Err()
	}
}
