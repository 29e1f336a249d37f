// MODUL: runner
// ZWECK: VisionEngine-Implementierung gegen den backenden Modell-Runner
// INPUT: Modellname, JPEG-Payload, Prompt, GenOptions
// OUTPUT: Roh-Text der Generierung
// NEBENEFFEKTE: HTTP-Roundtrip zum Runner-Daemon
// ABHAENGIGKEITEN: api (intern), envconfig (intern)
// HINWEISE: Nicht-streamender Aufruf; das Bild geht als separates Payload,
//           nie eingebettet in den Prompt

package llm

import (
	"context"
	"fmt"
	"net/http"

	"github.com/durchblick-ai/durchblick/api"
	"github.com/durchblick-ai/durchblick/envconfig"
	"github.com/durchblick-ai/durchblick/vision"
)

// Runner spricht einen lokalen Modell-Runner (Ollama-kompatible API) an
type Runner struct {
	client *api.Client
}

// NewRunner erstellt einen Runner aus der Umgebungskonfiguration
func NewRunner() *Runner {
	return &Runner{
		client: api.NewClient(envconfig.Runner(), http.DefaultClient),
	}
}

// NewRunnerWithClient erstellt einen Runner mit explizitem Client (Tests)
func NewRunnerWithClient(client *api.Client) *Runner {
	return &Runner{client: client}
}

// Generate implementiert VisionEngine ueber den Generate-Endpoint des Runners
func (r *Runner) Generate(ctx context.Context, model string, image []byte, prompt string, opts vision.GenOptions) (string, error) {
	stream := false
	resp, err := r.client.Generate(ctx, &api.GenerateRequest{
		Model:  model,
		Prompt: prompt,
		Images: []api.ImageData{image},
		Stream: &stream,
		Options: map[string]any{
			"num_predict":    opts.MaxTokens,
			"temperature":    opts.Temperature,
			"top_p":          opts.TopP,
			"top_k":          opts.TopK,
			"repeat_penalty": opts.RepeatPenalty,
			"stop":           opts.Stop,
		},
	})
	if err != nil {
		return "", fmt.Errorf("runner generate: %w", err)
	}

	return resp.Response, nil
}
