// MODUL: pipeline
// ZWECK: Orchestriert den kompletten Vision-Request-Fluss
// INPUT: VisionRequest, PipelineConfig, Lizenz-Gate, VisionEngine
// OUTPUT: VisionResponse oder typisierter Fehler
// NEBENEFFEKTE: Lizenz-Metering, Netzwerk (Bild-Fetch, Inferenz)
// ABHAENGIGKEITEN: license, vision, llm, api (intern)
// HINWEISE: Reihenfolge ist fix: Gate -> Rohbild -> Preprocessing ->
//           Modellwahl -> Prompt -> begrenzte Inferenz -> gestufter Parser.
//           Lizenz-Fehler brechen vor jeglicher Bildarbeit ab.

package server

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/durchblick-ai/durchblick/api"
	"github.com/durchblick-ai/durchblick/envconfig"
	"github.com/durchblick-ai/durchblick/llm"
	"github.com/durchblick-ai/durchblick/vision"
)

// Eingabe-Fehler der Pipeline; mit errors.Is vom uebrigen Fehlerraum
// unterscheidbar
var (
	ErrBadInput          = errors.New("invalid vision request")
	ErrModelNotAvailable = errors.New("vision model not available")
)

// availableFunc ist die Signatur des Verfuegbarkeits-Orakels
type availableFunc func(ctx context.Context, model string) bool

// PipelineConfig buendelt die Policy der Pipeline. Wird einmal beim Start
// aus der Umgebung gebaut und explizit durchgereicht; kein Ambient-Zugriff,
// damit Tests pro Fall frischen Zustand injizieren koennen.
type PipelineConfig struct {
	DevMode          bool                    // ueberspringt Lizenzpruefung und Metering komplett
	DefaultModel     string                  // Modell, wenn der Request keins nennt
	Preprocess       vision.PreprocessConfig // Budgets fuer die Bild-Normalisierung
	InferenceTimeout time.Duration           // Wandzeit-Limit der Generierung
	FetchTimeout     time.Duration           // Limit fuer Bild-Downloads
}

// PipelineConfigFromEnv baut die Konfiguration aus der Umgebung
func PipelineConfigFromEnv() PipelineConfig {
	return PipelineConfig{
		DevMode:          envconfig.VisionDevMode(),
		DefaultModel:     envconfig.VisionModel(),
		Preprocess:       vision.DefaultPreprocessConfig(),
		InferenceTimeout: envconfig.VisionTimeout(),
		FetchTimeout:     envconfig.FetchTimeout(),
	}
}

// ProcessVisionRequest fuehrt eine komplette Analyse aus
func (s *Server) ProcessVisionRequest(ctx context.Context, req *api.VisionRequest) (*api.VisionResponse, error) {
	start := time.Now()

	// Einziger Dev-Mode-Schalter: ueberspringt Pruefung und Metering
	if !s.cfg.DevMode {
		if err := s.gate.CheckAccess(ctx, req.License); err != nil {
			return nil, err
		}
		if err := s.gate.RecordUsage(); err != nil {
			return nil, err
		}
	}

	raw, err := s.loadImage(ctx, req)
	if err != nil {
		return nil, err
	}

	preprocessed, err := vision.Preprocess(raw, s.cfg.Preprocess)
	if err != nil {
		return nil, fmt.Errorf("%w: preprocess image: %v", ErrBadInput, err)
	}

	model := s.resolveModel(req)
	if !s.available(ctx, model) {
		return nil, fmt.Errorf(
			"%w: '%s' is missing from the local catalog; pull it first, e.g. `ollama pull %s`",
			ErrModelNotAvailable, model, llm.NormalizeModelName(model),
		)
	}

	prompt := vision.BuildPrompt(req.Mode, preprocessed.Width, preprocessed.Height, model)

	slog.Debug("vision inference",
		"model", model,
		"mode", req.Mode,
		"image_bytes", len(preprocessed.Bytes),
		"size", fmt.Sprintf("%dx%d", preprocessed.Width, preprocessed.Height),
		"prompt_len", len(prompt))

	output, err := llm.Invoke(ctx, s.engine, model, preprocessed.Bytes, prompt, vision.DefaultGenOptions(), s.cfg.InferenceTimeout)
	if err != nil {
		return nil, err
	}

	return vision.ParseOutput(output, req, model, time.Since(start).Milliseconds()), nil
}

// loadImage beschafft die Roh-Bytes: Inline-Base64 hat Vorrang vor URL.
// Keine Quelle ist ein Eingabefehler.
func (s *Server) loadImage(ctx context.Context, req *api.VisionRequest) ([]byte, error) {
	switch {
	case req.ImageBase64 != "":
		data, err := base64.StdEncoding.DecodeString(req.ImageBase64)
		if err != nil {
			return nil, fmt.Errorf("%w: decode base64 image: %v", ErrBadInput, err)
		}
		return data, nil
	case req.URL != "":
		data, err := fetchImage(ctx, req.URL, s.cfg.FetchTimeout)
		if err != nil {
			return nil, fmt.Errorf("%w: fetch image: %v", ErrBadInput, err)
		}
		return data, nil
	default:
		return nil, fmt.Errorf("%w: either image_base64 or url must be provided", ErrBadInput)
	}
}

// resolveModel waehlt das Modell: Request vor konfiguriertem Default.
// Den Default liefert envconfig.VisionModel ueber PipelineConfigFromEnv.
func (s *Server) resolveModel(req *api.VisionRequest) string {
	if req.Model != "" {
		return req.Model
	}
	return s.cfg.DefaultModel
}
