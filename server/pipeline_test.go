// MODUL: pipeline_test
// ZWECK: Tests fuer die Vision-Pipeline vom Request bis zur Antwort
// INPUT: Synthetische Bilder, Stub-Engine, injiziertes Orakel
// OUTPUT: Testresultate
// NEBENEFFEKTE: Temporaere Dateien via t.TempDir
// ABHAENGIGKEITEN: testing, license, llm, vision, api (intern)
// HINWEISE: Dev-Mode umgeht das Lizenz-Gate; die Gate-Faelle selbst
//           testet das license-Package

package server

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"image"
	"image/color"
	"image/png"
	"strings"
	"testing"
	"time"

	"github.com/durchblick-ai/durchblick/api"
	"github.com/durchblick-ai/durchblick/license"
	"github.com/durchblick-ai/durchblick/vision"
)

// stubEngine gibt einen festen Roh-Output zurueck und merkt sich den Aufruf
type stubEngine struct {
	output string
	err    error
	delay  time.Duration

	model  string
	prompt string
	image  []byte
}

func (e *stubEngine) Generate(ctx context.Context, model string, image []byte, prompt string, opts vision.GenOptions) (string, error) {
	e.model = model
	e.prompt = prompt
	e.image = image

	if e.delay > 0 {
		select {
		case <-time.After(e.delay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	return e.output, e.err
}

// testPNGBase64 erzeugt ein Bild als Base64-PNG
func testPNGBase64(t *testing.T, w, h int) string {
	t.Helper()

	rgba := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			rgba.Set(x, y, color.RGBA{uint8(x % 256), uint8(y % 256), 100, 255})
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, rgba); err != nil {
		t.Fatal(err)
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes())
}

// newTestServer baut einen Server im Dev-Mode mit Stub-Engine
func newTestServer(t *testing.T, engine *stubEngine) *Server {
	t.Helper()

	gate, err := license.NewManagerAt(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	s := NewServer(gate, engine, PipelineConfig{
		DevMode:          true,
		DefaultModel:     "minicpm-v:latest",
		Preprocess:       vision.PreprocessConfig{MaxLongEdge: 640, MaxPixels: 1_500_000, JPEGQuality: 80},
		InferenceTimeout: time.Second,
		FetchTimeout:     time.Second,
	})
	s.available = func(ctx context.Context, model string) bool { return true }
	return s
}

func TestProcessVisionRequest(t *testing.T) {
	engine := &stubEngine{output: `{"text_blocks": [{"text": "hallo", "confidence": 0.9}]}`}
	s := newTestServer(t, engine)

	req := &api.VisionRequest{
		ImageBase64: testPNGBase64(t, 100, 80),
		Mode:        "ocr",
	}

	resp, err := s.ProcessVisionRequest(context.Background(), req)
	if err != nil {
		t.Fatalf("ProcessVisionRequest() error = %v", err)
	}

	if len(resp.TextBlocks) != 1 || resp.TextBlocks[0].Text != "hallo" {
		t.Errorf("TextBlocks = %v", resp.TextBlocks)
	}
	if resp.Meta.Model != "minicpm-v:latest" {
		t.Errorf("Model = %q, erwartet Default", resp.Meta.Model)
	}
	if resp.Meta.Backend != "llama.cpp" {
		t.Errorf("Backend = %q", resp.Meta.Backend)
	}

	// Engine muss das vorverarbeitete JPEG sehen, nicht das Original-PNG
	if vision.DetectFormat(engine.image) != vision.FormatJPEG {
		t.Errorf("Engine-Payload ist %v, erwartet JPEG", vision.DetectFormat(engine.image))
	}
	if !strings.Contains(engine.prompt, "100x80 pixels") {
		t.Errorf("Prompt nennt die Bildgroesse nicht: %q", engine.prompt)
	}
}

func TestProcessVisionRequestDownscales(t *testing.T) {
	engine := &stubEngine{output: `{}`}
	s := newTestServer(t, engine)

	req := &api.VisionRequest{
		ImageBase64: testPNGBase64(t, 1280, 720),
		Mode:        "brief",
	}

	if _, err := s.ProcessVisionRequest(context.Background(), req); err != nil {
		t.Fatalf("ProcessVisionRequest() error = %v", err)
	}

	if !strings.Contains(engine.prompt, "640x360 pixels") {
		t.Errorf("Prompt nennt die skalierte Groesse nicht: %q", engine.prompt)
	}
}

func TestProcessVisionRequestModelPriority(t *testing.T) {
	tests := []struct {
		name     string
		reqModel string
		cfgModel string
		expected string
	}{
		{"Request gewinnt", "llava:13b", "qwen-vl", "llava:13b"},
		{"Konfiguriertes Modell als Fallback", "", "qwen-vl", "qwen-vl"},
		{"Default ohne Request-Modell", "", "", "minicpm-v:latest"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine := &stubEngine{output: `{}`}
			s := newTestServer(t, engine)
			if tt.cfgModel != "" {
				s.cfg.DefaultModel = tt.cfgModel
			}

			req := &api.VisionRequest{
				ImageBase64: testPNGBase64(t, 50, 50),
				Mode:        "full",
				Model:       tt.reqModel,
			}

			if _, err := s.ProcessVisionRequest(context.Background(), req); err != nil {
				t.Fatalf("ProcessVisionRequest() error = %v", err)
			}
			if engine.model != tt.expected {
				t.Errorf("Modell = %q, erwartet %q", engine.model, tt.expected)
			}
		})
	}
}

func TestPipelineConfigFromEnvDefaultModel(t *testing.T) {
	t.Setenv("DURCHBLICK_VISION_MODEL", "")
	if got := PipelineConfigFromEnv().DefaultModel; got != "minicpm-v:latest" {
		t.Errorf("DefaultModel = %q, erwartet minicpm-v:latest", got)
	}

	t.Setenv("DURCHBLICK_VISION_MODEL", "llava:7b")
	if got := PipelineConfigFromEnv().DefaultModel; got != "llava:7b" {
		t.Errorf("DefaultModel = %q, erwartet llava:7b", got)
	}
}

func TestProcessVisionRequestNoImage(t *testing.T) {
	s := newTestServer(t, &stubEngine{output: `{}`})

	_, err := s.ProcessVisionRequest(context.Background(), &api.VisionRequest{Mode: "full"})
	if !errors.Is(err, ErrBadInput) {
		t.Errorf("err = %v, erwartet ErrBadInput", err)
	}
}

func TestProcessVisionRequestBadBase64(t *testing.T) {
	s := newTestServer(t, &stubEngine{output: `{}`})

	req := &api.VisionRequest{ImageBase64: "kein base64!!!", Mode: "full"}
	_, err := s.ProcessVisionRequest(context.Background(), req)
	if !errors.Is(err, ErrBadInput) {
		t.Errorf("err = %v, erwartet ErrBadInput", err)
	}
}

func TestProcessVisionRequestUndecodableImage(t *testing.T) {
	s := newTestServer(t, &stubEngine{output: `{}`})

	req := &api.VisionRequest{
		ImageBase64: base64.StdEncoding.EncodeToString([]byte("kein bild")),
		Mode:        "full",
	}
	_, err := s.ProcessVisionRequest(context.Background(), req)
	if !errors.Is(err, ErrBadInput) {
		t.Errorf("err = %v, erwartet ErrBadInput", err)
	}
}

func TestProcessVisionRequestModelMissing(t *testing.T) {
	s := newTestServer(t, &stubEngine{output: `{}`})
	s.available = func(ctx context.Context, model string) bool { return false }

	req := &api.VisionRequest{
		ImageBase64: testPNGBase64(t, 50, 50),
		Mode:        "full",
	}

	_, err := s.ProcessVisionRequest(context.Background(), req)
	if !errors.Is(err, ErrModelNotAvailable) {
		t.Fatalf("err = %v, erwartet ErrModelNotAvailable", err)
	}
	if !strings.Contains(err.Error(), "ollama pull") {
		t.Errorf("Fehlermeldung ohne Pull-Hinweis: %v", err)
	}
}

func TestProcessVisionRequestLicenseGate(t *testing.T) {
	engine := &stubEngine{output: `{}`}
	s := newTestServer(t, engine)
	s.cfg.DevMode = false

	req := &api.VisionRequest{
		ImageBase64: testPNGBase64(t, 50, 50),
		Mode:        "full",
	}

	// Ohne Schluessel blockiert das Gate vor jeder Bildarbeit
	_, err := s.ProcessVisionRequest(context.Background(), req)
	if !errors.Is(err, license.ErrMissingLicense) {
		t.Errorf("err = %v, erwartet ErrMissingLicense", err)
	}
	if engine.image != nil {
		t.Error("Engine darf bei abgewiesenem Request nicht aufgerufen werden")
	}
}

func TestProcessVisionRequestMetering(t *testing.T) {
	engine := &stubEngine{output: `{}`}
	s := newTestServer(t, engine)

	req := &api.VisionRequest{
		ImageBase64: testPNGBase64(t, 50, 50),
		Mode:        "full",
	}

	// Dev-Mode: kein Metering
	if _, err := s.ProcessVisionRequest(context.Background(), req); err != nil {
		t.Fatal(err)
	}
	if usage := s.gate.Usage(); usage.RequestsToday != 0 {
		t.Errorf("Dev-Mode hat gemetert: %+v", usage)
	}
}
