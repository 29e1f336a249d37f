// MODUL: runner_test
// ZWECK: Tests fuer die Runner-Anbindung
// INPUT: Nachgebauter Generate-Endpoint via httptest
// OUTPUT: Testresultate
// NEBENEFFEKTE: Lokaler HTTP-Testserver
// ABHAENGIGKEITEN: testing, net/http/httptest, api (intern)
// HINWEISE: Prueft Request-Form (Optionen, Bild-Payload, stream=false)

package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/durchblick-ai/durchblick/api"
	"github.com/durchblick-ai/durchblick/vision"
)

func TestRunnerGenerate(t *testing.T) {
	var captured map[string]any

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/generate" {
			t.Errorf("Pfad = %q", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Errorf("Body dekodieren: %v", err)
		}

		json.NewEncoder(w).Encode(map[string]any{
			"model":    "minicpm-v:latest",
			"response": `{"text_blocks": []}`,
			"done":     true,
		})
	}))
	t.Cleanup(srv.Close)

	base, err := url.Parse(srv.URL)
	if err != nil {
		t.Fatal(err)
	}

	runner := NewRunnerWithClient(api.NewClient(base, http.DefaultClient))

	image := []byte{0xFF, 0xD8, 0xFF, 0xE0}
	out, err := runner.Generate(context.Background(), "minicpm-v:latest", image, "beschreibe das bild", vision.DefaultGenOptions())
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if out != `{"text_blocks": []}` {
		t.Errorf("out = %q", out)
	}

	if captured["model"] != "minicpm-v:latest" {
		t.Errorf("model = %v", captured["model"])
	}
	if captured["prompt"] != "beschreibe das bild" {
		t.Errorf("prompt = %v", captured["prompt"])
	}
	if stream, ok := captured["stream"].(bool); !ok || stream {
		t.Errorf("stream = %v, erwartet false", captured["stream"])
	}

	images, ok := captured["images"].([]any)
	if !ok || len(images) != 1 {
		t.Fatalf("images = %v", captured["images"])
	}
	// api.ImageData serialisiert als Base64-String
	if images[0] != "/9j/4A==" {
		t.Errorf("images[0] = %v", images[0])
	}

	opts, ok := captured["options"].(map[string]any)
	if !ok {
		t.Fatalf("options = %v", captured["options"])
	}
	if opts["num_predict"] != float64(1024) {
		t.Errorf("num_predict = %v", opts["num_predict"])
	}
	if opts["temperature"] != 0.1 {
		t.Errorf("temperature = %v", opts["temperature"])
	}
	if opts["top_k"] != float64(40) {
		t.Errorf("top_k = %v", opts["top_k"])
	}
}

func TestRunnerGenerateServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error": "model crashed"}`))
	}))
	t.Cleanup(srv.Close)

	base, err := url.Parse(srv.URL)
	if err != nil {
		t.Fatal(err)
	}

	runner := NewRunnerWithClient(api.NewClient(base, http.DefaultClient))

	_, err = runner.Generate(context.Background(), "minicpm-v:latest", nil, "prompt", vision.DefaultGenOptions())
	if err == nil {
		t.Fatal("Erwartet Fehler bei Status 500")
	}
}
