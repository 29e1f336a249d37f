// MODUL: parse
// ZWECK: Gestufter Parser von freiem Modell-Text zu VisionResponse
// INPUT: Roh-Output des Modells, Original-Request, Modellname, Dauer
// OUTPUT: Strikte VisionResponse; schlaegt bei fehlerhaftem Input nicht fehl
// NEBENEFFEKTE: keine
// ABHAENGIGKEITEN: api (intern), decode.go (intern), encoding/json
// HINWEISE: Drei Stufen: striktes JSON -> extrahiertes JSON -> Text-Fallback.
//           Fehlerhafter Output degradiert das Ergebnis, statt den Request
//           scheitern zu lassen. Roh-Output bleibt immer erhalten.

package vision

import (
	"encoding/json"
	"strings"

	"github.com/durchblick-ai/durchblick/api"
)

// backendName identifiziert das Inferenz-Backend in Meta
const backendName = "llama.cpp"

// fallbackWarning erklaert den Text-Fallback in parse_warnings
const fallbackWarning = "Could not parse structured output"

// ParseOutput wandelt rohen Modell-Text in eine strukturierte VisionResponse.
// Stufe 1: kompletter Text als JSON. Stufe 2: Substring zwischen erstem '{'
// und letztem '}'. Stufe 3: Fallback mit dem getrimmten Rohtext.
func ParseOutput(raw string, req *api.VisionRequest, modelName string, durationMS int64) *api.VisionResponse {
	var v any
	if err := json.Unmarshal([]byte(raw), &v); err == nil {
		return decodeStructured(v, req, modelName, durationMS, raw)
	}

	if start, end := strings.Index(raw, "{"), strings.LastIndex(raw, "}"); start >= 0 && end > start {
		var v any
		if err := json.Unmarshal([]byte(raw[start:end+1]), &v); err == nil {
			return decodeStructured(v, req, modelName, durationMS, raw)
		}
	}

	return fallbackResponse(raw, req, modelName, durationMS)
}

// decodeStructured dekodiert ein geparstes JSON-Dokument in das Schema.
// Jedes Feld wird defensiv gelesen; Nicht-Objekte ergeben eine leere Antwort.
func decodeStructured(v any, req *api.VisionRequest, modelName string, durationMS int64, raw string) *api.VisionResponse {
	obj := asObject(v)

	resp := &api.VisionResponse{
		URL:            requestURL(req),
		Mode:           req.Mode,
		TextBlocks:     decodeTextBlocks(obj),
		Layout:         decodeLayout(obj),
		Visual:         decodeVisual(obj),
		Interaction:    decodeInteraction(obj),
		DomMap:         decodeDomMap(obj),
		RawModelOutput: &raw,
		Meta: api.Meta{
			Model:      modelName,
			Backend:    backendName,
			DurationMS: durationMS,
		},
	}

	return resp
}

// fallbackResponse baut die Stufe-3-Antwort aus dem Rohtext
func fallbackResponse(raw string, req *api.VisionRequest, modelName string, durationMS int64) *api.VisionResponse {
	confidence := 0.5
	description := "Analysis completed"

	return &api.VisionResponse{
		URL:  requestURL(req),
		Mode: req.Mode,
		TextBlocks: []api.TextBlock{{
			Text:       strings.TrimSpace(raw),
			Confidence: &confidence,
		}},
		Layout: api.Layout{
			Regions:       []api.Region{},
			KeyUIElements: []api.UIElement{},
		},
		Visual: api.Visual{
			AccentColors: []string{},
			Description:  &description,
		},
		RawModelOutput: &raw,
		Meta: api.Meta{
			Model:         modelName,
			Backend:       backendName,
			DurationMS:    durationMS,
			ParseWarnings: []string{fallbackWarning},
		},
	}
}

func requestURL(req *api.VisionRequest) *string {
	if req.URL == "" {
		return nil
	}
	u := req.URL
	return &u
}

func decodeTextBlocks(obj map[string]any) []api.TextBlock {
	return decodeSlice(obj, "text_blocks", func(item map[string]any) (api.TextBlock, bool) {
		text, ok := reqString(item, "text")
		if !ok {
			return api.TextBlock{}, false
		}
		return api.TextBlock{
			Text:       text,
			Confidence: optFloat(item, "confidence"),
		}, true
	})
}

func decodeLayout(obj map[string]any) api.Layout {
	lobj := asObject(obj["layout"])

	return api.Layout{
		Theme: optString(lobj, "theme"),
		Regions: decodeSlice(lobj, "regions", func(item map[string]any) (api.Region, bool) {
			name, ok := reqString(item, "name")
			if !ok {
				return api.Region{}, false
			}
			description, ok := reqString(item, "description")
			if !ok {
				return api.Region{}, false
			}
			return api.Region{Name: name, Description: description}, true
		}),
		KeyUIElements: decodeSlice(lobj, "key_ui_elements", func(item map[string]any) (api.UIElement, bool) {
			name, ok := reqString(item, "name")
			if !ok {
				return api.UIElement{}, false
			}
			elementType, ok := reqString(item, "element_type")
			if !ok {
				return api.UIElement{}, false
			}
			return api.UIElement{Name: name, ElementType: elementType}, true
		}),
	}
}

func decodeVisual(obj map[string]any) api.Visual {
	vobj := asObject(obj["visual"])

	visual := api.Visual{
		Background:   optString(vobj, "background"),
		AccentColors: stringSlice(vobj, "accent_colors"),
		Description:  optString(vobj, "description"),
	}

	if cobj := asObject(vobj["contrast"]); cobj != nil {
		visual.Contrast = &api.Contrast{
			Ratio:     optFloat(cobj, "ratio"),
			Compliant: optBool(cobj, "compliant"),
			Issues:    stringSlice(cobj, "issues"),
		}
	}

	return visual
}

func decodeInteraction(obj map[string]any) api.Interaction {
	return api.Interaction{
		Description: optString(asObject(obj["interaction"]), "description"),
	}
}

// decodeDomMap liefert nil wenn dom_map fehlt, sonst die gefilterten Elemente.
// Elemente ohne gueltiges Positions-Rechteck werden verworfen.
func decodeDomMap(obj map[string]any) []api.DomElement {
	if _, ok := obj["dom_map"].([]any); !ok {
		return nil
	}

	return decodeSlice(obj, "dom_map", func(item map[string]any) (api.DomElement, bool) {
		tag, ok := reqString(item, "tag")
		if !ok {
			return api.DomElement{}, false
		}

		position, ok := decodeRect(asObject(item["position"]))
		if !ok {
			return api.DomElement{}, false
		}

		return api.DomElement{
			Tag:        tag,
			ID:         optString(item, "id"),
			Class:      optString(item, "class"),
			Text:       optString(item, "text"),
			Position:   position,
			Attributes: stringMap(item, "attributes"),
		}, true
	})
}

func decodeRect(obj map[string]any) (api.Rect, bool) {
	x, ok := reqFloat(obj, "x")
	if !ok {
		return api.Rect{}, false
	}
	y, ok := reqFloat(obj, "y")
	if !ok {
		return api.Rect{}, false
	}
	width, ok := reqFloat(obj, "width")
	if !ok {
		return api.Rect{}, false
	}
	height, ok := reqFloat(obj, "height")
	if !ok {
		return api.Rect{}, false
	}

	return api.Rect{X: x, Y: y, Width: width, Height: height}, true
}
