// MODUL: types_vision
// ZWECK: Wire-Typen fuer die Vision-Analyse API (/api/vision)
// INPUT: JSON Request/Response Bodies
// OUTPUT: Typisierte Strukturen fuer Handler und Client
// NEBENEFFEKTE: keine
// ABHAENGIGKEITEN: keine (nur Standardbibliothek)
// HINWEISE: Optionale Skalarfelder sind Pointer, fehlende Substrukturen bleiben leer
package api

// VisionRequest beschreibt eine Analyse-Anfrage.
// Genau eine der Quellen ImageBase64/URL muss gesetzt sein; geprueft wird
// das am Pipeline-Eingang, nicht im Typ.
type VisionRequest struct {
	ImageBase64 string `json:"image_base64,omitempty"` // Inline-Bild, Base64-kodiert
	URL         string `json:"url,omitempty"`          // Alternativ: Bild-URL
	Mode        string `json:"mode"`                   // ocr|layout|brief|web|full
	Model       string `json:"model,omitempty"`        // Modell-Override
	License     string `json:"license,omitempty"`      // Lizenzschluessel
	TimeoutMS   int64  `json:"timeout_ms,omitempty"`   // Hinweis, derzeit nicht ausgewertet
	Raw         bool   `json:"raw,omitempty"`          // Hinweis, derzeit nicht ausgewertet
}

// VisionResponse ist das strukturierte Analyse-Ergebnis.
// Lesen ist permissiv: fehlende Felder bleiben leer, der Container-Typ ist strikt.
type VisionResponse struct {
	ImagePath      *string      `json:"image_path"`
	URL            *string      `json:"url"`
	Mode           string       `json:"mode"`
	TextBlocks     []TextBlock  `json:"text_blocks"`
	Layout         Layout       `json:"layout"`
	Visual         Visual       `json:"visual"`
	Interaction    Interaction  `json:"interaction"`
	DomMap         []DomElement `json:"dom_map,omitempty"`
	Meta           Meta         `json:"meta"`
	RawModelOutput *string      `json:"raw_model_output"`
}

// TextBlock ist ein OCR-Textfragment
type TextBlock struct {
	Text       string   `json:"text"`
	Confidence *float64 `json:"confidence,omitempty"` // 0..1
}

// Layout beschreibt die erkannte Seitenstruktur
type Layout struct {
	Theme         *string     `json:"theme,omitempty"`
	Regions       []Region    `json:"regions"`
	KeyUIElements []UIElement `json:"key_ui_elements"`
}

// Region ist ein benannter Bereich im Layout
type Region struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// UIElement ist ein markantes Bedienelement
type UIElement struct {
	Name        string `json:"name"`
	ElementType string `json:"element_type"`
}

// Visual beschreibt die visuelle Gestaltung
type Visual struct {
	Background   *string   `json:"background,omitempty"`
	AccentColors []string  `json:"accent_colors"`
	Contrast     *Contrast `json:"contrast,omitempty"`
	Description  *string   `json:"description,omitempty"`
}

// Contrast ist eine Kontrast-Bewertung
type Contrast struct {
	Ratio     *float64 `json:"ratio,omitempty"`
	Compliant *bool    `json:"compliant,omitempty"`
	Issues    []string `json:"issues"`
}

// Interaction beschreibt interaktive Elemente in Freitext
type Interaction struct {
	Description *string `json:"description,omitempty"`
}

// DomElement ist ein rekonstruiertes DOM-Element (web-Modus).
// Position ist Pflicht; ein Element ohne Geometrie ist fuer Downstream-Nutzer
// nicht verwertbar und wird beim Parsen verworfen.
type DomElement struct {
	Tag        string            `json:"tag"`
	ID         *string           `json:"id,omitempty"`
	Class      *string           `json:"class,omitempty"`
	Text       *string           `json:"text,omitempty"`
	Position   Rect              `json:"position"`
	Attributes map[string]string `json:"attributes"`
}

// Rect ist ein Positions-Rechteck
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Meta enthaelt Ausfuehrungs-Metadaten der Analyse
type Meta struct {
	Model         string   `json:"model"`
	Backend       string   `json:"backend"`
	DurationMS    int64    `json:"duration_ms"`
	ParseWarnings []string `json:"parse_warnings"`
}

// VisionUsageResponse ist der Metering-Snapshot (/api/vision/usage)
type VisionUsageResponse struct {
	RequestsToday     uint32 `json:"requests_today"`
	RequestsThisMonth uint32 `json:"requests_this_month"`
	LastReset         string `json:"last_reset"`
}
