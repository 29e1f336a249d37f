// MODUL: options
// ZWECK: Sampling-Policy fuer strukturierte Vision-Extraktion
// INPUT: keine
// OUTPUT: GenOptions Struct mit deterministisch orientierten Settings
// NEBENEFFEKTE: keine
// ABHAENGIGKEITEN: keine
// HINWEISE: Feste Policy dieser Pipeline, keine Nutzer-Konfiguration

package vision

// GenOptions sind die Generierungs-Optionen fuer einen Inferenz-Aufruf
type GenOptions struct {
	MaxTokens     int
	Temperature   float64
	TopP          float64
	TopK          int
	RepeatPenalty float64
	Stop          []string
}

// DefaultGenOptions gibt die feste Extraktions-Policy zurueck.
// Niedrige Temperatur und begrenzte Token-Zahl: das Ziel ist strukturierte
// Extraktion, nicht kreative Generierung.
func DefaultGenOptions() GenOptions {
	return GenOptions{
		MaxTokens:     1024,
		Temperature:   0.1,
		TopP:          0.9,
		TopK:          40,
		RepeatPenalty: 1.0,
		Stop:          []string{"</s>"},
	}
}
