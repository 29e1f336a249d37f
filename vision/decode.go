// MODUL: decode
// ZWECK: Defensive JSON-Dekodier-Kombinatoren fuer Modell-Output
// INPUT: Untypisierte JSON-Werte (any) aus encoding/json
// OUTPUT: Typisierte Felder mit Default-bei-fehlend Semantik
// NEBENEFFEKTE: keine
// ABHAENGIGKEITEN: keine (nur Standardbibliothek)
// HINWEISE: Einheitliche Policy: fehlendes Feld -> Schema-Default, falsche
//           Form -> nur dieses Feld verwerfen, fehlerhafte Array-Elemente ->
//           elementweise verwerfen statt das Array abzubrechen

package vision

// asObject liefert v als JSON-Objekt, oder nil bei falscher Form.
// Lookups auf einer nil-Map sind gueltig, daher reicht der Zero-Wert.
func asObject(v any) map[string]any {
	obj, _ := v.(map[string]any)
	return obj
}

// optString liefert ein optionales String-Feld
func optString(obj map[string]any, key string) *string {
	if s, ok := obj[key].(string); ok {
		return &s
	}
	return nil
}

// reqString liefert ein Pflicht-String-Feld
func reqString(obj map[string]any, key string) (string, bool) {
	s, ok := obj[key].(string)
	return s, ok
}

// optFloat liefert ein optionales Zahlen-Feld.
// encoding/json dekodiert alle JSON-Zahlen als float64.
func optFloat(obj map[string]any, key string) *float64 {
	if f, ok := obj[key].(float64); ok {
		return &f
	}
	return nil
}

// reqFloat liefert ein Pflicht-Zahlen-Feld
func reqFloat(obj map[string]any, key string) (float64, bool) {
	f, ok := obj[key].(float64)
	return f, ok
}

// optBool liefert ein optionales Bool-Feld
func optBool(obj map[string]any, key string) *bool {
	if b, ok := obj[key].(bool); ok {
		return &b
	}
	return nil
}

// decodeSlice dekodiert ein Array-Feld Element fuer Element.
// Nicht-Objekte und Elemente, deren Decoder false liefert, werden
// verworfen. Fehlendes oder falsch geformtes Feld ergibt ein leeres Slice.
func decodeSlice[T any](obj map[string]any, key string, decode func(map[string]any) (T, bool)) []T {
	out := []T{}

	arr, _ := obj[key].([]any)
	for _, item := range arr {
		elem := asObject(item)
		if elem == nil {
			continue
		}
		if v, ok := decode(elem); ok {
			out = append(out, v)
		}
	}

	return out
}

// stringSlice dekodiert ein Array aus Strings, Nicht-Strings werden verworfen
func stringSlice(obj map[string]any, key string) []string {
	out := []string{}

	arr, _ := obj[key].([]any)
	for _, item := range arr {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}

	return out
}

// stringMap dekodiert ein Objekt aus String-Werten, andere Werte werden verworfen
func stringMap(obj map[string]any, key string) map[string]string {
	out := map[string]string{}

	for k, v := range asObject(obj[key]) {
		if s, ok := v.(string); ok {
			out[k] = s
		}
	}

	return out
}
