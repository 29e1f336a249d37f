// MODUL: availability
// ZWECK: Verfuegbarkeits-Orakel fuer Vision-Modelle im Runner-Katalog
// INPUT: Modellname (ggf. mit Registry-Praefix)
// OUTPUT: true wenn das Modell lokal vorliegt
// NEBENEFFEKTE: Startet den Runner-CLI-Prozess ("ollama list")
// ABHAENGIGKEITEN: os/exec (stdlib)
// HINWEISE: Externes Orakel; Fehler beim Shell-Out gelten als "nicht
//           verfuegbar". listOutput ist fuer Tests injizierbar.

package llm

import (
	"context"
	"os/exec"
	"strings"
)

const registryPrefix = "registry.ollama.ai/library/"

// listOutput fuehrt das List-Kommando des Runners aus; injizierbar fuer Tests
var listOutput = func(ctx context.Context) (string, error) {
	out, err := exec.CommandContext(ctx, "ollama", "list").Output()
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// ModelAvailable meldet, ob ein Modell im lokalen Katalog vorliegt.
// Registry-Pfade werden auf den Katalog-Namen normalisiert
// (registry.../library/minicpm-v/latest -> minicpm-v:latest).
func ModelAvailable(ctx context.Context, modelName string) bool {
	name := NormalizeModelName(modelName)

	out, err := listOutput(ctx)
	if err != nil {
		return false
	}

	lines := strings.Split(out, "\n")
	if len(lines) < 2 {
		return false
	}

	// Erste Zeile ist die Tabellen-Kopfzeile
	for _, line := range lines[1:] {
		fields := strings.Fields(line)
		if len(fields) > 0 && strings.EqualFold(fields[0], name) {
			return true
		}
	}

	return false
}

// NormalizeModelName entfernt den Registry-Praefix und stellt die
// Katalog-Schreibweise mit Doppelpunkt-Tag her.
func NormalizeModelName(modelName string) string {
	if stripped, ok := strings.CutPrefix(modelName, registryPrefix); ok {
		return strings.ReplaceAll(stripped, "/", ":")
	}
	return modelName
}
