// MODUL: prompt
// ZWECK: Baut modus-spezifische Instruktions-Prompts fuer Vision-Modelle
// INPUT: Analyse-Modus, Bilddimensionen, Modellname
// OUTPUT: Prompt-String im Chat-Template der Modellfamilie
// NEBENEFFEKTE: keine
// ABHAENGIGKEITEN: keine (nur Standardbibliothek)
// HINWEISE: Bild-Bytes werden nie in den Prompt eingebettet (separates Payload,
//           vermeidet Plattform-Limits fuer Argumentlaengen)

package vision

import (
	"fmt"
	"strings"
)

// basePromptFormat nennt die Bildgroesse und erzwingt reine JSON-Antworten
const basePromptFormat = "You are an AI vision assistant. Analyze the provided image (dimensions: %dx%d pixels) and respond ONLY with a valid JSON object. Do not include any explanatory text before or after the JSON.\n\n"

// modeTasks bildet Analyse-Modi auf Task-Instruktionen ab.
// Jede Instruktion zeigt dem Modell die erwartete JSON-Form.
var modeTasks = map[string]string{
	"ocr":    `Extract all visible text from the image. Return JSON: {"text_blocks": [{"text": "extracted text here", "confidence": 0.95}]}`,
	"layout": `Analyze the layout and structure. Return JSON: {"layout": {"regions": [{"name": "region_name", "description": "description"}], "key_ui_elements": [{"name": "element_name", "element_type": "type"}]}}`,
	"brief":  `Provide a brief visual description. Return JSON: {"visual": {"description": "brief description of what you see"}}`,
	"web":    `Analyze as web page screenshot. Return JSON: {"dom_map": [{"tag": "div", "text": "content", "position": {"x": 0, "y": 0, "width": 100, "height": 40}}], "interaction": {"description": "interactive elements"}}`,
	"full":   `Perform comprehensive analysis. Return JSON with ALL fields: {"text_blocks": [...], "layout": {"regions": [...], "key_ui_elements": [...]}, "visual": {"description": "..."}, "interaction": {"description": "..."}}`,
}

// Chat-Templates pro Modellfamilie. Auswahl per case-insensitiver
// Substring-Suche im Modellnamen; neue Familien werden hier ergaenzt.
const (
	templateInstruct = "<s>[INST] %s [/INST]"
	templateChatML   = "<|im_start|>user\n%s<|im_end|>\n<|im_start|>assistant\n"
)

// familyTemplates ordnet Namens-Fragmente einem Template zu.
// Die Reihenfolge bestimmt die Prioritaet bei mehreren Treffern.
var familyTemplates = []struct {
	match    string
	template string
}{
	{"llava", templateInstruct},
	{"bakllava", templateInstruct},
	{"mistral", templateInstruct},
}

// BuildPrompt baut den vollstaendigen Prompt fuer einen Analyse-Modus.
// Unbekannte Modi fallen auf die "full"-Analyse zurueck.
func BuildPrompt(mode string, width, height int, modelName string) string {
	task, ok := modeTasks[mode]
	if !ok {
		task = modeTasks["full"]
	}

	instruction := fmt.Sprintf(basePromptFormat, width, height) + task

	return fmt.Sprintf(templateFor(modelName), instruction)
}

// templateFor waehlt das Chat-Template anhand des Modellnamens
func templateFor(modelName string) string {
	name := strings.ToLower(modelName)
	for _, f := range familyTemplates {
		if strings.Contains(name, f.match) {
			return f.template
		}
	}
	return templateChatML
}
