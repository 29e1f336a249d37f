// MODUL: preprocess
// ZWECK: Normalisiert Rohbilder in ein backend-sicheres JPEG-Payload
// INPUT: Roh-Bytes und PreprocessConfig (Kanten-/Pixel-Budget, JPEG-Qualitaet)
// OUTPUT: PreprocessedImage mit kodierten Bytes und finaler Groesse
// NEBENEFFEKTE: keine
// ABHAENGIGKEITEN: image/jpeg (stdlib), image.go (intern)
// HINWEISE: Zielgroesse ist deterministisch fuer gegebenes Input/Config-Paar;
//           zuerst lange Kante clampen, dann Pixel-Budget erzwingen

package vision

import (
	"bytes"
	"fmt"
	"image/jpeg"
	"math"

	"github.com/durchblick-ai/durchblick/envconfig"
)

// PreprocessConfig definiert die Budgets fuer das Preprocessing.
// Unveraenderlich pro Aufruf, wird nicht persistiert.
type PreprocessConfig struct {
	MaxLongEdge int   // Maximale lange Kante in Pixeln
	MaxPixels   int64 // Gesamt-Pixel-Budget
	JPEGQuality int   // 0-100
}

// DefaultPreprocessConfig gibt die konfigurierten Budgets zurueck.
// Defaults: lange Kante 640px, 1.5MP, Qualitaet 80 - klein genug, um
// Transport-Limits zu vermeiden und die Inferenz-Latenz zu begrenzen.
func DefaultPreprocessConfig() PreprocessConfig {
	return PreprocessConfig{
		MaxLongEdge: int(envconfig.VisionMaxLongEdge()),
		MaxPixels:   int64(envconfig.VisionMaxPixels()),
		JPEGQuality: int(envconfig.VisionJPEGQuality()),
	}
}

// PreprocessedImage ist das kodierte Ergebnis eines Preprocess-Aufrufs.
// Gehoert exklusiv dem aufrufenden Request und wird nach der Inferenz verworfen.
type PreprocessedImage struct {
	Bytes  []byte
	Width  int
	Height int
}

// Preprocess dekodiert, verkleinert und re-enkodiert ein Bild als JPEG.
// Dekodier-Fehler sind fatal und werden nicht wiederholt.
func Preprocess(data []byte, cfg PreprocessConfig) (*PreprocessedImage, error) {
	img, err := LoadImageFromBytes(data)
	if err != nil {
		return nil, err
	}

	targetW, targetH := targetSize(img.Width, img.Height, cfg)

	resized := img
	if targetW != img.Width || targetH != img.Height {
		resized, err = ResizeImage(img, targetW, targetH)
		if err != nil {
			return nil, err
		}
	}

	// Guard gegen unerwartet grosse Payloads. Sollte nach targetSize
	// rechnerisch nicht eintreten, wird aber vor dem Versand geprueft.
	if int64(targetW)*int64(targetH) > cfg.MaxPixels {
		return nil, fmt.Errorf("bild nach resize zu gross (%dx%d)", targetW, targetH)
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, resized.Image, &jpeg.Options{Quality: cfg.JPEGQuality}); err != nil {
		return nil, fmt.Errorf("jpeg enkodieren fehlgeschlagen: %w", err)
	}

	return &PreprocessedImage{
		Bytes:  buf.Bytes(),
		Width:  targetW,
		Height: targetH,
	}, nil
}

// targetSize berechnet die Zielgroesse unter beiden Budgets.
// Schritt 1: lange Kante auf MaxLongEdge clampen (kurze Kante gerundet, min 1).
// Schritt 2: Pixel-Budget via sqrt-Skalierung erzwingen (abgeschnitten, min 1).
func targetSize(w, h int, cfg PreprocessConfig) (int, int) {
	targetW, targetH := w, h

	if max(w, h) > cfg.MaxLongEdge {
		if w >= h {
			targetW = cfg.MaxLongEdge
			targetH = max(1, int(math.Round(float64(h)*float64(cfg.MaxLongEdge)/float64(w))))
		} else {
			targetH = cfg.MaxLongEdge
			targetW = max(1, int(math.Round(float64(w)*float64(cfg.MaxLongEdge)/float64(h))))
		}
	}

	if pixels := int64(targetW) * int64(targetH); pixels > cfg.MaxPixels {
		scale := math.Sqrt(float64(cfg.MaxPixels) / float64(pixels))
		targetW = max(1, int(float64(targetW)*scale))
		targetH = max(1, int(float64(targetH)*scale))
	}

	return targetW, targetH
}
