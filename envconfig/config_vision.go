// config_vision.go - Vision-Pipeline und Lizenz-Konfiguration
//
// Dieses Modul enthaelt:
// - VisionModel: Default-Modell fuer Vision-Analysen (DURCHBLICK_VISION_MODEL)
// - VisionDevMode: Entwickler-Bypass fuer die Lizenzpruefung (DURCHBLICK_VISION_DEV_MODE)
// - VisionTimeout: Wandzeit-Limit fuer die Inferenz (DURCHBLICK_VISION_TIMEOUT)
// - FetchTimeout: Limit fuer Bild-Downloads (DURCHBLICK_FETCH_TIMEOUT)
// - VisionMaxLongEdge/VisionMaxPixels/VisionJPEGQuality: Preprocessing-Budgets
// - KeygenAccountID/KeygenAPIKey: Credentials fuer die Lizenz-Autoritaet
package envconfig

import "time"

// VisionModel gibt das Default-Vision-Modell zurueck
// Konfigurierbar via DURCHBLICK_VISION_MODEL
func VisionModel() string {
	if s := Var("DURCHBLICK_VISION_MODEL"); s != "" {
		return s
	}
	return "minicpm-v:latest"
}

// VisionDevMode meldet, ob Lizenzpruefung und Metering uebersprungen werden
// Konfigurierbar via DURCHBLICK_VISION_DEV_MODE
var VisionDevMode = Bool("DURCHBLICK_VISION_DEV_MODE")

// VisionTimeout gibt das Wandzeit-Limit fuer einen Inferenz-Aufruf zurueck
// Konfigurierbar via DURCHBLICK_VISION_TIMEOUT
// Default: 10s
func VisionTimeout() time.Duration {
	return Duration("DURCHBLICK_VISION_TIMEOUT", 10*time.Second)
}

// FetchTimeout gibt das Limit fuer Bild-Downloads von URLs zurueck
// Konfigurierbar via DURCHBLICK_FETCH_TIMEOUT
// Default: 30s
func FetchTimeout() time.Duration {
	return Duration("DURCHBLICK_FETCH_TIMEOUT", 30*time.Second)
}

// VisionMaxLongEdge gibt die maximale lange Bildkante in Pixeln zurueck
// Konfigurierbar via DURCHBLICK_VISION_MAX_LONG_EDGE
// Default: 640
var VisionMaxLongEdge = Uint("DURCHBLICK_VISION_MAX_LONG_EDGE", 640)

// VisionMaxPixels gibt das Gesamt-Pixel-Budget zurueck
// Konfigurierbar via DURCHBLICK_VISION_MAX_PIXELS
// Default: 1500000
var VisionMaxPixels = Uint64("DURCHBLICK_VISION_MAX_PIXELS", 1_500_000)

// VisionJPEGQuality gibt die JPEG-Qualitaet fuer re-enkodierte Bilder zurueck
// Konfigurierbar via DURCHBLICK_VISION_JPEG_QUALITY
// Default: 80
var VisionJPEGQuality = Uint("DURCHBLICK_VISION_JPEG_QUALITY", 80)

// KeygenAccountID gibt die Account-ID der Lizenz-Autoritaet zurueck
// Konfigurierbar via KEYGEN_ACCOUNT_ID, kein Default
var KeygenAccountID = String("KEYGEN_ACCOUNT_ID")

// KeygenAPIKey gibt den API-Key der Lizenz-Autoritaet zurueck
// Konfigurierbar via KEYGEN_API_KEY, kein Default
var KeygenAPIKey = String("KEYGEN_API_KEY")
