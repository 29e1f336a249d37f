// config_utils.go - Utility-Funktionen und Export fuer Konfiguration
//
// Dieses Modul enthaelt:
// - Var: Liest eine Environment-Variable (getrimmt, ohne Quotes)
// - Bool/String/Uint/Uint64/Duration: Getter-Fabriken mit Default-Wert
// - EnvVar: Struktur fuer Environment-Variablen-Info
// - AsMap: Gibt alle Konfigurationen als Map zurueck
// - Values: Gibt alle Konfigurationswerte als String-Map zurueck
package envconfig

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// Var liest eine Environment-Variable, getrimmt und ohne umschliessende Quotes
func Var(key string) string {
	return strings.Trim(strings.TrimSpace(os.Getenv(key)), "\"'")
}

// =============================================================================
// Getter-Fabriken
// =============================================================================

// Bool gibt eine Funktion zurueck, die einen Bool liest (Default: false)
func Bool(k string) func() bool {
	return func() bool {
		if s := Var(k); s != "" {
			b, err := strconv.ParseBool(s)
			if err != nil {
				return true
			}
			return b
		}
		return false
	}
}

// String gibt eine Funktion zurueck, die einen String liest
func String(s string) func() string {
	return func() string {
		return Var(s)
	}
}

// Uint gibt eine Funktion zurueck, die einen uint mit Default-Wert liest
func Uint(key string, defaultValue uint) func() uint {
	return func() uint {
		if s := Var(key); s != "" {
			if n, err := strconv.ParseUint(s, 10, 64); err != nil {
				slog.Warn("invalid environment variable, using default", "key", key, "value", s, "default", defaultValue)
			} else {
				return uint(n)
			}
		}
		return defaultValue
	}
}

// Uint64 gibt eine Funktion zurueck, die einen uint64 mit Default-Wert liest
func Uint64(key string, defaultValue uint64) func() uint64 {
	return func() uint64 {
		if s := Var(key); s != "" {
			if n, err := strconv.ParseUint(s, 10, 64); err != nil {
				slog.Warn("invalid environment variable, using default", "key", key, "value", s, "default", defaultValue)
			} else {
				return n
			}
		}
		return defaultValue
	}
}

// Duration liest eine Dauer mit Default-Wert.
// Nackte Zahlen werden als Sekunden interpretiert.
func Duration(key string, defaultValue time.Duration) time.Duration {
	s := Var(key)
	if s == "" {
		return defaultValue
	}

	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.Duration(n) * time.Second
	}

	d, err := time.ParseDuration(s)
	if err != nil {
		slog.Warn("invalid environment variable, using default", "key", key, "value", s, "default", defaultValue)
		return defaultValue
	}

	return d
}

// =============================================================================
// Export-Strukturen und -Funktionen
// =============================================================================

// EnvVar repraesentiert eine Environment-Variable mit Metadaten
type EnvVar struct {
	Name        string
	Value       any
	Description string
}

// AsMap gibt alle Konfigurationen als Map zurueck
// Enthaelt Namen, aktuelle Werte und Beschreibungen
func AsMap() map[string]EnvVar {
	return map[string]EnvVar{
		"DURCHBLICK_DEBUG":                {"DURCHBLICK_DEBUG", LogLevel(), "Show additional debug information (e.g. DURCHBLICK_DEBUG=1)"},
		"DURCHBLICK_HOST":                 {"DURCHBLICK_HOST", Host(), "IP Address for the durchblick server (default 127.0.0.1:11435)"},
		"DURCHBLICK_RUNNER":               {"DURCHBLICK_RUNNER", Runner(), "Base URL of the backing model runner (default 127.0.0.1:11434)"},
		"DURCHBLICK_ORIGINS":              {"DURCHBLICK_ORIGINS", AllowedOrigins(), "A comma separated list of allowed origins"},
		"DURCHBLICK_TRUSTED_HOSTS":        {"DURCHBLICK_TRUSTED_HOSTS", TrustedHostSuffixes(), "A comma separated list of additional trusted host suffixes"},
		"DURCHBLICK_DATA":                 {"DURCHBLICK_DATA", DataDir(), "The path to the data directory"},
		"DURCHBLICK_VISION_MODEL":         {"DURCHBLICK_VISION_MODEL", VisionModel(), "Default model for vision analysis"},
		"DURCHBLICK_VISION_DEV_MODE":      {"DURCHBLICK_VISION_DEV_MODE", VisionDevMode(), "Skip license check and metering (development only)"},
		"DURCHBLICK_VISION_TIMEOUT":       {"DURCHBLICK_VISION_TIMEOUT", VisionTimeout(), "Wall clock bound for a single vision inference (default 10s)"},
		"DURCHBLICK_FETCH_TIMEOUT":        {"DURCHBLICK_FETCH_TIMEOUT", FetchTimeout(), "Bound for downloading images from URLs (default 30s)"},
		"DURCHBLICK_VISION_MAX_LONG_EDGE": {"DURCHBLICK_VISION_MAX_LONG_EDGE", VisionMaxLongEdge(), "Maximum long edge of preprocessed images in pixels (default 640)"},
		"DURCHBLICK_VISION_MAX_PIXELS":    {"DURCHBLICK_VISION_MAX_PIXELS", VisionMaxPixels(), "Total pixel budget for preprocessed images (default 1500000)"},
		"DURCHBLICK_VISION_JPEG_QUALITY":  {"DURCHBLICK_VISION_JPEG_QUALITY", VisionJPEGQuality(), "JPEG quality for re-encoded images (default 80)"},
		"KEYGEN_ACCOUNT_ID":               {"KEYGEN_ACCOUNT_ID", KeygenAccountID() != "", "Account ID for the license authority"},
		"KEYGEN_API_KEY":                  {"KEYGEN_API_KEY", KeygenAPIKey() != "", "API key for the license authority"},
	}
}

// Values gibt alle Konfigurationswerte als String-Map zurueck
func Values() map[string]string {
	vals := make(map[string]string)
	for k, v := range AsMap() {
		vals[k] = fmt.Sprintf("%v", v.Value)
	}
	return vals
}
