// config.go - Haupt-Konfigurationsfunktionen fuer Durchblick
//
// Dieses Modul enthaelt:
// - Host: Gibt Scheme und Host zurueck (DURCHBLICK_HOST)
// - Runner: Gibt die Basis-URL des Modell-Runners zurueck (DURCHBLICK_RUNNER)
// - AllowedOrigins: Gibt erlaubte Origins zurueck (DURCHBLICK_ORIGINS)
// - TrustedHostSuffixes: Gibt erlaubte Host-Suffixe zurueck (DURCHBLICK_TRUSTED_HOSTS)
// - DataDir: Gibt das Daten-Verzeichnis zurueck (DURCHBLICK_DATA)
// - LogLevel: Gibt Log-Level zurueck (DURCHBLICK_DEBUG)
//
// Weitere Konfigurationen sind ausgelagert:
// - config_vision.go: Vision-Pipeline und Lizenz-Variablen
// - config_utils.go: Utility-Funktionen und AsMap/Values
package envconfig

import (
	"fmt"
	"log/slog"
	"net"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Host gibt Scheme und Host des eigenen Servers zurueck
// Konfigurierbar via DURCHBLICK_HOST
// Default: http://127.0.0.1:11435
func Host() *url.URL {
	defaultPort := "11435"

	s := strings.TrimSpace(Var("DURCHBLICK_HOST"))
	scheme, hostport, ok := strings.Cut(s, "://")
	switch {
	case !ok:
		scheme, hostport = "http", s
	case scheme == "http":
		defaultPort = "80"
	case scheme == "https":
		defaultPort = "443"
	}

	hostport, path, _ := strings.Cut(hostport, "/")
	host, port, err := net.SplitHostPort(hostport)
	if err != nil {
		host, port = "127.0.0.1", defaultPort
		if ip := net.ParseIP(strings.Trim(hostport, "[]")); ip != nil {
			host = ip.String()
		} else if hostport != "" {
			host = hostport
		}
	}

	if n, err := strconv.ParseInt(port, 10, 32); err != nil || n > 65535 || n < 0 {
		slog.Warn("invalid port, using default", "port", port, "default", defaultPort)
		port = defaultPort
	}

	return &url.URL{
		Scheme: scheme,
		Host:   net.JoinHostPort(host, port),
		Path:   path,
	}
}

// Runner gibt die Basis-URL des backenden Modell-Runners zurueck
// Konfigurierbar via DURCHBLICK_RUNNER
// Default: http://127.0.0.1:11434 (lokaler Ollama-Daemon)
func Runner() *url.URL {
	s := strings.TrimSpace(Var("DURCHBLICK_RUNNER"))
	if s == "" {
		return &url.URL{Scheme: "http", Host: "127.0.0.1:11434"}
	}

	if !strings.Contains(s, "://") {
		s = "http://" + s
	}

	u, err := url.Parse(s)
	if err != nil {
		slog.Warn("invalid runner url, using default", "value", s, "error", err)
		return &url.URL{Scheme: "http", Host: "127.0.0.1:11434"}
	}

	return u
}

// AllowedOrigins gibt erlaubte Origins zurueck
// Konfigurierbar via DURCHBLICK_ORIGINS (komma-separiert)
// Enthaelt Standard-Origins fuer localhost
func AllowedOrigins() (origins []string) {
	if s := Var("DURCHBLICK_ORIGINS"); s != "" {
		origins = strings.Split(s, ",")
	}

	// Standard-Origins fuer localhost
	for _, origin := range []string{"localhost", "127.0.0.1", "0.0.0.0"} {
		origins = append(origins,
			fmt.Sprintf("http://%s", origin),
			fmt.Sprintf("https://%s", origin),
			fmt.Sprintf("http://%s", net.JoinHostPort(origin, "*")),
			fmt.Sprintf("https://%s", net.JoinHostPort(origin, "*")),
		)
	}

	// App-Protokolle
	origins = append(origins,
		"app://*",
		"file://*",
		"tauri://*",
		"vscode-webview://*",
		"vscode-file://*",
	)

	return origins
}

// TrustedHostSuffixes gibt Host-Suffixe zurueck, die das Host-Header-Gate
// des Servers passieren duerfen
// Konfigurierbar via DURCHBLICK_TRUSTED_HOSTS (komma-separiert)
// Die lokalen Standard-Suffixe sind immer enthalten
func TrustedHostSuffixes() []string {
	suffixes := []string{"localhost", "local", "internal"}

	if s := Var("DURCHBLICK_TRUSTED_HOSTS"); s != "" {
		for _, suffix := range strings.Split(s, ",") {
			if suffix = strings.TrimSpace(suffix); suffix != "" {
				suffixes = append(suffixes, suffix)
			}
		}
	}

	return suffixes
}

// DataDir gibt das Verzeichnis fuer persistente Daten zurueck
// Konfigurierbar via DURCHBLICK_DATA
// Default: $HOME/.durchblick
func DataDir() string {
	if s := Var("DURCHBLICK_DATA"); s != "" {
		return s
	}

	home, err := os.UserHomeDir()
	if err != nil {
		panic(err)
	}

	return filepath.Join(home, ".durchblick")
}

// LogLevel gibt das Log-Level zurueck
// Konfigurierbar via DURCHBLICK_DEBUG
// "1"/"true" -> Debug, "2" -> Trace, sonst Info
func LogLevel() slog.Level {
	level := slog.LevelInfo
	if s := Var("DURCHBLICK_DEBUG"); s != "" {
		if b, _ := strconv.ParseBool(s); b {
			level = slog.LevelDebug
		} else if n, err := strconv.ParseInt(s, 10, 64); err == nil && n > 1 {
			level = slog.LevelDebug - 4
		}
	}

	return level
}
