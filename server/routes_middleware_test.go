// MODUL: routes_middleware_test
// ZWECK: Tests fuer das Host-Header-Gate
// INPUT: Synthetische Requests mit praeparierten Host-Headern
// OUTPUT: Testresultate
// NEBENEFFEKTE: keine
// ABHAENGIGKEITEN: testing, net/http/httptest, gin
// HINWEISE: Das Gate greift nur bei Loopback-Bindung; die Suffix-Liste
//           kommt aus der Umgebung und wird beim Routerbau eingefroren

package server

import (
	"net"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

// middlewareRouter baut einen minimalen Router mit dem Host-Gate
func middlewareRouter(t *testing.T, addr net.Addr) *gin.Engine {
	t.Helper()

	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(trustedHostsMiddleware(addr))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.OPTIONS("/", func(c *gin.Context) { c.Status(http.StatusOK) })
	return r
}

// requestWithHost schickt einen Request mit gesetztem Host-Header
func requestWithHost(t *testing.T, r *gin.Engine, method, host string) int {
	t.Helper()

	req := httptest.NewRequest(method, "/", nil)
	req.Host = host

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w.Code
}

func TestTrustedHost(t *testing.T) {
	suffixes := []string{"localhost", "local", "internal"}

	tests := []struct {
		host    string
		allowed bool
	}{
		{"", true},
		{"localhost", true},
		{"LOCALHOST", true},
		{"app.localhost", true},
		{"drucker.local", true},
		{"dashboard.internal", true},
		{"dashboard.INTERNAL", true},
		{"internal", false},
		{"evil.example.com", false},
		{"localhost.example.com", false},
	}

	for _, tt := range tests {
		if got := trustedHost(tt.host, suffixes); got != tt.allowed {
			t.Errorf("trustedHost(%q) = %v, erwartet %v", tt.host, got, tt.allowed)
		}
	}
}

func TestTrustedHostConfiguredSuffix(t *testing.T) {
	if trustedHost("api.firma.example", []string{"localhost"}) {
		t.Error("api.firma.example darf ohne konfiguriertes Suffix nicht passieren")
	}
	if !trustedHost("api.firma.example", []string{"localhost", "firma.example"}) {
		t.Error("api.firma.example muss mit konfiguriertem Suffix passieren")
	}
}

func TestTrustedHostsMiddlewareLoopbackBind(t *testing.T) {
	addr := &net.TCPAddr{IP: net.IPv4(127, 0, 0, 1), Port: 11435}
	r := middlewareRouter(t, addr)

	tests := []struct {
		host   string
		status int
	}{
		{"localhost:11435", http.StatusOK},
		{"127.0.0.1:11435", http.StatusOK},
		{"app.internal:8080", http.StatusOK},
		{"evil.example.com", http.StatusForbidden},
		{"evil.example.com:11435", http.StatusForbidden},
	}

	for _, tt := range tests {
		if got := requestWithHost(t, r, http.MethodGet, tt.host); got != tt.status {
			t.Errorf("Host %q: Status = %d, erwartet %d", tt.host, got, tt.status)
		}
	}

	// Preflight fuer erlaubte Namens-Hosts endet direkt mit 204
	if got := requestWithHost(t, r, http.MethodOptions, "app.internal"); got != http.StatusNoContent {
		t.Errorf("OPTIONS app.internal: Status = %d, erwartet 204", got)
	}
}

func TestTrustedHostsMiddlewareEnvSuffix(t *testing.T) {
	t.Setenv("DURCHBLICK_TRUSTED_HOSTS", "firma.example")

	addr := &net.TCPAddr{IP: net.IPv4(127, 0, 0, 1), Port: 11435}
	r := middlewareRouter(t, addr)

	if got := requestWithHost(t, r, http.MethodGet, "api.firma.example"); got != http.StatusOK {
		t.Errorf("api.firma.example: Status = %d, erwartet 200", got)
	}
	if got := requestWithHost(t, r, http.MethodGet, "api.andere.example"); got != http.StatusForbidden {
		t.Errorf("api.andere.example: Status = %d, erwartet 403", got)
	}
}

func TestTrustedHostsMiddlewareOpenBind(t *testing.T) {
	// Bei bewusster Nicht-Loopback-Bindung filtert das Gate nicht
	addr := &net.TCPAddr{IP: net.IPv4(192, 168, 1, 5), Port: 11435}
	r := middlewareRouter(t, addr)

	if got := requestWithHost(t, r, http.MethodGet, "evil.example.com"); got != http.StatusOK {
		t.Errorf("Status = %d, erwartet 200 ohne Loopback-Bindung", got)
	}

	if got := requestWithHost(t, middlewareRouter(t, nil), http.MethodGet, "evil.example.com"); got != http.StatusOK {
		t.Errorf("Status = %d, erwartet 200 ohne bekannte Bind-Adresse", got)
	}
}
