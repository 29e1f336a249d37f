// MODUL: routes_middleware
// ZWECK: Host-Header-Gate fuer den HTTP-Router
// INPUT: Bind-Adresse des Servers, Host-Header der Anfrage
// OUTPUT: gin.HandlerFunc, die fremde Hosts mit 403 abweist
// NEBENEFFEKTE: keine
// ABHAENGIGKEITEN: envconfig (intern), gin
// HINWEISE: Greift nur bei Loopback-Bindung; wer den Server explizit auf
//           eine andere Adresse bindet, bekommt keine Host-Filterung.
//           Die erlaubten Suffixe kommen aus envconfig.TrustedHostSuffixes.

package server

import (
	"net"
	"net/http"
	"net/netip"
	"os"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/durchblick-ai/durchblick/envconfig"
)

// localInterfaceAddr meldet, ob die IP auf einem Interface dieser Maschine liegt
func localInterfaceAddr(ip netip.Addr) bool {
	ifaces, err := net.Interfaces()
	if err != nil {
		return false
	}

	for _, iface := range ifaces {
		addrs, err := iface.Addrs()
		if err != nil {
			continue
		}

		for _, a := range addrs {
			parsed, _, err := net.ParseCIDR(a.String())
			if err != nil {
				continue
			}
			if parsed.String() == ip.String() {
				return true
			}
		}
	}

	return false
}

// trustedHost prueft einen Hostnamen gegen den Maschinennamen und die
// konfigurierten Suffixe
func trustedHost(host string, suffixes []string) bool {
	host = strings.ToLower(host)

	if host == "" || host == "localhost" {
		return true
	}

	if hostname, err := os.Hostname(); err == nil && host == strings.ToLower(hostname) {
		return true
	}

	for _, suffix := range suffixes {
		if strings.HasSuffix(host, "."+strings.ToLower(suffix)) {
			return true
		}
	}

	return false
}

// trustedHostsMiddleware weist Anfragen mit fremdem Host-Header ab, solange
// der Server auf Loopback gebunden ist
func trustedHostsMiddleware(addr net.Addr) gin.HandlerFunc {
	suffixes := envconfig.TrustedHostSuffixes()

	return func(c *gin.Context) {
		if addr == nil {
			c.Next()
			return
		}

		if bound, err := netip.ParseAddrPort(addr.String()); err == nil && !bound.Addr().IsLoopback() {
			c.Next()
			return
		}

		host, _, err := net.SplitHostPort(c.Request.Host)
		if err != nil {
			host = c.Request.Host
		}

		if ip, err := netip.ParseAddr(host); err == nil {
			if ip.IsLoopback() || ip.IsPrivate() || ip.IsUnspecified() || localInterfaceAddr(ip) {
				c.Next()
				return
			}
		}

		if !trustedHost(host, suffixes) {
			c.AbortWithStatus(http.StatusForbidden)
			return
		}

		// Preflight fuer erlaubte Namens-Hosts direkt beantworten
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
