// MODUL: fetch
// ZWECK: Laedt Roh-Bilder von entfernten URLs mit hartem Limit
// INPUT: Bild-URL, Timeout
// OUTPUT: Roh-Bytes oder Fehler
// NEBENEFFEKTE: HTTP-Roundtrip
// ABHAENGIGKEITEN: net/http (stdlib)
// HINWEISE: Begrenzte Antwortgroesse; ein haengender Peer kann den Request
//           hoechstens bis zum Timeout blockieren

package server

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// maxFetchBytes begrenzt die Groesse heruntergeladener Bilder (20 MiB)
const maxFetchBytes = 20 << 20

// fetchImage laedt die Bytes hinter einer http(s)-URL
func fetchImage(ctx context.Context, rawURL string, timeout time.Duration) ([]byte, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("invalid url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("unsupported url scheme %q", u.Scheme)
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %s", resp.Status)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxFetchBytes+1))
	if err != nil {
		return nil, err
	}
	if len(data) > maxFetchBytes {
		return nil, fmt.Errorf("image larger than %d bytes", maxFetchBytes)
	}

	return data, nil
}
