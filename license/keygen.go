// MODUL: keygen
// ZWECK: Client fuer die Remote-Lizenz-Autoritaet (Keygen validate-key)
// INPUT: Lizenzschluessel, Credentials aus envconfig
// OUTPUT: Validation mit Entitlements aus dem Relationship-Payload
// NEBENEFFEKTE: Netzwerk-Roundtrip zur Autoritaet
// ABHAENGIGKEITEN: envconfig (intern), net/http, encoding/json
// HINWEISE: JSON:API Content-Type, Bearer-Auth. Gueltige Schluessel ohne
//           explizites vision-Entitlement gelten als vision-faehig; fehlende
//           Daten sind keine explizite Ablehnung.

package license

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/durchblick-ai/durchblick/envconfig"
)

const (
	keygenBaseURL     = "https://api.keygen.sh/v1"
	jsonAPIMediaType  = "application/vnd.api+json"
	defaultMonthlyCap = 1000
)

// Validation ist das Urteil der Lizenz-Autoritaet
type Validation struct {
	Valid        bool           `json:"valid"`
	Entitlements map[string]any `json:"entitlements"`
	ExpiresAt    string         `json:"expires_at,omitempty"` // ISO-8601, leer wenn nicht gemeldet
	Meta         map[string]any `json:"meta"`
}

// keygenClient spricht die validate-key Action eines Keygen-Accounts an
type keygenClient struct {
	baseURL   string
	accountID string
	apiKey    string
	http      *http.Client
}

// newKeygenClient liest die Credentials aus der Umgebung.
// Der HTTP-Client ist begrenzt, damit eine haengende Autoritaet keinen
// Request unbegrenzt blockiert.
func newKeygenClient() *keygenClient {
	return &keygenClient{
		baseURL:   keygenBaseURL,
		accountID: envconfig.KeygenAccountID(),
		apiKey:    envconfig.KeygenAPIKey(),
		http:      &http.Client{Timeout: 30 * time.Second},
	}
}

// validateResponse ist der relevante Ausschnitt der Autoritaets-Antwort
type validateResponse struct {
	Meta struct {
		Valid  bool   `json:"valid"`
		Code   string `json:"code"`
		Detail string `json:"detail"`
	} `json:"meta"`
	Data json.RawMessage `json:"data"`
}

// Validate prueft einen Schluessel gegen die Autoritaet.
// Fehlende Credentials sind ein harter Konfigurationsfehler.
func (c *keygenClient) Validate(ctx context.Context, licenseKey string) (Validation, error) {
	if c.accountID == "" || c.apiKey == "" {
		return Validation{}, ErrMissingCredentials
	}

	body, err := json.Marshal(map[string]any{
		"meta": map[string]string{"key": licenseKey},
	})
	if err != nil {
		return Validation{}, err
	}

	url := fmt.Sprintf("%s/accounts/%s/licenses/actions/validate-key", c.baseURL, c.accountID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return Validation{}, err
	}

	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", jsonAPIMediaType)
	req.Header.Set("Accept", jsonAPIMediaType)

	resp, err := c.http.Do(req)
	if err != nil {
		return Validation{}, fmt.Errorf("license authority unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return Validation{}, fmt.Errorf("license authority error: %s", resp.Status)
	}

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return Validation{}, err
	}

	var vr validateResponse
	if err := json.Unmarshal(payload, &vr); err != nil {
		return Validation{}, fmt.Errorf("invalid authority response: %w", err)
	}

	validation := Validation{
		Valid:        vr.Meta.Valid,
		Entitlements: entitlementsFromData(vr.Data),
		ExpiresAt:    expiryFromData(vr.Data),
		Meta:         map[string]any{"code": vr.Meta.Code},
	}
	if vr.Meta.Detail != "" {
		validation.Meta["detail"] = vr.Meta.Detail
	}

	// Gueltige Schluessel sind per Default vision-faehig; die Autoritaet
	// meldet in diesem Call keine granularen Werte.
	if validation.Valid {
		if _, ok := validation.Entitlements["vision"]; !ok {
			validation.Entitlements["vision"] = true
		}
	}
	if _, ok := validation.Entitlements["monthly_cap"]; !ok {
		validation.Entitlements["monthly_cap"] = float64(defaultMonthlyCap)
	}

	return validation, nil
}

// expiryFromData liest das Ablaufdatum aus den Lizenz-Attributen.
// Leerer String wenn die Autoritaet keines meldet.
func expiryFromData(data json.RawMessage) string {
	if len(data) == 0 {
		return ""
	}

	var parsed struct {
		Attributes struct {
			Expiry string `json:"expiry"`
		} `json:"attributes"`
	}
	if err := json.Unmarshal(data, &parsed); err != nil {
		return ""
	}

	return parsed.Attributes.Expiry
}

// entitlementsFromData extrahiert Entitlement-Codes aus dem verschachtelten
// Relationship-Payload. Ein Eintrag pro Listen-Element, Wert fest true.
func entitlementsFromData(data json.RawMessage) map[string]any {
	entitlements := map[string]any{}
	if len(data) == 0 {
		return entitlements
	}

	var parsed struct {
		Relationships struct {
			Entitlements struct {
				Data []struct {
					Attributes struct {
						Code string `json:"code"`
					} `json:"attributes"`
				} `json:"data"`
			} `json:"entitlements"`
		} `json:"relationships"`
	}
	if err := json.Unmarshal(data, &parsed); err != nil {
		return entitlements
	}

	for _, ent := range parsed.Relationships.Entitlements.Data {
		if ent.Attributes.Code != "" {
			entitlements[ent.Attributes.Code] = true
		}
	}

	return entitlements
}
