// MODUL: keygen_test
// ZWECK: Tests fuer den Client der Lizenz-Autoritaet
// INPUT: Nachgebaute JSON:API-Antworten via httptest
// OUTPUT: Testresultate
// NEBENEFFEKTE: Lokaler HTTP-Testserver
// ABHAENGIGKEITEN: testing, net/http/httptest, github.com/stretchr/testify
// HINWEISE: Prueft Request-Form (Header, Pfad, Body) und Antwort-Extraktion

package license

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestKeygenClient baut einen Client gegen einen httptest-Server
func newTestKeygenClient(t *testing.T, handler http.HandlerFunc) *keygenClient {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return &keygenClient{
		baseURL:   srv.URL,
		accountID: "acct-1",
		apiKey:    "api-key-1",
		http:      &http.Client{Timeout: 5 * time.Second},
	}
}

func TestValidateRequestShape(t *testing.T) {
	client := newTestKeygenClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/accounts/acct-1/licenses/actions/validate-key", r.URL.Path)
		assert.Equal(t, "Bearer api-key-1", r.Header.Get("Authorization"))
		assert.Equal(t, "application/vnd.api+json", r.Header.Get("Content-Type"))
		assert.Equal(t, "application/vnd.api+json", r.Header.Get("Accept"))

		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)

		var req map[string]map[string]string
		require.NoError(t, json.Unmarshal(body, &req))
		assert.Equal(t, "key-123", req["meta"]["key"])

		w.Write([]byte(`{"meta": {"valid": true, "code": "VALID"}}`))
	})

	v, err := client.Validate(context.Background(), "key-123")
	require.NoError(t, err)
	assert.True(t, v.Valid)
	assert.Equal(t, "VALID", v.Meta["code"])
}

func TestValidateEntitlementExtraction(t *testing.T) {
	client := newTestKeygenClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{
			"meta": {"valid": true, "code": "VALID"},
			"data": {
				"attributes": {"expiry": "2027-01-01T00:00:00Z"},
				"relationships": {
					"entitlements": {
						"data": [
							{"attributes": {"code": "vision"}},
							{"attributes": {"code": "priority_support"}}
						]
					}
				}
			}
		}`))
	})

	v, err := client.Validate(context.Background(), "key-123")
	require.NoError(t, err)

	assert.Equal(t, true, v.Entitlements["vision"])
	assert.Equal(t, true, v.Entitlements["priority_support"])
	assert.Equal(t, "2027-01-01T00:00:00Z", v.ExpiresAt)
}

func TestValidateDefaults(t *testing.T) {
	// Gueltiger Schluessel ohne gemeldete Entitlements: vision und
	// monthly_cap werden mit Defaults aufgefuellt
	client := newTestKeygenClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"meta": {"valid": true, "code": "VALID"}}`))
	})

	v, err := client.Validate(context.Background(), "key-123")
	require.NoError(t, err)

	assert.Equal(t, true, v.Entitlements["vision"])
	assert.Equal(t, float64(1000), v.Entitlements["monthly_cap"])
}

func TestValidateInvalidKeyNoVisionDefault(t *testing.T) {
	client := newTestKeygenClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"meta": {"valid": false, "code": "NOT_FOUND", "detail": "license not found"}}`))
	})

	v, err := client.Validate(context.Background(), "key-123")
	require.NoError(t, err)

	assert.False(t, v.Valid)
	_, hasVision := v.Entitlements["vision"]
	assert.False(t, hasVision, "ungueltige Schluessel duerfen kein vision-Default bekommen")
	assert.Equal(t, "license not found", v.Meta["detail"])
}

func TestValidateMissingCredentials(t *testing.T) {
	client := &keygenClient{http: &http.Client{Timeout: time.Second}}

	_, err := client.Validate(context.Background(), "key-123")
	assert.ErrorIs(t, err, ErrMissingCredentials)
}

func TestValidateAuthorityHTTPError(t *testing.T) {
	client := newTestKeygenClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	_, err := client.Validate(context.Background(), "key-123")
	assert.Error(t, err)
}

func TestValidateMalformedResponse(t *testing.T) {
	client := newTestKeygenClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not json"))
	})

	_, err := client.Validate(context.Background(), "key-123")
	assert.Error(t, err)
}
