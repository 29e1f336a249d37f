// MODUL: manager
// ZWECK: Lizenz-Gate mit Cache, Grace-Period und Usage-Metering
// INPUT: Lizenzschluessel pro Request, Urteile der Remote-Autoritaet
// OUTPUT: Zugriffsentscheidung, aktualisierte Metering-Zaehler
// NEBENEFFEKTE: Liest und schreibt zwei JSON-Dateien im Datenverzeichnis
// ABHAENGIGKEITEN: envconfig (intern), keygen.go (intern), golang.org/x/sync/singleflight
// HINWEISE: Cache und Zaehler sind prozessweite Singletons hinter RWMutex;
//           Disk-Schreibfehler propagieren, der Speicherzustand bleibt
//           trotzdem massgeblich (Verfuegbarkeit vor Durabilitaet)

package license

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/durchblick-ai/durchblick/envconfig"
)

const (
	cacheFileName = "license_cache.json"
	usageFileName = "usage_stats.json"

	// gracePeriod toleriert Ausfaelle der Autoritaet nach Ablauf des Urteils
	gracePeriod = 24 * time.Hour

	dailyWindow   = 24 * time.Hour
	monthlyWindow = 30 * 24 * time.Hour
)

// CachedLicense ist das zwischengespeicherte Urteil fuer genau einen Schluessel.
// Wird bei jeder Validierung ausserhalb des Cache-Fensters komplett ersetzt.
type CachedLicense struct {
	Key        string     `json:"key"`
	Validation Validation `json:"validation"`
	CachedAt   time.Time  `json:"cached_at"`
	ExpiresAt  *time.Time `json:"expires_at,omitempty"`
}

// UsageStats sind die Metering-Zaehler, einziger durabler Zustand des Meterings.
// Feste Fenster, kein gleitender Durchschnitt.
type UsageStats struct {
	RequestsToday     uint32    `json:"requests_today"`
	RequestsThisMonth uint32    `json:"requests_this_month"`
	LastReset         time.Time `json:"last_reset"`
}

// validateFunc ist der Remote-Aufruf; injizierbar fuer Tests
type validateFunc func(ctx context.Context, key string) (Validation, error)

// Manager ist das Lizenz-Gate. Ein Manager pro Prozess, geteilt von allen
// Requests; Tests injizieren frische Instanzen ueber NewManagerAt.
type Manager struct {
	cache locked[*CachedLicense]
	usage locked[UsageStats]

	cachePath string
	usagePath string

	validate validateFunc
	now      func() time.Time
	group    singleflight.Group
}

// NewManager erstellt einen Manager im Standard-Datenverzeichnis
func NewManager() (*Manager, error) {
	return NewManagerAt(filepath.Join(envconfig.DataDir(), "vision"))
}

// NewManagerAt erstellt einen Manager mit explizitem Verzeichnis
func NewManagerAt(dir string) (*Manager, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create license dir: %w", err)
	}

	client := newKeygenClient()
	m := &Manager{
		cachePath: filepath.Join(dir, cacheFileName),
		usagePath: filepath.Join(dir, usageFileName),
		validate:  client.Validate,
		now:       time.Now,
	}
	m.usage.value = UsageStats{LastReset: m.now()}

	return m, nil
}

// LoadCache laedt Urteil und Zaehler von Disk. Expliziter Startup-Schritt,
// fehlende Dateien sind kein Fehler.
func (m *Manager) LoadCache() error {
	if data, err := os.ReadFile(m.cachePath); err == nil {
		var cached CachedLicense
		if err := json.Unmarshal(data, &cached); err != nil {
			return fmt.Errorf("corrupt license cache: %w", err)
		}
		m.cache.set(&cached)
	} else if !os.IsNotExist(err) {
		return err
	}

	if data, err := os.ReadFile(m.usagePath); err == nil {
		var usage UsageStats
		if err := json.Unmarshal(data, &usage); err != nil {
			return fmt.Errorf("corrupt usage stats: %w", err)
		}
		m.usage.set(usage)
	} else if !os.IsNotExist(err) {
		return err
	}

	return nil
}

// CheckAccess prueft, ob der Schluessel Vision-Zugriff erlaubt.
// Reihenfolge: Schluessel vorhanden -> Urteil gueltig -> vision-Entitlement
// -> Monats-Limit. Jeder Fehler bricht den Request vor der Bildarbeit ab.
func (m *Manager) CheckAccess(ctx context.Context, licenseKey string) error {
	if licenseKey == "" {
		return ErrMissingLicense
	}

	validation, err := m.ValidateLicense(ctx, licenseKey)
	if err != nil {
		if IsLicenseError(err) {
			return err
		}
		return &ValidationError{Detail: err.Error(), Err: err}
	}

	if !validation.Valid {
		return ErrInvalidLicense
	}

	// Entitlement fehlt oder ist explizit false -> Feature gesperrt
	enabled, ok := validation.Entitlements["vision"].(bool)
	if !ok || !enabled {
		return ErrFeatureNotEnabled
	}

	if monthlyCap, ok := entitlementNumber(validation.Entitlements["monthly_cap"]); ok {
		usage := m.usage.get()
		if float64(usage.RequestsThisMonth) >= monthlyCap {
			return ErrUsageLimitExceeded
		}
	}

	return nil
}

// ValidateLicense liefert ein frisches oder gecachtes Urteil fuer den Schluessel.
// Konkurrierende Requests fuer denselben Schluessel werden ueber singleflight
// auf einen Remote-Aufruf kollabiert.
func (m *Manager) ValidateLicense(ctx context.Context, licenseKey string) (Validation, error) {
	if v, ok := m.cachedValidation(licenseKey); ok {
		return v, nil
	}

	result, err, _ := m.group.Do(licenseKey, func() (any, error) {
		// Zweite Pruefung: ein frueherer Flight kann den Cache inzwischen
		// gefuellt haben.
		if v, ok := m.cachedValidation(licenseKey); ok {
			return v, nil
		}

		validation, err := m.validate(ctx, licenseKey)
		if err != nil {
			return Validation{}, err
		}

		cached := &CachedLicense{
			Key:        licenseKey,
			Validation: validation,
			CachedAt:   m.now(),
		}
		if validation.ExpiresAt != "" {
			if t, err := time.Parse(time.RFC3339, validation.ExpiresAt); err == nil {
				utc := t.UTC()
				cached.ExpiresAt = &utc
			}
		}

		m.cache.set(cached)

		if err := writeJSONFile(m.cachePath, cached); err != nil {
			// Speicherzustand bleibt massgeblich, der Fehler propagiert
			return Validation{}, fmt.Errorf("persist license cache: %w", err)
		}

		return validation, nil
	})
	if err != nil {
		return Validation{}, err
	}

	return result.(Validation), nil
}

// cachedValidation liefert das Urteil, wenn es noch frisch ist.
// Frisch: explizites Expiry plus Grace-Period nicht ueberschritten, oder -
// ohne Expiry - juenger als die Grace-Period.
func (m *Manager) cachedValidation(licenseKey string) (Validation, bool) {
	cached := m.cache.get()
	if cached == nil || cached.Key != licenseKey {
		return Validation{}, false
	}

	now := m.now()
	if cached.ExpiresAt != nil {
		if now.Before(cached.ExpiresAt.Add(gracePeriod)) {
			return cached.Validation, true
		}
	} else if now.Sub(cached.CachedAt) < gracePeriod {
		return cached.Validation, true
	}

	return Validation{}, false
}

// RecordUsage erhoeht beide Zaehler um eins und persistiert synchron.
// Vor dem Inkrement werden abgelaufene Fenster zurueckgesetzt. Feste Fenster:
// Bursts an Fenstergrenzen sind akzeptiertes Verhalten.
func (m *Manager) RecordUsage() error {
	now := m.now()

	usage := m.usage.update(func(u UsageStats) UsageStats {
		if now.Sub(u.LastReset) >= dailyWindow {
			u.RequestsToday = 0
		}
		if now.Sub(u.LastReset) >= monthlyWindow {
			u.RequestsThisMonth = 0
			u.LastReset = now
		}

		u.RequestsToday++
		u.RequestsThisMonth++
		return u
	})

	if err := writeJSONFile(m.usagePath, usage); err != nil {
		return fmt.Errorf("persist usage stats: %w", err)
	}

	return nil
}

// Usage liefert einen Snapshot der Metering-Zaehler
func (m *Manager) Usage() UsageStats {
	return m.usage.get()
}

// entitlementNumber liest ein numerisches Entitlement.
// JSON-Zahlen kommen als float64 an, Tests setzen gern int.
func entitlementNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	}
	return 0, false
}

// writeJSONFile ueberschreibt die Datei komplett; kein Append-Log,
// keine Teil-Schreibvorgaenge.
func writeJSONFile(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		slog.Warn("license state write failed", "path", path, "error", err)
		return err
	}

	return nil
}
