// MODUL: errors
// ZWECK: Typisierte Lizenz-Fehler mit HTTP-Status und Maschinen-Codes
// INPUT: keine
// OUTPUT: Fehlerwerte und Status/Code-Mapping fuer HTTP-Handler
// NEBENEFFEKTE: keine
// ABHAENGIGKEITEN: net/http (stdlib)
// HINWEISE: Sentinel-Fehler sind mit errors.Is unterscheidbar, damit Aufrufer
//           wiederholbare von fatalen Bedingungen trennen koennen

package license

import (
	"errors"
	"fmt"
	"net/http"
)

// Error ist ein Lizenz-Fehler mit stabilem Code und HTTP-Status
type Error struct {
	Code    string // Maschinen-Code, z.B. "MISSING_LICENSE"
	Status  int    // HTTP-Status fuer die Antwort
	Message string // Menschen-lesbare Beschreibung
}

func (e *Error) Error() string {
	return e.Message
}

// Die Lizenz-Fehlerfaelle. Jeder Fall bricht den Request vor jeglicher
// Bildverarbeitung ab.
var (
	ErrMissingLicense = &Error{
		Code:    "MISSING_LICENSE",
		Status:  http.StatusPaymentRequired,
		Message: "no license key provided",
	}

	ErrInvalidLicense = &Error{
		Code:    "INVALID_LICENSE",
		Status:  http.StatusForbidden,
		Message: "invalid or expired license",
	}

	ErrFeatureNotEnabled = &Error{
		Code:    "FEATURE_DISABLED",
		Status:  http.StatusForbidden,
		Message: "vision feature not enabled for this license",
	}

	ErrUsageLimitExceeded = &Error{
		Code:    "USAGE_LIMIT_EXCEEDED",
		Status:  http.StatusPaymentRequired,
		Message: "monthly usage limit exceeded",
	}
)

// ErrMissingCredentials ist ein Konfigurationsfehler: ohne beide Credentials
// ist keine Remote-Validierung moeglich. Kein Lizenz-Fehler.
var ErrMissingCredentials = errors.New("license authority credentials not configured")

// ValidationError meldet einen fehlgeschlagenen Remote-Validierungsversuch.
// Wird von dieser Schicht nicht wiederholt; Retry-Policy gehoert dem Aufrufer.
type ValidationError struct {
	Detail string
	Err    error
}

func (e *ValidationError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("license validation failed: %s", e.Detail)
	}
	return fmt.Sprintf("license validation failed: %v", e.Err)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// StatusFor mappt einen Lizenz-Fehler auf HTTP-Status und Maschinen-Code
func StatusFor(err error) (int, string) {
	var lerr *Error
	if errors.As(err, &lerr) {
		return lerr.Status, lerr.Code
	}

	var verr *ValidationError
	if errors.As(err, &verr) {
		return http.StatusInternalServerError, "VALIDATION_ERROR"
	}

	return http.StatusInternalServerError, "VALIDATION_ERROR"
}

// IsLicenseError meldet, ob err aus der Lizenzpruefung stammt
func IsLicenseError(err error) bool {
	var lerr *Error
	var verr *ValidationError
	return errors.As(err, &lerr) || errors.As(err, &verr)
}
