// types.go - Core API Types (Basis-Typen, Errors, Bilddaten)
// Enthaelt: StatusError, ImageData, GenerateRequest, GenerateResponse
package api

import (
	"fmt"
)

// StatusError is an error with an HTTP status code and message.
type StatusError struct {
	StatusCode   int
	Status       string
	ErrorMessage string `json:"error"`
}

func (e StatusError) Error() string {
	switch {
	case e.Status != "" && e.ErrorMessage != "":
		return fmt.Sprintf("%s: %s", e.Status, e.ErrorMessage)
	case e.Status != "":
		return e.Status
	case e.ErrorMessage != "":
		return e.ErrorMessage
	default:
		// this should not happen
		return "something went wrong, please see the durchblick server logs for details"
	}
}

// ImageData sind rohe Bild-Bytes; JSON-Marshalling nutzt Base64
type ImageData []byte

// GenerateRequest beschreibt einen nicht-streamenden Generate-Aufruf
// an den backenden Modell-Runner.
type GenerateRequest struct {
	Model   string         `json:"model"`
	Prompt  string         `json:"prompt"`
	Images  []ImageData    `json:"images,omitempty"`
	Stream  *bool          `json:"stream,omitempty"`
	Options map[string]any `json:"options,omitempty"`
}

// GenerateResponse ist die Antwort des Runners auf GenerateRequest
type GenerateResponse struct {
	Model      string `json:"model"`
	Response   string `json:"response"`
	Done       bool   `json:"done"`
	DoneReason string `json:"done_reason,omitempty"`
}
