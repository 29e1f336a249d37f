// Package api - HTTP-Client fuer den Durchblick-Server und den Modell-Runner.
// Dieses Modul enthaelt die Client-Struktur und Basis-Methoden.
//
// Package api implements the client-side API for code wishing to interact
// with the durchblick service. The methods of the [Client] type correspond
// to the REST API of the server.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"runtime"

	"github.com/durchblick-ai/durchblick/envconfig"
	"github.com/durchblick-ai/durchblick/version"
)

// Client encapsulates client state for interacting with a durchblick or
// runner service. Use [ClientFromEnvironment] to create new Clients.
type Client struct {
	base *url.URL
	http *http.Client
}

func checkError(resp *http.Response, body []byte) error {
	if resp.StatusCode < http.StatusBadRequest {
		return nil
	}

	apiError := StatusError{StatusCode: resp.StatusCode, Status: resp.Status}

	if err := json.Unmarshal(body, &apiError); err != nil {
		// Use the full body as the message if we fail to decode a response.
		apiError.ErrorMessage = string(body)
	}

	return apiError
}

// ClientFromEnvironment creates a new [Client] using configuration from the
// environment variable DURCHBLICK_HOST, which points to the network host and
// port on which the durchblick service is listening.
func ClientFromEnvironment() (*Client, error) {
	return &Client{
		base: envconfig.Host(),
		http: http.DefaultClient,
	}, nil
}

// NewClient erstellt einen Client fuer eine beliebige Basis-URL
func NewClient(base *url.URL, http *http.Client) *Client {
	return &Client{
		base: base,
		http: http,
	}
}

func (c *Client) do(ctx context.Context, method, path string, reqData, respData any) error {
	var reqBody io.Reader

	switch reqData := reqData.(type) {
	case io.Reader:
		reqBody = reqData
	case nil:
		// noop
	default:
		data, err := json.Marshal(reqData)
		if err != nil {
			return err
		}

		reqBody = bytes.NewReader(data)
	}

	requestURL := c.base.JoinPath(path)

	request, err := http.NewRequestWithContext(ctx, method, requestURL.String(), reqBody)
	if err != nil {
		return err
	}

	request.Header.Set("Content-Type", "application/json")
	request.Header.Set("Accept", "application/json")
	request.Header.Set("User-Agent", fmt.Sprintf("durchblick/%s (%s %s) Go/%s", version.Version, runtime.GOARCH, runtime.GOOS, runtime.Version()))

	response, err := c.http.Do(request)
	if err != nil {
		return err
	}
	defer response.Body.Close()

	respBody, err := io.ReadAll(response.Body)
	if err != nil {
		return err
	}

	if err := checkError(response, respBody); err != nil {
		return err
	}

	if respData != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, respData); err != nil {
			return err
		}
	}

	return nil
}

// Vision fuehrt eine Bild-Analyse gegen einen laufenden Durchblick-Server aus
func (c *Client) Vision(ctx context.Context, req *VisionRequest) (*VisionResponse, error) {
	var resp VisionResponse
	if err := c.do(ctx, http.MethodPost, "/api/vision", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// VisionUsage liest den Metering-Snapshot eines laufenden Servers
func (c *Client) VisionUsage(ctx context.Context) (*VisionUsageResponse, error) {
	var resp VisionUsageResponse
	if err := c.do(ctx, http.MethodGet, "/api/vision/usage", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Generate fuehrt einen nicht-streamenden Generate-Aufruf gegen den
// Modell-Runner aus. Streaming wird von dieser Pipeline nicht benoetigt.
func (c *Client) Generate(ctx context.Context, req *GenerateRequest) (*GenerateResponse, error) {
	var resp GenerateResponse
	if err := c.do(ctx, http.MethodPost, "/api/generate", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Heartbeat checks if the server is running
func (c *Client) Heartbeat(ctx context.Context) error {
	if err := c.do(ctx, http.MethodHead, "/", nil, nil); err != nil {
		return err
	}
	return nil
}

// Version liest die Server-Version
func (c *Client) Version(ctx context.Context) (string, error) {
	var resp struct {
		Version string `json:"version"`
	}

	if err := c.do(ctx, http.MethodGet, "/api/version", nil, &resp); err != nil {
		return "", err
	}

	return resp.Version, nil
}
