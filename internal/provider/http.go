package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// maxErrorBody caps how much of an error response is read.
const maxErrorBody = 64 * 1024

// postJSON sends body and returns the response when the status is 2xx.
// Any other status is read, classified and returned as *Error.
func postJSON(ctx context.Context, client *http.Client, provider, model, url string, headers map[string]string, body any) (*http.Response, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, transportError(provider, model, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()
		data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, statusError(provider, model, resp.StatusCode, data)
	}
	return resp, nil
}

// decodeBody reads a whole non-streaming JSON response.
func decodeBody(provider, model string, resp *http.Response, v any) error {
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return transportError(provider, model, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return &Error{Kind: KindTransport, Provider: provider, Model: model, Status: resp.StatusCode,
			Message: "unparseable response", Err: err}
	}
	return nil
}
