package http

import (
	"encoding/json"
	"fmt"
)

// Request describes one HTTP request to execute.
type Request struct {
	Method  string
	URL     string
	Headers map[string]string
	Body    string
}

// NewJSONRequest builds a request carrying a JSON-encoded body with the
// Content-Type header already set.
func NewJSONRequest(method, url string, payload any) (*Request, error) {
	req := &Request{
		Method:  method,
		URL:     url,
		Headers: map[string]string{"Content-Type": "application/json"},
	}
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", err)
		}
		req.Body = string(data)
	}
	return req, nil
}
