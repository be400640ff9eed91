// Package http provides the HTTP client faultline uses to execute test
// cases against a target API.
//
// It wraps the standard library's http package with additional features:
//   - Configurable timeouts and redirect handling
//   - Automatic retry with exponential backoff on network errors and 5xx
//   - Rate limit (429) handling honoring the Retry-After header
//   - Response wrapper with JSON body decoding
package http
