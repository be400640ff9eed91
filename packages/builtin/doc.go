// Package builtin provides the template functions available inside
// ${...} placeholders in faultline test-case files.
//
// Commonly used functions:
//   - uuid(): Generate a random UUID v4
//   - timestamp(): Current Unix timestamp
//   - now(): Current time in RFC 3339
//   - date(format): Current date in a Go time layout
//   - random(min, max): Random integer in range
//   - randomString(length): Random alphanumeric string
//   - randomEmail(): Random plausible email address
//   - base64(value): Base64 encode a string
//
// Functions are invoked using the ${functionName(args)} syntax.
package builtin
