// Package schema models the field constraints a mutation run is driven
// by. A Schema is built once, from a JSON-Schema fragment or from an
// OpenAPI operation's request body, and is read-only afterwards.
package schema
