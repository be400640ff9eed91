package cases

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Template renders a starter YAML case file for an endpoint, ready for
// hand editing.
func Template(name, method, url, description string, tags []string) string {
	if len(tags) == 0 {
		tags = []string{"P1", "regression"}
	}
	quoted := make([]string, len(tags))
	for i, tag := range tags {
		quoted[i] = fmt.Sprintf("%q", tag)
	}

	return fmt.Sprintf(`name: %q
description: %q
method: %s
url: %q
tags: [%s]
severity: normal

headers:
  Content-Type: "application/json"

params: {}

json: {}

expected_status: 200

assertions:
  - type: equal
    field: success
    expected: true
    description: "API should return success"

  - type: is_not_null
    field: results
    description: "Results should not be null"

# db_assertions:
#   collection: users
#   match_by: results.user_id
#   match_field: user_id
#   verify:
#     - field: email
#       expected: "test@example.com"
`, name, description, strings.ToUpper(method), url, strings.Join(quoted, ", "))
}

// WriteTemplate renders a starter case file to disk, creating parent
// directories as needed.
func WriteTemplate(path, name, method, url, description string, tags []string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create template directory: %w", err)
	}
	content := Template(name, method, url, description, tags)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("failed to write template: %w", err)
	}
	return nil
}
