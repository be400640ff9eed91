package cases

import (
	"faultline/packages/assertions"
)

// Case is one declarative API test case loaded from YAML.
type Case struct {
	Name           string            `yaml:"name" json:"name"`
	Description    string            `yaml:"description" json:"description,omitempty"`
	Method         string            `yaml:"method" json:"method"`
	URL            string            `yaml:"url" json:"url"`
	Tags           []string          `yaml:"tags" json:"tags,omitempty"`
	Severity       string            `yaml:"severity" json:"severity,omitempty"`
	Headers        map[string]string `yaml:"headers" json:"headers,omitempty"`
	Params         map[string]any    `yaml:"params" json:"params,omitempty"`
	JSON           map[string]any    `yaml:"json" json:"json,omitempty"`
	ExpectedStatus int               `yaml:"expected_status" json:"expected_status"`
	Assertions     []assertions.Rule `yaml:"assertions" json:"assertions,omitempty"`
	DBAssertion    *DBAssertion      `yaml:"db_assertions" json:"db_assertions,omitempty"`
	Variables      map[string]any    `yaml:"variables" json:"variables,omitempty"`
}

// DBAssertion verifies a persisted document after the HTTP exchange.
// MatchBy is an assertion path into the response document; its resolved
// value is matched against MatchField in the collection.
type DBAssertion struct {
	Collection string            `yaml:"collection" json:"collection"`
	MatchBy    string            `yaml:"match_by" json:"match_by"`
	MatchField string            `yaml:"match_field" json:"match_field"`
	Verify     []assertions.Rule `yaml:"verify" json:"verify,omitempty"`
}

// HasTag reports whether the case carries the given tag.
func (c *Case) HasTag(tag string) bool {
	for _, t := range c.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// FilterByTags keeps the cases carrying at least one of the given tags.
// An empty tag list keeps everything.
func FilterByTags(list []Case, tags []string) []Case {
	if len(tags) == 0 {
		return list
	}
	var filtered []Case
	for _, c := range list {
		for _, tag := range tags {
			if c.HasTag(tag) {
				filtered = append(filtered, c)
				break
			}
		}
	}
	return filtered
}
