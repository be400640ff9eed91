package cases

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"faultline/packages/assertions"
	"faultline/packages/builtin"
)

// Loader reads test cases from YAML files in a directory. A file holds
// either a single case or a `test_cases:` list. Malformed files and
// cases are skipped with a warning rather than aborting the load.
type Loader struct {
	dir      string
	globals  map[string]any
	builtins *builtin.Registry
	warnings io.Writer
}

type LoaderOption func(*Loader)

// WithGlobals seeds the loader's interpolation variables.
func WithGlobals(vars map[string]any) LoaderOption {
	return func(l *Loader) {
		for k, v := range vars {
			l.globals[k] = v
		}
	}
}

// WithBuiltins sets the registry used for ${fn(...)} placeholders.
func WithBuiltins(r *builtin.Registry) LoaderOption {
	return func(l *Loader) {
		l.builtins = r
	}
}

// WithWarningOutput redirects skip warnings (default stderr).
func WithWarningOutput(w io.Writer) LoaderOption {
	return func(l *Loader) {
		l.warnings = w
	}
}

func NewLoader(dir string, opts ...LoaderOption) *Loader {
	l := &Loader{
		dir:      dir,
		globals:  make(map[string]any),
		builtins: builtin.NewRegistry(),
		warnings: os.Stderr,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// SetGlobal adds one interpolation variable.
func (l *Loader) SetGlobal(name string, value any) {
	l.globals[name] = value
}

type caseFile struct {
	TestCases []Case `yaml:"test_cases"`
}

// LoadFile reads every case in one YAML file. Cases missing a name or
// URL are skipped with a warning; a file that does not parse at all is
// an error.
func (l *Loader) LoadFile(path string) ([]Case, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read case file: %w", err)
	}

	var file caseFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("invalid YAML in %s: %w", path, err)
	}

	list := file.TestCases
	if len(list) == 0 {
		var single Case
		if err := yaml.Unmarshal(data, &single); err != nil {
			return nil, fmt.Errorf("invalid YAML in %s: %w", path, err)
		}
		if single.Name != "" || single.URL != "" {
			list = []Case{single}
		}
	}

	var loaded []Case
	for _, c := range list {
		if c.Name == "" || c.URL == "" {
			fmt.Fprintf(l.warnings, "warning: skipping case with missing name or url in %s\n", path)
			continue
		}
		l.finalize(&c)
		loaded = append(loaded, c)
	}
	return loaded, nil
}

// LoadAll reads every .yaml/.yml file under the loader's directory in
// lexical order. Files that fail to parse are skipped with a warning.
func (l *Loader) LoadAll() ([]Case, error) {
	entries, err := os.ReadDir(l.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read cases directory: %w", err)
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		switch filepath.Ext(entry.Name()) {
		case ".yaml", ".yml":
			files = append(files, filepath.Join(l.dir, entry.Name()))
		}
	}
	sort.Strings(files)

	var all []Case
	for _, path := range files {
		loaded, err := l.LoadFile(path)
		if err != nil {
			fmt.Fprintf(l.warnings, "warning: %v\n", err)
			continue
		}
		all = append(all, loaded...)
	}
	return all, nil
}

// LoadByTags loads every case and keeps those carrying at least one of
// the given tags.
func (l *Loader) LoadByTags(tags []string) ([]Case, error) {
	all, err := l.LoadAll()
	if err != nil {
		return nil, err
	}
	return FilterByTags(all, tags), nil
}

// finalize applies defaults and interpolates placeholders in the
// request parts of a parsed case.
func (l *Loader) finalize(c *Case) {
	if c.Method == "" {
		c.Method = "GET"
	}
	c.Method = strings.ToUpper(c.Method)
	if c.Severity == "" {
		c.Severity = "normal"
	}
	if c.ExpectedStatus == 0 {
		c.ExpectedStatus = 200
	}
	for i := range c.Assertions {
		if c.Assertions[i].Kind == "" {
			c.Assertions[i].Kind = assertions.KindEqual
		}
	}
	if c.DBAssertion != nil {
		for i := range c.DBAssertion.Verify {
			if c.DBAssertion.Verify[i].Kind == "" {
				c.DBAssertion.Verify[i].Kind = assertions.KindEqual
			}
		}
	}

	vars := make(map[string]any, len(l.globals)+len(c.Variables))
	for k, v := range l.globals {
		vars[k] = v
	}
	for k, v := range c.Variables {
		vars[k] = v
	}

	c.URL = fmt.Sprint(l.interpolateString(c.URL, vars))
	for k, v := range c.Headers {
		c.Headers[k] = fmt.Sprint(l.interpolateString(v, vars))
	}
	if v, ok := l.interpolateValue(c.Params, vars).(map[string]any); ok {
		c.Params = v
	}
	if v, ok := l.interpolateValue(c.JSON, vars).(map[string]any); ok {
		c.JSON = v
	}
}
