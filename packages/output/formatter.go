package output

import (
	"fmt"
	"io"

	"faultline/packages/runner"
)

// Formatter renders campaign results for one output format.
type Formatter interface {
	FormatHeader(version string)
	FormatCampaign(title string, campaign *runner.CampaignResult)
	FormatError(err error)
}

// Flushable is implemented by formatters that accumulate results and
// write once at the end.
type Flushable interface {
	Flush() error
}

// NewFormatter builds the formatter for a format name: "console",
// "json" or "junit".
func NewFormatter(format string, w io.Writer, verbose, noColor bool) (Formatter, error) {
	switch format {
	case "", "console":
		return NewConsoleFormatter(WithWriter(w), WithVerbose(verbose), WithNoColor(noColor)), nil
	case "json":
		return NewJSONFormatter(JSONWithWriter(w)), nil
	case "junit":
		return NewJUnitFormatter(JUnitWithWriter(w)), nil
	default:
		return nil, fmt.Errorf("unknown output format: %s", format)
	}
}
