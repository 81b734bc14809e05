package output

import (
	json "github.com/goccy/go-json"

	"github.com/rpgo/fire-compare/internal/domain"
)

// JSONFormatter serializes the comparison report as pretty-printed JSON.
type JSONFormatter struct{}

func (j JSONFormatter) Name() string { return "json" }

func (j JSONFormatter) Format(report *domain.ComparisonReport) ([]byte, error) {
	out := struct {
		*domain.ComparisonReport
		Assumptions []string `json:"assumptions,omitempty"`
	}{report, GenerateAssumptions(report)}
	return json.MarshalIndent(out, "", "  ")
}
