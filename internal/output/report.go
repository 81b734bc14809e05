package output

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/rpgo/fire-compare/internal/domain"
)

// ErrUnsupportedFormat is returned for an unknown report format name.
var ErrUnsupportedFormat = errors.New("unsupported report format")

// ResolveFormatter looks up a formatter or returns ErrUnsupportedFormat
// enriched with the available names and aliases.
func ResolveFormatter(format string) (Formatter, error) {
	if f := GetFormatterByName(format); f != nil {
		return f, nil
	}
	return nil, fmt.Errorf("%w: %q. Try one of: %s (aliases: %s)", ErrUnsupportedFormat, format, strings.Join(AvailableFormatterNames(), ", "), strings.Join(AvailableFormatAliases(), ", "))
}

// GenerateReport renders report in the named format to w.
func GenerateReport(w io.Writer, report *domain.ComparisonReport, format string) error {
	f, err := ResolveFormatter(format)
	if err != nil {
		return err
	}
	data, err := f.Format(report)
	if err != nil {
		return fmt.Errorf("%s formatter: %w", f.Name(), err)
	}
	_, err = w.Write(data)
	return err
}

// SaveReport renders report in the named format to a timestamped file in dir.
func SaveReport(report *domain.ComparisonReport, format, dir string) (string, error) {
	f, err := ResolveFormatter(format)
	if err != nil {
		return "", err
	}
	return WriteFormatted(f, report, dir)
}
