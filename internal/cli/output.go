package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/noah-isme/sims-core/pkg/export"
)

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json", "csv"}

func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}

// Output renders command results in the selected format.
type Output struct {
	Format string
	Writer io.Writer
}

// Table writes data as JSON, or table as text or CSV.
func (o Output) Table(data interface{}, table export.Table) error {
	switch o.Format {
	case "json":
		return o.JSON(data)
	case "csv":
		return export.WriteCSV(o.Writer, table)
	default:
		return export.WriteText(o.Writer, table)
	}
}

// JSON writes data as indented JSON.
func (o Output) JSON(data interface{}) error {
	enc := json.NewEncoder(o.Writer)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}

// Line writes a plain message in text mode and data otherwise.
func (o Output) Line(data interface{}, format string, args ...interface{}) error {
	if o.Format == "json" {
		return o.JSON(data)
	}
	_, err := fmt.Fprintf(o.Writer, format+"\n", args...)
	return err
}
