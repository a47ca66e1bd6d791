package validate

import "fmt"

// Finding is a single validation result, in the teacher's hive/verify
// ValidationError shape: a category, a message, and the byte offset it
// concerns (-1 when the finding isn't tied to one offset).
type Finding struct {
	Type    string
	Message string
	Offset  int
}

func (f Finding) String() string {
	if f.Offset >= 0 {
		return fmt.Sprintf("%s at offset 0x%X: %s", f.Type, f.Offset, f.Message)
	}
	return fmt.Sprintf("%s: %s", f.Type, f.Message)
}

// Stats summarizes the structural facts a Report gathered along the way
// (spec §6, "inspect"), shared between the `validate` and `inspect` CLI
// surfaces so the latter can print a Report's Stats without re-walking
// the file.
type Stats struct {
	FileSize        int
	FormatMajor     uint16
	FormatMinor     uint16
	NodeCount       uint32
	RecordSize      int
	HasPatterns     bool
	HasLiteralHash  bool
	PatternCount    int
	LiteralEntries  uint32
	CaseInsensitive bool
}

// Report accumulates findings from a single Database call. An empty
// Errors slice means the image is safe to open; Warnings and Info never
// block opening it (spec §7: "Validator output is advisory; the database
// still opens unless a fatal-format error is found").
type Report struct {
	Level    Level
	Errors   []Finding
	Warnings []Finding
	Info     []Finding
	Stats    Stats
}

func (r *Report) error(typ, offset int, format string, args ...interface{}) {
	r.Errors = append(r.Errors, Finding{Type: typ, Message: fmt.Sprintf(format, args...), Offset: offset})
}

func (r *Report) warn(typ string, offset int, format string, args ...interface{}) {
	r.Warnings = append(r.Warnings, Finding{Type: typ, Message: fmt.Sprintf(format, args...), Offset: offset})
}

func (r *Report) info(typ string, offset int, format string, args ...interface{}) {
	r.Info = append(r.Info, Finding{Type: typ, Message: fmt.Sprintf(format, args...), Offset: offset})
}

// Valid reports whether the image had no fatal-format errors.
func (r *Report) Valid() bool { return len(r.Errors) == 0 }

// Summary renders a one-line, `validate`-CLI-friendly result line.
func (r *Report) Summary() string {
	return fmt.Sprintf("level=%s errors=%d warnings=%d info=%d", r.Level, len(r.Errors), len(r.Warnings), len(r.Info))
}
