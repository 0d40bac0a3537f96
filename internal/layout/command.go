package layout

import (
	"fmt"
	"path/filepath"
	"strings"
)

// DestinationMode selects how the local destination of a copy command is
// built.
type DestinationMode string

const (
	// DestinationBlob places each object at "<target>/<data>/<label>/<id>".
	DestinationBlob DestinationMode = "blob"

	// DestinationLegacy joins the command file path instead of the
	// identifier. An absolute command file path replaces the whole
	// destination, so every line of a file targets the command file itself.
	// Output of earlier runs was generated this way.
	DestinationLegacy DestinationMode = "legacy"
)

var _ fmt.Stringer = DestinationMode("")

func (m DestinationMode) String() string {
	return string(m)
}

func (m *DestinationMode) Set(value string) error {
	switch DestinationMode(value) {
	case DestinationBlob, DestinationLegacy:
		*m = DestinationMode(value)
		return nil
	}

	return fmt.Errorf("unknown destination mode %q", value)
}

// CommandTemplate renders copy commands for the external bulk-copy tool.
type CommandTemplate struct {
	SourceBucket  string
	ContentPrefix string
	TargetDir     string
	DataSubpath   string
	Mode          DestinationMode
}

func (t CommandTemplate) Destination(label, commandFile, identifier string) string {
	last := identifier

	if t.Mode == DestinationLegacy {
		if filepath.IsAbs(commandFile) {
			return commandFile
		}

		last = commandFile
	}

	return filepath.Join(t.TargetDir, t.DataSubpath, label, last)
}

// Line returns a single newline-terminated copy command.
func (t CommandTemplate) Line(label, commandFile, identifier string) string {
	var sb strings.Builder

	sb.WriteString("cp s3://")
	sb.WriteString(t.SourceBucket)
	sb.WriteString("/")

	if t.ContentPrefix != "" {
		sb.WriteString(strings.Trim(t.ContentPrefix, "/"))
		sb.WriteString("/")
	}

	sb.WriteString(identifier)
	sb.WriteString(" ")
	sb.WriteString(t.Destination(label, commandFile, identifier))
	sb.WriteString("\n")

	return sb.String()
}
