package blob

import (
	"path"
	"strings"
)

// StatusLogKey is the key of a tank's change log within a run.
func StatusLogKey(runID, tank string) string {
	return path.Join("runs", keySegment(runID), keySegment(tank)+"_status.csv")
}

// keySegment keeps a name usable as a single key segment.
func keySegment(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "unnamed"
	}
	return strings.NewReplacer("/", "_", "\\", "_", "..", "_").Replace(s)
}
