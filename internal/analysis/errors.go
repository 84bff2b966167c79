package analysis

import (
	"fmt"
	"strings"
)

// CardinalityError reports an analysis invoked with the wrong number of
// measurements. The message names the offending captures so the user can
// spot stale or missing files immediately.
type CardinalityError struct {
	Want  int
	Got   int
	Names []string
	// Reason explains what the expected measurements map to, e.g.
	// "one per belt".
	Reason string
}

func (e *CardinalityError) Error() string {
	msg := fmt.Sprintf("this tool needs %d measurements to work with", e.Want)
	if e.Reason != "" {
		msg += " (" + e.Reason + ")"
	}
	return fmt.Sprintf("%s! Currently, it has %d measurements named [%s]",
		msg, e.Got, strings.Join(e.Names, ", "))
}
