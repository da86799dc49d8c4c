package repository

import (
	"fmt"
	"time"
)

// Timestamps are stored as ISO-8601 text. Rows written before timezone
// handling was tightened may lack an offset, so parsing tries both shapes.
var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
}

func parseSubmittedAt(value string) (time.Time, error) {
	for _, layout := range timestampLayouts {
		if ts, err := time.Parse(layout, value); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", value)
}
