package storage

import (
	"fmt"
	"regexp"
	"time"

	"github.com/google/uuid"
)

var unsafeField = regexp.MustCompile(`[^A-Za-z0-9_-]`)

// ObjectName builds the stored name {field}-{unixMillis}-{random}{ext}.
func ObjectName(field, ext string, at time.Time) string {
	field = unsafeField.ReplaceAllString(field, "")
	if field == "" {
		field = "file"
	}
	return fmt.Sprintf("%s-%d-%s%s", field, at.UnixMilli(), uuid.NewString(), ext)
}
