package util

import (
	"strings"

	"github.com/google/uuid"
)

// NewID returns an opaque id with a type prefix, e.g. "log_9f3c...".
func NewID(prefix string) string {
	return prefix + "_" + strings.ReplaceAll(uuid.NewString(), "-", "")
}
