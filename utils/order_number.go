package utils

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// NewOrderNumber returns a customer-facing reference such as ORD-20260115093000-1A2B3C4D.
func NewOrderNumber(now time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
	return "ORD-" + now.UTC().Format("20060102150405") + "-" + suffix
}
