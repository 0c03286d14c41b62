package utils

import (
	"fmt"
	"strings"

	config "github.com/azmhq/mentor_platform/configs"
	"github.com/google/uuid"
)

// GenerateMeetingID derives a short human-readable meeting code from the
// booking id. Deterministic, not a secret.
func GenerateMeetingID(bookingID uuid.UUID) string {
	hex := strings.ReplaceAll(bookingID.String(), "-", "")
	return "AZM-" + strings.ToUpper(hex[len(hex)-6:])
}

func GenerateMeetingURL(bookingID uuid.UUID) string {
	return fmt.Sprintf("%s/session/%s", config.Config("FRONTEND_URL"), bookingID)
}
