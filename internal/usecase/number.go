package usecase

import (
	"encoding/hex"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	orderNumberPrefix   = "PW"
	orderNumberAttempts = 3
)

// newOrderNumber returns "PW" + YYYYMMDD + 10 uppercase hex characters.
func newOrderNumber(now time.Time) string {
	id := uuid.New()
	return orderNumberPrefix + now.UTC().Format("20060102") + strings.ToUpper(hex.EncodeToString(id[:5]))
}
