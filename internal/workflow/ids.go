package workflow

import (
	"crypto/rand"
	"fmt"
	"time"

	"github.com/arslant84/syntra.production-sub009/internal/domain/entity"
)

var idPrefixes = map[entity.RequestType]string{
	entity.TypeTransport:     "TRN",
	entity.TypeAccommodation: "ACM",
	entity.TypeVisa:          "VIS",
	entity.TypeClaim:         "TRF",
}

// NewRequestID generates a type-prefixed human-readable request id,
// e.g. TRN-20260830-4F2A.
func NewRequestID(t entity.RequestType) string {
	suffix := make([]byte, 3)
	if _, err := rand.Read(suffix); err != nil {
		// crypto/rand never fails on supported platforms; fall back to time
		return fmt.Sprintf("%s-%s-%06X", idPrefixes[t], time.Now().Format("20060102"), time.Now().UnixNano()&0xFFFFFF)
	}
	return fmt.Sprintf("%s-%s-%X", idPrefixes[t], time.Now().Format("20060102"), suffix)
}
