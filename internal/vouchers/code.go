package vouchers

import (
	"strings"

	"github.com/google/uuid"
)

const (
	codePrefix = "HO-"
	codeLength = 8
)

// GenerateCode returns a voucher code such as HO-3F9A0C1B.
func GenerateCode() string {
	raw := strings.ReplaceAll(uuid.NewString(), "-", "")
	return codePrefix + strings.ToUpper(raw[:codeLength])
}

func normalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
