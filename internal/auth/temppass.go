package auth

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"regexp"
)

// Temporary password format: "temp" followed by six [a-z0-9] characters.
const (
	TempPasswordPrefix    = "temp"
	TempPasswordSuffixLen = 6
	tempPasswordAlphabet  = "abcdefghijklmnopqrstuvwxyz0123456789"
)

var tempPasswordRegex = regexp.MustCompile(`^temp[a-z0-9]{6}$`)

// GenerateTempPassword returns a fresh temporary password such as "temp4k9x2a".
func GenerateTempPassword() (string, error) {
	suffix := make([]byte, TempPasswordSuffixLen)
	max := big.NewInt(int64(len(tempPasswordAlphabet)))

	for i := range suffix {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("generate temp password: %w", err)
		}
		suffix[i] = tempPasswordAlphabet[n.Int64()]
	}

	return TempPasswordPrefix + string(suffix), nil
}

// IsTempPassword reports whether s has the temporary password format.
func IsTempPassword(s string) bool {
	return tempPasswordRegex.MatchString(s)
}
