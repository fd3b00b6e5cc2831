package share

import (
	"crypto/rand"
	"fmt"
	"strings"
)

// codeAlphabet omits 0/O, 1/I/L and lowercase so codes survive being read
// aloud at a counter and typed on a till keyboard. 31^6 is about 900 million
// combinations, far more than can be guessed inside the expiry window.
const codeAlphabet = "23456789ABCDEFGHJKMNPQRSTUVWXYZ"

const CodeLength = 6

func generateCode() (string, error) {
	buf := make([]byte, CodeLength)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("reading random bytes: %w", err)
	}

	var b strings.Builder
	for _, c := range buf {
		b.WriteByte(codeAlphabet[int(c)%len(codeAlphabet)])
	}

	return b.String(), nil
}

// NormalizeCode cleans up staff input: uppercased, with spaces and dashes
// stripped.
func NormalizeCode(code string) string {
	code = strings.ToUpper(strings.TrimSpace(code))
	code = strings.ReplaceAll(code, " ", "")

	return strings.ReplaceAll(code, "-", "")
}
