package helpers

import (
	"crypto/rand"
	"encoding/hex"
	"math/big"
	"regexp"
	"strings"
	"time"

	"golang.org/x/crypto/sha3"
)

var (
	// Characters that can never appear in an IRC nick: control bytes,
	// whitespace and the prefix/separator characters the protocol reserves.
	nickStripPattern = regexp.MustCompile(`[\x00-\x1F\x7F\s:!@]`)

	controlStripPattern = regexp.MustCompile(`[\x00-\x1F\x7F]`)

	alphaNumericPattern = regexp.MustCompile(`[^a-zA-Z0-9]`)
)

// CleanNick strips protocol-reserved characters from a nick and bounds its
// length. The result may be empty; callers decide the fallback.
func CleanNick(nick string) string {
	return TruncateRunes(nickStripPattern.ReplaceAllString(nick, ""), 100)
}

// CleanString strips control and newline bytes and bounds the length to
// max code units. Used for every free-form user supplied field.
func CleanString(s string, max int) string {
	return TruncateRunes(controlStripPattern.ReplaceAllString(s, ""), max)
}

// AlphaNumeric removes everything outside [a-zA-Z0-9].
func AlphaNumeric(s string) string {
	return alphaNumericPattern.ReplaceAllString(s, "")
}

func TruncateRunes(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}

// Jitter returns a cryptographically random duration in (0, max]. Used to
// desynchronize reconnect timers of networks sharing a host; the result
// is never zero so a jittered delay never equals its base.
func Jitter(max time.Duration) time.Duration {
	if max <= 0 {
		return 0
	}
	n, err := rand.Int(rand.Reader, big.NewInt(int64(max)))
	if err != nil {
		return max / 2
	}
	return time.Duration(n.Int64() + 1)
}

// HashedIdent derives a stable ident-sized token from a client address,
// for deployments that expose a hashed remote address as the username.
func HashedIdent(addr string) string {
	hash := sha3.Sum224([]byte(addr))
	return hex.EncodeToString(hash[:])[:10]
}

// MatchMask reports whether an IRC source (nick!ident@host) matches an
// ignore mask with * and ? wildcards, case-insensitively.
func MatchMask(mask, source string) bool {
	return maskPattern(mask).MatchString(source)
}

func maskPattern(mask string) *regexp.Regexp {
	var b strings.Builder
	b.WriteString("(?i)^")
	for _, r := range mask {
		switch r {
		case '*':
			b.WriteString(".*")
		case '?':
			b.WriteString(".")
		default:
			b.WriteString(regexp.QuoteMeta(string(r)))
		}
	}
	b.WriteString("$")
	return regexp.MustCompile(b.String())
}
