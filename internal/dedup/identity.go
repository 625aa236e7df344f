// Package dedup decides which messages are processed and which of several
// competing offer emails is authoritative. Cross-run dedup is identity-based
// via the ledger; intra-run dedup groups messages by normalized subject and
// keeps the most recently dated one.
package dedup

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"net/mail"
	"regexp"
	"strings"
	"time"
)

var subjectMarkerRx = regexp.MustCompile(`(?i)^(re:|fw:|fwd:)\s*`)

// Identity returns the stable identity of a message: its native Message-ID
// header when present, otherwise an angle-bracketed md5 of the raw bytes so
// identical input always yields the identical identity string.
func Identity(nativeID string, raw []byte) string {
	if id := strings.TrimSpace(nativeID); id != "" {
		return id
	}
	sum := md5.Sum(raw)
	return fmt.Sprintf("<%s>", hex.EncodeToString(sum[:]))
}

// GroupKey normalizes a subject into an intra-run dedup key: one leading
// reply/forward marker stripped, case folded, whitespace trimmed.
func GroupKey(subject string) string {
	key := subjectMarkerRx.ReplaceAllString(subject, "")
	return strings.TrimSpace(strings.ToLower(key))
}

// ParseDate parses an RFC 5322 date header. Missing or unparseable dates
// return the zero time, which loses to any valid date in resolution.
func ParseDate(header string) time.Time {
	if header == "" {
		return time.Time{}
	}
	t, err := mail.ParseDate(header)
	if err != nil {
		return time.Time{}
	}
	return t.UTC()
}
