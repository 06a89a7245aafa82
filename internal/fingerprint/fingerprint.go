// Package fingerprint derives the content hash that identifies a transaction
// across imports. The hash is the primary key of the store, so its construction
// must stay byte-for-byte stable.
package fingerprint

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"strings"
	"time"

	"fjacquet/ledger-import/internal/dateutils"
	"fjacquet/ledger-import/internal/models"
)

// NarrativePrefixLength is the number of narrative characters that take part in the hash.
const NarrativePrefixLength = 50

const separator = "_"

// absentType is how a missing transaction type is rendered in the hashed string.
const absentType = "None"

// Generate returns the hex SHA-256 of
// lower(trim(type_date_amount_narrative[:50])).
// The category is deliberately not part of the input.
func Generate(txType models.TransactionType, date time.Time, amount int64, narrative string) string {
	return hex.EncodeToString(sum(Raw(txType, date, amount, narrative)))
}

// Raw returns the normalized string that Generate hashes.
func Raw(txType models.TransactionType, date time.Time, amount int64, narrative string) string {
	typeStr := string(txType)
	if typeStr == "" {
		typeStr = absentType
	}

	raw := strings.Join([]string{
		typeStr,
		dateutils.ToISODate(date),
		strconv.FormatInt(amount, 10),
		truncate(narrative, NarrativePrefixLength),
	}, separator)

	return strings.TrimSpace(strings.ToLower(raw))
}

// ForCandidate fingerprints a statement candidate.
func ForCandidate(c models.Candidate) string {
	return Generate(c.Type, c.Date, c.Amount, c.Narrative)
}

// truncate keeps the first n characters (runes, not bytes) of s.
func truncate(s string, n int) string {
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}

func sum(raw string) []byte {
	h := sha256.Sum256([]byte(raw))
	return h[:]
}
