package id

import (
	"fmt"
	"strconv"
	"strings"
)

// FormatTxnID returns a transaction ID like "000042".
func FormatTxnID(seq int) string {
	return fmt.Sprintf("%06d", seq)
}

// FormatEntryID returns an entry ID like "000042a" (entry 0='a', 25='z', 26='aa').
func FormatEntryID(txnID string, entry int) string {
	return txnID + suffix(entry)
}

func suffix(n int) string {
	var b []byte
	for {
		b = append([]byte{byte('a' + n%26)}, b...)
		n = n/26 - 1
		if n < 0 {
			return string(b)
		}
	}
}

// ParseTxnID parses "000042" or "000042b" into its sequence number.
func ParseTxnID(id string) (int, error) {
	base := TxnGroup(id)
	if base == "" {
		return 0, fmt.Errorf("invalid transaction ID: %q", id)
	}
	seq, err := strconv.Atoi(base)
	if err != nil || seq <= 0 {
		return 0, fmt.Errorf("invalid transaction ID %q", id)
	}
	return seq, nil
}

// TxnGroup strips the entry suffix from an entry ID.
// "000042b" -> "000042"
func TxnGroup(entryID string) string {
	return strings.TrimRight(entryID, "abcdefghijklmnopqrstuvwxyz")
}
