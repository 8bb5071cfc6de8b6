package recommend

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// ParseReply extracts every maximal run of decimal digits (any script) from
// text, left to right. Runs too large for int are left out; ParseCandidates
// keeps them.
func ParseReply(text string) []int {
	ids := make([]int, 0)
	for _, key := range ParseCandidates(text) {
		n, err := strconv.Atoi(key)
		if err != nil {
			continue
		}
		ids = append(ids, n)
	}
	return ids
}

// ParseCandidates returns each digit run of text as a canonical ASCII decimal
// string: digits of every script mapped to 0-9, leading zeros removed.
func ParseCandidates(text string) []string {
	keys := make([]string, 0)

	var run strings.Builder
	flush := func() {
		if run.Len() == 0 {
			return
		}
		key := strings.TrimLeft(run.String(), "0")
		if key == "" {
			key = "0"
		}
		keys = append(keys, key)
		run.Reset()
	}

	for _, r := range text {
		if !unicode.IsDigit(r) {
			flush()
			continue
		}
		run.WriteByte(byte('0' + digitValue(r)))
	}
	flush()

	return keys
}

// digitValue returns the value of a Unicode decimal digit. Nd digits are
// assigned in contiguous runs of whole 0-9 blocks, so the distance to the
// start of the run modulo 10 is the value.
func digitValue(r rune) int {
	if r >= '0' && r <= '9' {
		return int(r - '0')
	}
	n := 0
	for unicode.IsDigit(r - rune(n) - 1) {
		n++
	}
	return n % 10
}

// Resolve maps ids to catalog records in order. Each id takes the first record
// whose id has the same decimal form; repeated ids repeat the record and
// unknown ids are skipped. At most limit records are returned.
func Resolve(ids []int, products []Product, limit int) []Product {
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = strconv.Itoa(id)
	}
	return ResolveKeys(keys, products, limit)
}

// ResolveKeys is Resolve over canonical decimal strings, so identifiers wider
// than int still match.
func ResolveKeys(keys []string, products []Product, limit int) []Product {
	result := make([]Product, 0)
	if limit <= 0 {
		return result
	}

	for _, want := range keys {
		if len(result) >= limit {
			break
		}
		for _, p := range products {
			if key, ok := idString(p["id"]); ok && key == want {
				result = append(result, p)
				break
			}
		}
	}
	return result
}

func idString(v interface{}) (string, bool) {
	switch val := v.(type) {
	case nil:
		return "", false
	case string:
		return val, true
	case []byte:
		return string(val), true
	default:
		return fmt.Sprint(val), true
	}
}
