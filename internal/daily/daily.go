package daily

import (
	"crypto/hmac"
	"crypto/sha256"
	"time"
)

// DateKey returns YYYY-MM-DD in UTC.
func DateKey(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

// Digits derives count puzzle digits in [1,9] for the date from HMAC(salt, YYYY-MM-DD).
// Every player sees the same digits on the same UTC day.
func Digits(date time.Time, salt string, count int) []int {
	if count <= 0 {
		return nil
	}
	h := hmac.New(sha256.New, []byte(salt))
	h.Write([]byte(DateKey(date)))
	sum := h.Sum(nil)

	out := make([]int, count)
	for i := range out {
		// one byte per digit; wrap around for puzzles longer than the digest
		out[i] = 1 + int(sum[i%len(sum)]+byte(i/len(sum)))%9
	}
	return out
}
