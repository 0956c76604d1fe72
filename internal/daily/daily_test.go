package daily

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDateKey_UTC(t *testing.T) {
	loc := time.FixedZone("NZDT", 13*3600)
	tm := time.Date(2024, 3, 2, 9, 0, 0, 0, loc)
	assert.Equal(t, "2024-03-01", DateKey(tm))
}

func TestDigits_Deterministic(t *testing.T) {
	day := time.Date(2024, 5, 17, 12, 0, 0, 0, time.UTC)
	a := Digits(day, "salt", 4)
	b := Digits(day.Add(6*time.Hour), "salt", 4)
	assert.Equal(t, a, b, "same UTC day")
	assert.Len(t, a, 4)

	assert.NotEqual(t, Digits(day, "salt", 9), Digits(day, "other", 9))
}

func TestDigits_Range(t *testing.T) {
	day := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 60; i++ {
		for _, d := range Digits(day.AddDate(0, 0, i), "s", 40) {
			assert.GreaterOrEqual(t, d, 1)
			assert.LessOrEqual(t, d, 9)
		}
	}
	assert.Nil(t, Digits(day, "s", 0))
}
