package intake

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizePhone(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		country string
		want    string
	}{
		{"empty", "   ", "", ""},
		{"already international", "+44 7911 123456", "", "+447911123456"},
		{"country code without plus", "263771840862", "", "+263771840862"},
		{"leading zero", "077-184-0862", "ZW", "+263771840862"},
		{"bare nine digits", "771840862", "", "+263771840862"},
		{"bare ten digits", "7718408620", "", "+2637718408620"},
		{"south africa", "082 123 4567", "ZA", "+27821234567"},
		{"uk lower case", "07911123456", "gb", "+447911123456"},
		{"unknown country falls back to default", "0771840862", "XX", "+263771840862"},
		{"too short stays local", "12345", "", "12345"},
		{"letters stay local", "call-me", "", "callme"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizePhone(tt.raw, tt.country))
		})
	}
}
