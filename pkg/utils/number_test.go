package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGroupThousands(t *testing.T) {
	testCases := map[string]string{
		"0":             "0",
		"999":           "999",
		"1000":          "1,000",
		"1234567.89":    "1,234,567.89",
		"-3900000.00":   "-3,900,000.00",
		"123456":        "123,456",
		"12.5":          "12.5",
		"100000000000.": "100,000,000,000.",
	}

	for in, want := range testCases {
		assert.Equal(t, want, GroupThousands(in), in)
	}
}

func TestFormatAmountInput(t *testing.T) {
	assert.Equal(t, "1,000.50", FormatAmountInput("1000.50"))
	assert.Equal(t, "1,234.567", FormatAmountInput("1,2a34.5.67"))
	assert.Equal(t, "50", FormatAmountInput("-50"))
	assert.Equal(t, "", FormatAmountInput("abc"))
}
