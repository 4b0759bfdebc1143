package sanitizer_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bpmonitor/idvault/pkg/sanitizer"
)

func TestPersonName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"already clean", "Somchai Jaidee", "Somchai Jaidee"},
		{"extra white space", "  Somchai \t\n Jaidee  ", "Somchai Jaidee"},
		{"thai", " สมชาย  ใจดี ", "สมชาย ใจดี"},
		{"tags", "<b>Somchai</b> Jaidee", "Somchai Jaidee"},
		{"entities", "Tom &amp; Jerry", "Tom & Jerry"},
		{"control and zero width", "Som\u0000chai\u200b Jaidee", "Somchai Jaidee"},
		{"empty", "   ", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, sanitizer.PersonName(tt.input))
		})
	}
}

func TestPipelines(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "AB+", sanitizer.Code(" ab+ "))
	assert.Equal(t, "female", sanitizer.Keyword(" Female\n"))
	assert.Equal(t, "1-2345-67890-12-1", sanitizer.Identifier(" 1-2345-67890-12-1\t"))
}

func TestApply(t *testing.T) {
	t.Parallel()

	got := sanitizer.Apply(" Mixed Case ", sanitizer.Trim, sanitizer.ToLower)
	assert.Equal(t, "mixed case", got)
	assert.Equal(t, "x", sanitizer.Apply("x"))

	double := func(v int) int { return v * 2 }
	assert.Equal(t, 8, sanitizer.Compose(double, double)(2))
}

func TestStringHelpers(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "สมชา", sanitizer.MaxLength("สมชาย", 4))
	assert.Equal(t, "abc", sanitizer.MaxLength("abc", 10))
	assert.Empty(t, sanitizer.MaxLength("abc", 0))
	assert.Equal(t, "0812345678", sanitizer.KeepDigits("081-234-5678"))
}

func TestMeasurement(t *testing.T) {
	t.Parallel()

	assert.InDelta(t, 172.5, sanitizer.Measurement(172.46), 1e-9)
	assert.InDelta(t, 65.0, sanitizer.Measurement(64.96), 1e-9)
	assert.InDelta(t, 3.0, sanitizer.RoundToDecimalPlaces(2.5, -1), 1e-9)
	assert.InDelta(t, 2.35, sanitizer.RoundToDecimalPlaces(float32(2.345), 2), 1e-6)
}
