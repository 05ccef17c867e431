package places

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDirectory_Code(t *testing.T) {
	d := New(map[string]string{"Kyoto": "ukb"})

	tests := map[string]string{
		"Delhi":          "DEL",
		"  new   DELHI ": "DEL",
		"Bengaluru":      "BLR",
		"Tokyo, Japan":   "TYO",
		"kyoto":          "UKB",
		"bom":            "BOM",
		"Hong Kong":      "HKG",
	}
	for in, want := range tests {
		got, ok := d.Code(in)
		assert.True(t, ok, in)
		assert.Equal(t, want, got, in)
	}

	_, ok := d.Code("Atlantis")
	assert.False(t, ok)
	_, ok = d.Code("xyz")
	assert.False(t, ok)
}
