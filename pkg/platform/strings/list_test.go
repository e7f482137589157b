package strings

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitList(t *testing.T) {
	tests := []struct {
		name     string
		input    []string
		expected []string
	}{
		{"no values", nil, nil},
		{"only blanks", []string{"", " , ,"}, nil},
		{"single comma list", []string{"broker-1:9092, broker-2:9092,"}, []string{"broker-1:9092", "broker-2:9092"}},
		{"repeated values", []string{"ACME", "Globex,ACME"}, []string{"ACME", "Globex"}},
		{"order of first occurrence", []string{"c", "a,b", "a"}, []string{"c", "a", "b"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, SplitList(tt.input...))
		})
	}
}
