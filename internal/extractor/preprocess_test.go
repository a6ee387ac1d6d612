package extractor

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPreprocess(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "crlf", in: "a\r\nb", want: "a\nb"},
		{name: "lone cr", in: "a\rb", want: "a\nb"},
		{name: "blank lines collapse to two", in: "a\n\n\n\nb", want: "a\n\nb"},
		{name: "two newlines kept", in: "a\n\nb", want: "a\n\nb"},
		{name: "horizontal whitespace", in: "a  \t b", want: "a b"},
		{name: "trim", in: "  hi \n", want: "hi"},
		{name: "non-ascii untouched", in: "₹ 6.5   LPA", want: "₹ 6.5 LPA"},
		{name: "empty", in: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Preprocess(tt.in))
		})
	}
}

func TestPreprocess_FixedPoint(t *testing.T) {
	inputs := []string{
		"Company: Infosys is hiring.\r\n\r\n\r\nPackage   is 6.5 LPA",
		"\t\t lead \r\r\r trail \t",
		"already clean text",
		"mixed \r\n\n\r\n\t \f spaces",
	}
	for _, in := range inputs {
		once := Preprocess(in)
		assert.Equal(t, once, Preprocess(once), "input %q", in)
	}
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", truncate("abc", 10))
	assert.Equal(t, "ab", truncate("abc", 2))
	assert.Equal(t, "abc", truncate("abc", 0))
	// "é" is two bytes; cutting inside it backs off to the rune start.
	assert.Equal(t, "h", truncate("héllo", 2))
}
