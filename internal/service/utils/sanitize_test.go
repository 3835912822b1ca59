package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeContent(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"plain text untouched", "hello world", "hello world"},
		{"tags stripped", "<b>bold</b> and <i>italic</i>", "bold and italic"},
		{"script stripped", `<script>alert("x")</script>hi`, "hi"},
		{"markup-only becomes empty", "<img src=x><br/>", ""},
		{"whitespace trimmed", "  spaced out \n", "spaced out"},
		{"entities preserved as literals", "a &amp; b", "a & b"},
		{"unicode preserved", "héllo — ≤ 5", "héllo — ≤ 5"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, SanitizeContent(tc.in))
		})
	}
}
