package htmlsanitize_test

import (
	"testing"

	"github.com/dalemusser/socraticos/internal/app/system/htmlsanitize"
)

func TestPlainText(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"plain", "Intro to Calculus", "Intro to Calculus"},
		{"trims", "  Algebra  ", "Algebra"},
		{"strips tags", "<b>Bold</b> move", "Bold move"},
		{"drops script", "Hi<script>alert('xss')</script>", "Hi"},
		{"keeps ampersand", "Tom & Jerry", "Tom & Jerry"},
		{"strips attributes with tag", `<a href="javascript:alert(1)">click</a>`, "click"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := htmlsanitize.PlainText(tt.in); got != tt.want {
				t.Errorf("PlainText(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
