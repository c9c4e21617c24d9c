package sanitizer

import (
	"reflect"
	"regexp"
	"testing"
)

func TestTrimAndNormalize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"trim spaces", "  U12 Girls  ", "U12 Girls"},
		{"collapse inner spaces", "U12    Girls", "U12 Girls"},
		{"tabs and newlines", "Field\t\nA", "Field A"},
		{"empty", "", ""},
		{"only whitespace", " \t\n ", ""},
		{"unicode kept", " Ñandú Park ", "Ñandú Park"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := TrimAndNormalize(tt.input)
			if got != tt.want {
				t.Errorf("TrimAndNormalize(%q) = %q, want %q", tt.input, got, tt.want)
			}
			if again := TrimAndNormalize(got); again != got {
				t.Errorf("not idempotent: %q -> %q", got, again)
			}
		})
	}
}

func TestNormalizeText(t *testing.T) {
	got := NormalizeText("  Bring water.  \r\nCleats required.   \n\n")
	want := "Bring water.\nCleats required."
	if got != want {
		t.Errorf("NormalizeText = %q, want %q", got, want)
	}
}

func TestNormalizeKey(t *testing.T) {
	tests := map[string]string{
		" Members Only ": "members_only",
		"like-new":       "like_new",
		"PRACTICE":       "practice",
		"":               "",
	}
	for in, want := range tests {
		if got := NormalizeKey(in); got != want {
			t.Errorf("NormalizeKey(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestNormalizeClock(t *testing.T) {
	tests := map[string]string{
		"8:30":   "08:30",
		" 9:00 ": "09:00",
		"18:45":  "18:45",
		"x:00":   "x:00",
		"":       "",
	}
	for in, want := range tests {
		if got := NormalizeClock(in); got != want {
			t.Errorf("NormalizeClock(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestEscapeRegex(t *testing.T) {
	escaped := EscapeRegex(" shin (pads)+ ")
	re := regexp.MustCompile(escaped)
	if !re.MatchString("youth shin (pads)+ size M") {
		t.Errorf("escaped pattern %q should match literally", escaped)
	}
	if re.MatchString("shin pads") {
		t.Errorf("escaped pattern %q should not behave as regex", escaped)
	}
}

func TestNormalizeURL(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"example.com/img.png", "https://example.com/img.png"},
		{"http://CDN.Example.com/a/", "https://cdn.example.com/a"},
		{"  https://example.com/Photo.JPG  ", "https://example.com/Photo.JPG"},
		{"", ""},
		{"https://", ""},
	}
	for _, tt := range tests {
		if got := NormalizeURL(tt.input); got != tt.want {
			t.Errorf("NormalizeURL(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestNormalizeIDsAndURLs(t *testing.T) {
	got := NormalizeIDs([]string{" a ", "b", "a", "", "  "})
	if !reflect.DeepEqual(got, []string{"a", "b"}) {
		t.Errorf("NormalizeIDs = %v", got)
	}
	if got := NormalizeURLs(nil); got == nil || len(got) != 0 {
		t.Errorf("expected empty non-nil slice, got %#v", got)
	}
}
