package sanitizer

import "testing"

func TestSanitizeText(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "trim spaces", input: "  Perceuse Bosch  ", want: "Perceuse Bosch"},
		{name: "collapse inner whitespace", input: "Perceuse\t\t Bosch\nPro", want: "Perceuse Bosch Pro"},
		{name: "drop control characters", input: "Tente\x00 4 places\x07", want: "Tente 4 places"},
		{name: "keep accents", input: " Vélo électrique ", want: "Vélo électrique"},
		{name: "arabic", input: " دراجة  هوائية ", want: "دراجة هوائية"},
		{name: "empty", input: "", want: ""},
		{name: "only whitespace", input: " \t\n ", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SanitizeText(tt.input)
			if got != tt.want {
				t.Errorf("SanitizeText(%q) = %q, want %q", tt.input, got, tt.want)
			}
			if again := SanitizeText(got); again != got {
				t.Errorf("SanitizeText is not idempotent: %q -> %q", got, again)
			}
		})
	}
}

func TestSanitizeMessage(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "plain", input: "Bonjour", want: "Bonjour"},
		{name: "keeps line breaks", input: "Bonjour,\n  je passe   samedi ", want: "Bonjour,\nje passe samedi"},
		{name: "trims blank edges", input: "\n\nMerci\n\n", want: "Merci"},
		{name: "blank", input: "   \n  ", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SanitizeMessage(tt.input); got != tt.want {
				t.Errorf("SanitizeMessage(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestSanitizePhone(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "E.164", input: "+212612345678", want: "+212612345678"},
		{name: "national with spaces", input: "06 12 34 56 78", want: "+212612345678"},
		{name: "national with dashes", input: "06-12-34-56-78", want: "+212612345678"},
		{name: "foreign number", input: "+33 6 12 34 56 78", want: "+33612345678"},
		{name: "letters", input: "call me maybe", want: ""},
		{name: "too short", input: "123", want: ""},
		{name: "empty", input: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SanitizePhone(tt.input); got != tt.want {
				t.Errorf("SanitizePhone(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestSanitizeEmail(t *testing.T) {
	if got := SanitizeEmail("  Yasmine@Example.MA "); got != "yasmine@example.ma" {
		t.Errorf("SanitizeEmail = %q", got)
	}
}

func TestSanitizeURL(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "adds https", input: "cdn.example.com/img/1.jpg", want: "https://cdn.example.com/img/1.jpg"},
		{name: "upgrades http", input: "http://CDN.example.com/a.png", want: "https://cdn.example.com/a.png"},
		{name: "drops utm params", input: "https://cdn.example.com/a.png?utm_source=x&w=200", want: "https://cdn.example.com/a.png?w=200"},
		{name: "trailing slash", input: "https://example.com/photos/", want: "https://example.com/photos"},
		{name: "empty", input: "  ", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SanitizeURL(tt.input); got != tt.want {
				t.Errorf("SanitizeURL(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestSanitizeSlice(t *testing.T) {
	got := SanitizeSlice([]string{" GPS ", "gps", "", "  ", "Bluetooth", "GPS"}, SanitizeText)
	want := []string{"GPS", "gps", "Bluetooth"}

	if len(got) != len(want) {
		t.Fatalf("SanitizeSlice = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("SanitizeSlice[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestSearchPattern(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{input: "perceuse", want: "perceuse"},
		{input: "  scie   sauteuse ", want: "scie sauteuse"},
		{input: "a.b*(c)", want: `a\.b\*\(c\)`},
		{input: "   ", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := SearchPattern(tt.input); got != tt.want {
				t.Errorf("SearchPattern(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
