package model

import "testing"

func TestSlugify(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "lowercases and hyphenates", input: "Dragon Castle", want: "dragon-castle"},
		{name: "collapses consecutive separators", input: "sea  /  animals", want: "sea-animals"},
		{name: "trims surrounding whitespace", input: "  space rocket  ", want: "space-rocket"},
		{name: "strips leading and trailing symbols", input: "--hello world!!", want: "hello-world"},
		{name: "keeps digits", input: "Top 10 Pages", want: "top-10-pages"},
		{name: "keeps japanese characters", input: "おとぎの国", want: "おとぎの国"},
		{name: "mixed japanese and ascii", input: "ぬりえ Park 2025", want: "ぬりえ-park-2025"},
		{name: "symbols only become empty", input: "!!!", want: ""},
		{name: "empty input", input: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Slugify(tt.input); got != tt.want {
				t.Errorf("Slugify(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
