package normalizers

import (
	"testing"

	"golang.org/x/text/unicode/norm"
)

func TestLowercase(t *testing.T) {
	got, err := Lowercase{}.Normalize("Hello WORLD")
	if err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}
	if got != "hello world" {
		t.Errorf("Normalize = %q, want %q", got, "hello world")
	}
}

func TestUnicodeForms(t *testing.T) {
	// "é" as e + combining acute vs precomposed.
	decomposed := "é"
	precomposed := "é"

	got, err := Unicode{Form: norm.NFC}.Normalize(decomposed)
	if err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}
	if got != precomposed {
		t.Errorf("NFC(%q) = %q, want %q", decomposed, got, precomposed)
	}

	got, err = Unicode{Form: norm.NFD}.Normalize(precomposed)
	if err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}
	if got != decomposed {
		t.Errorf("NFD(%q) = %q, want %q", precomposed, got, decomposed)
	}
}

func TestStripAccents(t *testing.T) {
	got, err := StripAccents{}.Normalize("café naïve")
	if err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}
	if got != "cafe naive" {
		t.Errorf("Normalize = %q, want %q", got, "cafe naive")
	}
}

func TestBert(t *testing.T) {
	tests := []struct {
		name  string
		n     Bert
		input string
		want  string
	}{
		{"lowercases", NewBert(true), "Hello World", "hello world"},
		{"keeps case", NewBert(false), "Hello World", "Hello World"},
		{"cleans control chars", NewBert(true), "hello\x00world", "helloworld"},
		{"canonicalizes whitespace", NewBert(true), "hello\tworld", "hello world"},
		{"strips accents when lowercasing", NewBert(true), "Café", "cafe"},
		{"pads cjk", NewBert(false), "ab世cd", "ab 世 cd"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.n.Normalize(tt.input)
			if err != nil {
				t.Fatalf("Normalize failed: %v", err)
			}
			if got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestReplace(t *testing.T) {
	got, err := Replace{Pattern: " ", Content: "▁"}.Normalize("a b c")
	if err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}
	if got != "a▁b▁c" {
		t.Errorf("Normalize = %q", got)
	}
}

func TestPrepend(t *testing.T) {
	p := Prepend{Prefix: "▁"}
	got, _ := p.Normalize("hello")
	if got != "▁hello" {
		t.Errorf("Normalize = %q", got)
	}
	got, _ = p.Normalize("▁hello")
	if got != "▁hello" {
		t.Errorf("Normalize should not double the prefix, got %q", got)
	}
	got, _ = p.Normalize("")
	if got != "" {
		t.Errorf("Normalize of empty text = %q, want empty", got)
	}
}

func TestSequence(t *testing.T) {
	s := Sequence{NewBert(false), Lowercase{}}
	got, err := s.Normalize("Hello\tWorld")
	if err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}
	if got != "hello world" {
		t.Errorf("Normalize = %q, want %q", got, "hello world")
	}
}
