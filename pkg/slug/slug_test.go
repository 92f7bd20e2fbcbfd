package slug_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/inkwell/pkg/slug"
)

func TestMake(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		input    string
		opts     []slug.Option
		expected string
	}{
		{name: "simple title", input: "Hello World", expected: "hello-world"},
		{name: "punctuation", input: "Hello, World!", expected: "hello-world"},
		{name: "surrounding whitespace", input: "  Trim Me  ", expected: "trim-me"},
		{name: "symbols between digits", input: "Price: $99.99", expected: "price-99-99"},
		{name: "empty", input: "", expected: ""},
		{name: "symbols only", input: "!@#$%^&*()", expected: ""},
		{name: "dash runs collapse", input: "Too---Many---Dashes", expected: "too-many-dashes"},
		{name: "french", input: "Château façade élève", expected: "chateau-facade-eleve"},
		{name: "german", input: "Über Größe straße", expected: "uber-grosse-strasse"},
		{name: "polish", input: "Zażółć gęślą jaźń", expected: "zazolc-gesla-jazn"},
		{name: "apostrophe", input: "Côte d'Ivoire 2024", expected: "cote-d-ivoire-2024"},
		{name: "emoji", input: "Hello 😀 World 🌍", expected: "hello-world"},
		{name: "cyrillic dropped", input: "Go Привет 2025", expected: "go-2025"},
		{name: "control whitespace", input: "Line1\nLine2\tTabbed", expected: "line1-line2-tabbed"},
		{name: "keep case", input: "Hello World", opts: []slug.Option{slug.Lowercase(false)}, expected: "Hello-World"},
		{name: "underscore separator", input: "Product Name", opts: []slug.Option{slug.Separator("_")}, expected: "product_name"},
		{name: "no separator", input: "No Separator", opts: []slug.Option{slug.Separator("")}, expected: "noseparator"},
		{name: "long separator", input: "Multi Sep Test", opts: []slug.Option{slug.Separator("--")}, expected: "multi--sep--test"},
		{name: "strip chars", input: "Price: $100", opts: []slug.Option{slug.StripChars("$:")}, expected: "price-100"},
		{
			name:     "custom replacements",
			input:    "Fish & Chips @ Home",
			opts:     []slug.Option{slug.CustomReplace(map[string]string{"&": "and", "@": "at"})},
			expected: "fish-and-chips-at-home",
		},
		{
			name:     "truncation drops trailing separator",
			input:    "This is a very long title that should be truncated",
			opts:     []slug.Option{slug.MaxLength(20)},
			expected: "this-is-a-very-long",
		},
		{name: "zero max length", input: "Should not truncate", opts: []slug.Option{slug.MaxLength(0)}, expected: "should-not-truncate"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expected, slug.Make(tt.input, tt.opts...))
		})
	}
}

func TestMakeFoldsDiacritics(t *testing.T) {
	t.Parallel()

	for in, want := range map[string]string{
		"à": "a", "Å": "a", "é": "e", "Ï": "i", "ö": "o", "Ø": "o",
		"ü": "u", "Ñ": "n", "ç": "c", "ß": "ss", "ẞ": "ss", "Æ": "a", "œ": "o", "ł": "l",
	} {
		assert.Equal(t, want, slug.Make(in), "input %q", in)
	}
}

func TestMakeWithSuffix(t *testing.T) {
	t.Parallel()

	t.Run("appends lowercase suffix", func(t *testing.T) {
		t.Parallel()
		result := slug.Make("Hello World", slug.WithSuffix(6))
		assert.Regexp(t, `^hello-world-[a-z0-9]{6}$`, result)
	})

	t.Run("mixed case suffix when lowercase disabled", func(t *testing.T) {
		t.Parallel()
		result := slug.Make("Hello", slug.WithSuffix(8), slug.Lowercase(false))
		assert.Regexp(t, `^Hello-[a-zA-Z0-9]{8}$`, result)
	})

	t.Run("empty base yields bare suffix", func(t *testing.T) {
		t.Parallel()
		assert.Regexp(t, `^[a-z0-9]{5}$`, slug.Make("", slug.WithSuffix(5)))
	})

	t.Run("base shrinks to keep suffix within max length", func(t *testing.T) {
		t.Parallel()
		result := slug.Make("Very Long Title Here", slug.WithSuffix(6), slug.MaxLength(20))
		assert.Len(t, result, 20)
		assert.Regexp(t, `^very-long-tit-[a-z0-9]{6}$`, result)
	})

	t.Run("suffix alone when it does not fit", func(t *testing.T) {
		t.Parallel()
		assert.Regexp(t, `^[a-z0-9]{8}$`, slug.Make("Test", slug.WithSuffix(10), slug.MaxLength(8)))
	})

	t.Run("suffix differs between calls", func(t *testing.T) {
		t.Parallel()
		seen := make(map[string]struct{})
		for range 50 {
			seen[slug.Make("same", slug.WithSuffix(6))] = struct{}{}
		}
		assert.Greater(t, len(seen), 45)
	})
}

func TestReservedSlugs(t *testing.T) {
	t.Parallel()

	reserved := slug.ReservedSlugs("admin", "api", "mine")

	t.Run("reserved gets suffix", func(t *testing.T) {
		t.Parallel()
		assert.Regexp(t, `^admin-[a-z0-9]{6}$`, slug.Make("Admin", reserved))
	})

	t.Run("match is case-insensitive", func(t *testing.T) {
		t.Parallel()
		assert.Regexp(t, `^API-[a-zA-Z0-9]{6}$`, slug.Make("API", reserved, slug.Lowercase(false)))
	})

	t.Run("other slugs pass through", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, "administrator", slug.Make("Administrator", reserved))
	})

	t.Run("suffix trimmed to max length", func(t *testing.T) {
		t.Parallel()
		result := slug.Make("admin", reserved, slug.MaxLength(10))
		assert.Regexp(t, `^admin-[a-z0-9]{4}$`, result)
	})
}

func TestMinLength(t *testing.T) {
	t.Parallel()

	t.Run("short slug padded", func(t *testing.T) {
		t.Parallel()
		assert.Regexp(t, `^go-[a-z0-9]{6}$`, slug.Make("Go", slug.MinLength(5)))
	})

	t.Run("long enough slug unchanged", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, "hello", slug.Make("Hello", slug.MinLength(5)))
	})

	t.Run("empty input becomes suffix", func(t *testing.T) {
		t.Parallel()
		assert.Regexp(t, `^[a-z0-9]{6}$`, slug.Make("", slug.MinLength(4)))
	})

	t.Run("max length wins", func(t *testing.T) {
		t.Parallel()
		result := slug.Make("bird", slug.MinLength(20), slug.MaxLength(10))
		assert.Len(t, result, 10)
		assert.True(t, strings.HasPrefix(result, "bird-"))
	})

	t.Run("no separator", func(t *testing.T) {
		t.Parallel()
		require.Regexp(t, `^go[a-z0-9]{6}$`, slug.Make("go", slug.MinLength(6), slug.Separator("")))
	})
}
