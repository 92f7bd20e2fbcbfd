package slug

import (
	"crypto/rand"
	"slices"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const (
	defaultSeparator = "-"

	// defaultSuffixLength is used for reserved slugs and MinLength padding.
	defaultSuffixLength = 6

	lowerAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"
	mixedAlphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

// foldings covers Latin letters that have no canonical decomposition,
// so NFD + mark removal leaves them untouched.
var foldings = map[rune]string{
	'ß': "ss", 'ẞ': "SS",
	'æ': "a", 'Æ': "A",
	'œ': "o", 'Œ': "O",
	'ø': "o", 'Ø': "O",
	'ł': "l", 'Ł': "L",
	'đ': "d", 'Đ': "D",
	'ı': "i",
}

type config struct {
	replacements map[string]string
	reserved     map[string]struct{}
	separator    string
	stripChars   string
	maxLength    int
	minLength    int
	suffixLength int
	lowercase    bool
}

// Option configures slug generation.
type Option func(*config)

// MaxLength limits the slug length in runes. Zero means unlimited.
func MaxLength(n int) Option {
	return func(c *config) {
		c.maxLength = max(n, 0)
	}
}

// MinLength pads slugs shorter than n with a random 6-character suffix.
func MinLength(n int) Option {
	return func(c *config) {
		c.minLength = max(n, 0)
	}
}

// Separator sets the string placed between words. Default: "-".
func Separator(sep string) Option {
	return func(c *config) {
		c.separator = sep
	}
}

// Lowercase controls case conversion. Default: true.
func Lowercase(enabled bool) Option {
	return func(c *config) {
		c.lowercase = enabled
	}
}

// StripChars removes every character in chars before slugification.
func StripChars(chars string) Option {
	return func(c *config) {
		c.stripChars = chars
	}
}

// CustomReplace applies string replacements before slugification.
// Longer keys are replaced first.
func CustomReplace(replacements map[string]string) Option {
	return func(c *config) {
		c.replacements = replacements
	}
}

// WithSuffix appends a random alphanumeric suffix of length n.
func WithSuffix(n int) Option {
	return func(c *config) {
		c.suffixLength = max(n, 0)
	}
}

// ReservedSlugs appends a random suffix when the result matches one of
// the given slugs (case-insensitive).
func ReservedSlugs(slugs ...string) Option {
	return func(c *config) {
		if c.reserved == nil {
			c.reserved = make(map[string]struct{}, len(slugs))
		}
		for _, s := range slugs {
			c.reserved[strings.ToLower(s)] = struct{}{}
		}
	}
}

func newConfig(opts []Option) *config {
	cfg := &config{
		separator: defaultSeparator,
		lowercase: true,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// Make converts s into a URL-safe slug.
func Make(s string, opts ...Option) string {
	cfg := newConfig(opts)

	s = applyReplacements(s, cfg.replacements)
	if cfg.stripChars != "" {
		s = strings.Map(func(r rune) rune {
			if strings.ContainsRune(cfg.stripChars, r) {
				return -1
			}
			return r
		}, s)
	}

	result := build(fold(s), cfg.separator, cfg.lowercase)

	suffixLen := cfg.suffixLength
	if _, ok := cfg.reserved[strings.ToLower(result)]; ok && result != "" && suffixLen == 0 {
		suffixLen = defaultSuffixLength
	}

	if cfg.maxLength > 0 && runeLen(result) > cfg.maxLength {
		result = trimSeparator(truncate(result, cfg.maxLength), cfg.separator)
	}

	if suffixLen > 0 {
		result = appendSuffix(result, generateSuffix(suffixLen, cfg.lowercase), cfg.separator, cfg.maxLength)
	}

	if cfg.minLength > 0 && runeLen(result) < cfg.minLength {
		result = appendSuffix(result, generateSuffix(defaultSuffixLength, cfg.lowercase), cfg.separator, cfg.maxLength)
	}

	return result
}

// fold strips diacritics so "Café" becomes "Cafe".
func fold(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if f, ok := foldings[r]; ok {
			b.WriteString(f)
			continue
		}
		b.WriteRune(r)
	}

	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, b.String())
	if err != nil {
		return b.String()
	}
	return out
}

// build keeps ASCII letters and digits and collapses every other run of
// characters into a single separator.
func build(s, sep string, lowercase bool) string {
	var b strings.Builder
	b.Grow(len(s))

	pending := false
	for _, r := range s {
		if !isASCIIAlnum(r) {
			pending = b.Len() > 0
			continue
		}
		if pending {
			b.WriteString(sep)
			pending = false
		}
		if lowercase && r >= 'A' && r <= 'Z' {
			r += 'a' - 'A'
		}
		b.WriteRune(r)
	}

	return b.String()
}

func applyReplacements(s string, replacements map[string]string) string {
	if len(replacements) == 0 {
		return s
	}

	keys := make([]string, 0, len(replacements))
	for k := range replacements {
		if k != "" {
			keys = append(keys, k)
		}
	}
	slices.SortFunc(keys, func(a, b string) int {
		if len(a) != len(b) {
			return len(b) - len(a)
		}
		return strings.Compare(a, b)
	})

	for _, k := range keys {
		s = strings.ReplaceAll(s, k, " "+replacements[k]+" ")
	}
	return s
}

// appendSuffix joins base and suffix while respecting maxLength.
// When both cannot fit, the suffix wins over the base.
func appendSuffix(base, suffix, sep string, maxLength int) string {
	if base == "" {
		return truncate(suffix, maxLength)
	}

	baseLen, sepLen, suffixLen := runeLen(base), runeLen(sep), runeLen(suffix)
	if maxLength <= 0 || baseLen+sepLen+suffixLen <= maxLength {
		return base + sep + suffix
	}
	if suffixLen >= maxLength {
		return truncate(suffix, maxLength)
	}
	if baseLen+sepLen < maxLength {
		return base + sep + truncate(suffix, maxLength-baseLen-sepLen)
	}

	avail := maxLength - sepLen - suffixLen
	if avail < 1 {
		return truncate(suffix, maxLength)
	}
	trimmed := trimSeparator(truncate(base, avail), sep)
	if trimmed == "" {
		return truncate(suffix, maxLength)
	}
	return trimmed + sep + suffix
}

// generateSuffix returns n random characters from the slug alphabet.
func generateSuffix(n int, lowercase bool) string {
	if n <= 0 {
		return ""
	}

	alphabet := lowerAlphabet
	if !lowercase {
		alphabet = mixedAlphabet
	}

	buf := make([]byte, n)
	_, _ = rand.Read(buf) // never fails since Go 1.24

	out := make([]byte, n)
	for i, b := range buf {
		out[i] = alphabet[int(b)%len(alphabet)]
	}
	return string(out)
}

func trimSeparator(s, sep string) string {
	if sep == "" {
		return s
	}
	for strings.HasSuffix(s, sep) {
		s = strings.TrimSuffix(s, sep)
	}
	for strings.HasPrefix(s, sep) {
		s = strings.TrimPrefix(s, sep)
	}
	return s
}

func truncate(s string, n int) string {
	if n <= 0 {
		return s
	}
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

func runeLen(s string) int {
	return len([]rune(s))
}

func isASCIIAlnum(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')
}
