// Package names normalizes scraped human names into comparison keys and
// reconciles lists of names (mutual connections) against stored lists.
package names

import (
	"regexp"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// Suffixes is the fixed list of credential and certification tokens stripped
// from names before comparison.
var Suffixes = []string{
	// degrees
	"mba", "phd", "md", "jd", "cpa", "pmp", "cfa", "cfp", "esq", "pe", "rn",
	"bs", "ba", "ms", "ma", "msc", "llm", "edd", "dba", "dmin", "psyd",
	"pharmd", "dnp", "dpt", "do", "dds", "dmd", "od", "dc", "dpm", "drph",
	"mph", "mha", "mpa", "msw", "lcsw", "lpc", "lmft",
	// certifications
	"shrm-cp", "shrm-scp", "sphr", "phr", "cissp", "pmi-acp", "csm",
	"six sigma", "ceh", "ccna", "ccnp", "aws", "gcp", "azure",
}

// Word boundaries are checked in code rather than with \b, which only knows
// ASCII word characters and would split names such as "garcía".
var (
	suffixPattern     = buildSuffixPattern(Suffixes)
	initialPattern    = regexp.MustCompile(`[a-z](?:\.\s*|\s+)`)
	whitespacePattern = regexp.MustCompile(`\s+`)
)

func buildSuffixPattern(suffixes []string) *regexp.Regexp {
	sorted := append([]string(nil), suffixes...)
	// Longest first so "msc" wins over "ms" at the same position.
	sort.SliceStable(sorted, func(i, j int) bool { return len(sorted[i]) > len(sorted[j]) })

	quoted := make([]string, len(sorted))
	for i, s := range sorted {
		quoted[i] = strings.ReplaceAll(regexp.QuoteMeta(s), " ", `\s+`)
	}
	return regexp.MustCompile(`(?i),?\s*(?:` + strings.Join(quoted, "|") + `)`)
}

// Normalize reduces a raw name to its comparison key: NFC-composed,
// lowercased, credential suffixes and single-letter initials removed,
// periods dropped and whitespace collapsed. Empty or whitespace-only input
// yields "".
//
// The passes repeat until the key stops changing, so
// Normalize(Normalize(s)) == Normalize(s) for every s.
func Normalize(raw string) string {
	key := normalizeOnce(raw)
	for {
		next := normalizeOnce(key)
		if next == key {
			return key
		}
		key = next
	}
}

func normalizeOnce(s string) string {
	s = norm.NFC.String(s)
	s = strings.ToLower(s)
	s = stripSuffixes(s)
	s = stripInitials(s)
	s = strings.ReplaceAll(s, ".", "")
	s = whitespacePattern.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

func stripSuffixes(s string) string {
	return removeMatches(s, suffixPattern, func(start, end int) bool {
		token := strings.TrimLeftFunc(s[start:end], func(r rune) bool {
			return r == ',' || unicode.IsSpace(r)
		})
		return boundaryBefore(s, end-len(token)) && boundaryAfter(s, end)
	})
}

func stripInitials(s string) string {
	return removeMatches(s, initialPattern, func(start, _ int) bool {
		return boundaryBefore(s, start)
	})
}

// removeMatches deletes every match of re for which remove reports true.
func removeMatches(s string, re *regexp.Regexp, remove func(start, end int) bool) string {
	locs := re.FindAllStringIndex(s, -1)
	if len(locs) == 0 {
		return s
	}

	var b strings.Builder
	last := 0
	for _, loc := range locs {
		if !remove(loc[0], loc[1]) {
			continue
		}
		b.WriteString(s[last:loc[0]])
		last = loc[1]
	}
	b.WriteString(s[last:])
	return b.String()
}

func boundaryBefore(s string, i int) bool {
	if i <= 0 {
		return true
	}
	r, _ := utf8.DecodeLastRuneInString(s[:i])
	return !isWordRune(r)
}

func boundaryAfter(s string, i int) bool {
	if i >= len(s) {
		return true
	}
	r, _ := utf8.DecodeRuneInString(s[i:])
	return !isWordRune(r)
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsMark(r)
}

// NamesMatch reports whether two names normalize to the same key.
func NamesMatch(a, b string) bool {
	return Normalize(a) == Normalize(b)
}

// NameExistsIn reports whether any entry of list matches name.
func NameExistsIn(name string, list []string) bool {
	key := Normalize(name)
	for _, candidate := range list {
		if Normalize(candidate) == key {
			return true
		}
	}
	return false
}
