package domsnap

import (
	"regexp"
	"sort"
	"strings"
)

// SearchOptions controls searchSnapshotText (spec.md §6.3).
type SearchOptions struct {
	// CaseSensitive disables the default lower-casing of haystack and
	// query before matching.
	CaseSensitive bool
	// UseGlob forces glob matching even when no term contains a glob
	// metacharacter.
	UseGlob bool
	// ContextLevels is how many lines of context to include on either
	// side of each match (merged when windows overlap).
	ContextLevels int
}

// SearchResult is the outcome of searchSnapshotText.
type SearchResult struct {
	TotalMatches int
	MatchedLines []int    // sorted, de-duplicated 0-based line indices
	MatchedText  []string // text of each matched line, same order as MatchedLines
	ContextLines []int    // sorted, de-duplicated union of matched + context lines
}

// SearchSnapshotText implements spec.md §4.4's search engine over an
// already-rendered text blob (as produced by Format). It never errors: an
// empty query yields an empty result and an invalid glob term falls back
// to a literal substring match for that term.
func SearchSnapshotText(text, query string, opts SearchOptions) SearchResult {
	lines := splitLines(text)

	terms := splitTerms(query)
	if len(terms) == 0 {
		return SearchResult{}
	}

	useGlob := opts.UseGlob
	if !useGlob {
		for _, t := range terms {
			if containsGlobMeta(t) {
				useGlob = true
				break
			}
		}
	}

	matchers := make([]func(line string) bool, 0, len(terms))
	for _, term := range terms {
		term := term
		if !opts.CaseSensitive {
			term = strings.ToLower(term)
		}
		if useGlob {
			re, err := globToRegexp(term)
			if err != nil {
				matchers = append(matchers, literalMatcher(term))
				continue
			}
			matchers = append(matchers, func(line string) bool {
				return re.MatchString(line)
			})
			continue
		}
		matchers = append(matchers, literalMatcher(term))
	}

	var matched []int
	for i, line := range lines {
		haystack := line
		if !opts.CaseSensitive {
			haystack = strings.ToLower(haystack)
		}
		for _, m := range matchers {
			if m(haystack) {
				matched = append(matched, i)
				break
			}
		}
	}
	matched = dedupSortedInts(matched)

	matchedText := make([]string, len(matched))
	for i, idx := range matched {
		matchedText[i] = lines[idx]
	}

	contextSet := expandContext(matched, opts.ContextLevels, len(lines))

	return SearchResult{
		TotalMatches: len(matched),
		MatchedLines: matched,
		MatchedText:  matchedText,
		ContextLines: contextSet,
	}
}

func literalMatcher(term string) func(string) bool {
	return func(line string) bool {
		return strings.Contains(line, term)
	}
}

// SearchAndFormat implements spec.md §6.3's combined build+render+search
// convenience call.
func SearchAndFormat(snap *Snapshot, query string, contextLevels int, opts SearchOptions) *string {
	if snap == nil {
		return nil
	}

	ts := BuildText(snap, nil)
	text := Format(ts)

	opts.ContextLevels = contextLevels
	result := SearchSnapshotText(text, query, opts)

	if result.TotalMatches == 0 {
		out := "No matches found"
		return &out
	}

	lines := splitLines(text)
	matchedSet := make(map[int]bool, len(result.MatchedLines))
	for _, idx := range result.MatchedLines {
		matchedSet[idx] = true
	}

	var b strings.Builder
	for i, idx := range result.ContextLines {
		if matchedSet[idx] {
			b.WriteString("✓ ")
		}
		b.WriteString(lines[idx])
		if i != len(result.ContextLines)-1 {
			b.WriteByte('\n')
		}
	}
	out := b.String()
	return &out
}

func splitLines(text string) []string {
	if text == "" {
		return nil
	}
	trimmed := strings.TrimSuffix(text, "\n")
	return strings.Split(trimmed, "\n")
}

// splitTerms implements the "pipe separates alternatives, each trimmed;
// empty terms ignored" query syntax.
func splitTerms(query string) []string {
	var terms []string
	for _, part := range strings.Split(query, "|") {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			terms = append(terms, trimmed)
		}
	}
	return terms
}

func containsGlobMeta(term string) bool {
	return strings.ContainsAny(term, "*?{}")
}

// globToRegexp translates one glob term (possibly containing brace
// alternation) into a regexp anchored to the full line.
func globToRegexp(term string) (*regexp.Regexp, error) {
	var b strings.Builder
	b.WriteByte('^')
	runes := []rune(term)
	for i := 0; i < len(runes); i++ {
		switch runes[i] {
		case '*':
			b.WriteString(".*")
		case '?':
			b.WriteString(".")
		case '{':
			close := indexRune(runes, i, '}')
			if close < 0 {
				b.WriteString(regexp.QuoteMeta(string(runes[i])))
				continue
			}
			alts := strings.Split(string(runes[i+1:close]), ",")
			b.WriteByte('(')
			for j, alt := range alts {
				if j > 0 {
					b.WriteByte('|')
				}
				b.WriteString(regexp.QuoteMeta(alt))
			}
			b.WriteByte(')')
			i = close
		default:
			b.WriteString(regexp.QuoteMeta(string(runes[i])))
		}
	}
	b.WriteByte('$')
	return regexp.Compile(b.String())
}

func indexRune(runes []rune, from int, target rune) int {
	for i := from; i < len(runes); i++ {
		if runes[i] == target {
			return i
		}
	}
	return -1
}

func dedupSortedInts(xs []int) []int {
	if len(xs) == 0 {
		return nil
	}
	sort.Ints(xs)
	out := xs[:1]
	for _, x := range xs[1:] {
		if x != out[len(out)-1] {
			out = append(out, x)
		}
	}
	return out
}

// expandContext builds the sorted, de-duplicated union of every matched
// line with ±levels lines of context, merging overlapping windows.
func expandContext(matched []int, levels, totalLines int) []int {
	if len(matched) == 0 {
		return nil
	}
	set := make(map[int]bool)
	for _, idx := range matched {
		lo := idx - levels
		if lo < 0 {
			lo = 0
		}
		hi := idx + levels
		if hi > totalLines-1 {
			hi = totalLines - 1
		}
		for i := lo; i <= hi; i++ {
			set[i] = true
		}
	}
	out := make([]int, 0, len(set))
	for idx := range set {
		out = append(out, idx)
	}
	sort.Ints(out)
	return out
}
