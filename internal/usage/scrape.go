package usage

import (
	"regexp"
	"strconv"
	"strings"
)

// Transcript scraping: agent CLIs print token/cost summaries in slightly
// different shapes, so extraction is a set of tolerant line patterns
// rather than a parser. Counts accept thousands separators.

var (
	inputPattern  = regexp.MustCompile(`(?im)^.*?(?:input|prompt)[ _]tokens?\s*[:=]?\s*([\d,]+)\s*$`)
	outputPattern = regexp.MustCompile(`(?im)^.*?(?:output|completion)[ _]tokens?\s*[:=]?\s*([\d,]+)\s*$`)
	cachePattern  = regexp.MustCompile(`(?im)^.*?cache(?:[ _](?:read|creation))?[ _]tokens?\s*[:=]?\s*([\d,]+)\s*$`)
	costPattern   = regexp.MustCompile(`(?im)(?:total[ _])?cost\s*[:=]?\s*\$?([0-9]+(?:\.[0-9]+)?)`)
)

// Scrape extracts token counters and cost from agent transcript text.
// The second return is false when the text contained no recognizable
// counters at all. Repeated matches are summed — a transcript covering
// several turns reports each turn's counts.
func Scrape(text string) (Record, bool) {
	var r Record
	found := false

	if n, ok := sumMatches(inputPattern, text); ok {
		r.InputTokens = n
		found = true
	}
	if n, ok := sumMatches(outputPattern, text); ok {
		r.OutputTokens = n
		found = true
	}
	if n, ok := sumMatches(cachePattern, text); ok {
		r.CacheTokens = n
		found = true
	}

	for _, m := range costPattern.FindAllStringSubmatch(text, -1) {
		if v, err := strconv.ParseFloat(m[1], 64); err == nil {
			r.CostUSD += v
			found = true
		}
	}

	return r, found
}

// sumMatches totals every capture of a count pattern in the text.
func sumMatches(p *regexp.Regexp, text string) (int64, bool) {
	var total int64
	ok := false
	for _, m := range p.FindAllStringSubmatch(text, -1) {
		raw := strings.ReplaceAll(m[1], ",", "")
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			continue
		}
		total += n
		ok = true
	}
	return total, ok
}
