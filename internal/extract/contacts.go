// Package extract holds the pure text heuristics of the crawlers: contact extraction,
// keyword relevance and page parsing.
package extract

import "regexp"

// Pragmatic patterns, not validators. The phone pattern also matches other long digit runs.
var (
	emailPattern = regexp.MustCompile(`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`)
	phonePattern = regexp.MustCompile(`\+?\d{1,3}\s?\d{6,14}`)
)

// Contacts returns deduplicated emails and phone numbers in first-seen order, each capped
// at limit. A limit <= 0 disables the cap.
func Contacts(text string, limit int) (emails, phones []string) {
	return Emails(text, limit), Phones(text, limit)
}

func Emails(text string, limit int) []string {
	return uniqueMatches(emailPattern, text, limit)
}

func Phones(text string, limit int) []string {
	return uniqueMatches(phonePattern, text, limit)
}

func uniqueMatches(re *regexp.Regexp, text string, limit int) []string {
	var out []string
	seen := make(map[string]struct{})
	for _, m := range re.FindAllString(text, -1) {
		if _, ok := seen[m]; ok {
			continue
		}
		seen[m] = struct{}{}
		out = append(out, m)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out
}
