package evaluation

import "strings"

// GeneralUnderstanding is reported when weaknesses cannot be identified.
const GeneralUnderstanding = "general understanding"

// Area is one category of the weakness taxonomy.
type Area struct {
	Name     string
	Keywords []string
}

// Taxonomy is the fixed set of weakness categories offered to the grader.
var Taxonomy = []Area{
	{Name: "definitions and terminology", Keywords: []string{"definition", "terminology", "vocabulary"}},
	{Name: "time complexity understanding", Keywords: []string{"complexity", "big-o", "big o", "performance", "efficiency"}},
	{Name: "implementation details", Keywords: []string{"implementation", "implement", "code"}},
	{Name: "use cases and applications", Keywords: []string{"use case", "application", "when to use"}},
	{Name: "conceptual relationships", Keywords: []string{"relationship", "relation", "connection", "comparison"}},
	{Name: "problem-solving approach", Keywords: []string{"problem-solving", "problem solving", "approach", "strategy"}},
}

// NormalizeArea maps a free-form weakness label onto the taxonomy.
// Labels that match no category are returned trimmed and lower-cased.
func NormalizeArea(label string) string {
	l := strings.ToLower(strings.TrimSpace(label))
	for _, a := range Taxonomy {
		if l == a.Name {
			return a.Name
		}
	}
	for _, a := range Taxonomy {
		for _, kw := range a.Keywords {
			if strings.Contains(l, kw) {
				return a.Name
			}
		}
	}
	return l
}

// parseWeaknesses splits a comma separated reply into at most three
// normalized areas. Entries of three characters or fewer are dropped.
func parseWeaknesses(reply string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, part := range strings.Split(reply, ",") {
		part = strings.Trim(strings.TrimSpace(part), "-*•. ")
		if len(part) <= 3 {
			continue
		}
		area := NormalizeArea(part)
		if seen[area] {
			continue
		}
		seen[area] = true
		out = append(out, area)
		if len(out) == 3 {
			break
		}
	}
	return out
}
