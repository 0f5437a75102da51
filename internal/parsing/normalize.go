// Package parsing normalizes the free-form lists employers attach to job postings.
package parsing

import "strings"

// skillAliases maps common spellings to the canonical skill name.
var skillAliases = map[string]string{
	"golang":     "Go",
	"go lang":    "Go",
	"javascript": "JavaScript",
	"js":         "JavaScript",
	"typescript": "TypeScript",
	"ts":         "TypeScript",
	"aws":        "AWS",
	"k8s":        "Kubernetes",
	"kubernetes": "Kubernetes",
	"postgres":   "PostgreSQL",
	"postgresql": "PostgreSQL",
	"react.js":   "React",
	"reactjs":    "React",
	"vue.js":     "Vue",
	"vuejs":      "Vue",
	"node.js":    "Node.js",
	"nodejs":     "Node.js",
}

// NormalizeSkillName returns the canonical form of a skill. Known aliases map to
// their canonical name, single lowercase words are capitalized, anything with
// mixed case is kept as typed.
func NormalizeSkillName(name string) string {
	name = strings.Join(strings.Fields(name), " ")
	if name == "" {
		return ""
	}
	lower := strings.ToLower(name)
	if canonical, ok := skillAliases[lower]; ok {
		return canonical
	}
	if strings.Contains(name, " ") {
		return name
	}
	switch name {
	case lower:
		return strings.ToUpper(name[:1]) + name[1:]
	case strings.ToUpper(name):
		// short all-caps words are acronyms (SQL, AWS)
		if len(name) <= 4 {
			return name
		}
		return name[:1] + strings.ToLower(name[1:])
	}
	return name
}

// NormalizeSkills canonicalizes skill names and drops empties and duplicates,
// keeping first-seen order.
func NormalizeSkills(skills []string) []string {
	return dedupe(skills, NormalizeSkillName)
}

// NormalizeRequirements trims requirement lines, strips bullet markers and drops
// empties and case-insensitive duplicates.
func NormalizeRequirements(reqs []string) []string {
	return dedupe(reqs, func(s string) string {
		s = strings.TrimSpace(s)
		s = strings.TrimLeft(s, "-*•· \t")
		return strings.Join(strings.Fields(s), " ")
	})
}

func dedupe(values []string, normalize func(string) string) []string {
	out := make([]string, 0, len(values))
	seen := make(map[string]struct{}, len(values))
	for _, v := range values {
		n := normalize(v)
		if n == "" {
			continue
		}
		key := strings.ToLower(n)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, n)
	}
	return out
}
