// Package ingestion turns uploaded candidate documents into plain text.
package ingestion

import "strings"

// glyphs rewrites characters PDF and DOCX exports leave behind: ligatures,
// non-breaking and zero-width spaces, soft hyphens.
var glyphs = strings.NewReplacer(
	"\r\n", "\n",
	"\r", "\n",
	"\u00a0", " ",
	"\u200b", "",
	"\ufeff", "",
	"\u00ad", "",
	"\ufb00", "ff",
	"\ufb01", "fi",
	"\ufb02", "fl",
	"\ufb03", "ffi",
	"\ufb04", "ffl",
)

// bulletMarkers are list markers normalized to "- ".
var bulletMarkers = []string{"•", "·", "▪", "●", "◦", "‣", "∙", "–"}

// CleanText normalizes extracted document text: spaces inside a line collapse,
// leading indentation and markdown headings survive, bullet glyphs become "- ",
// and runs of blank lines shrink to one.
func CleanText(content string) string {
	content = glyphs.Replace(content)

	var out []string
	blank := false
	for _, line := range strings.Split(content, "\n") {
		line = cleanLine(line)
		if line == "" {
			if !blank && len(out) > 0 {
				out = append(out, "")
			}
			blank = true
			continue
		}
		blank = false
		out = append(out, line)
	}
	if n := len(out); n > 0 && out[n-1] == "" {
		out = out[:n-1]
	}
	return strings.Join(out, "\n")
}

func cleanLine(line string) string {
	body := strings.TrimLeft(line, " \t")
	if strings.TrimSpace(body) == "" {
		return ""
	}
	indent := strings.Repeat(" ", len(strings.ReplaceAll(line[:len(line)-len(body)], "\t", "    ")))

	body = strings.Join(strings.Fields(body), " ")
	if strings.HasPrefix(body, "#") {
		return body
	}
	for _, marker := range bulletMarkers {
		if rest, ok := strings.CutPrefix(body, marker+" "); ok {
			body = "- " + rest
			break
		}
	}
	return indent + body
}
