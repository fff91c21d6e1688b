package markdown

import "strings"

// extractPermissiveLinks scans for link destinations the strict CommonMark
// pass rejects, such as destinations containing unescaped spaces. Only those
// are returned; everything valid is already covered by the AST walk.
func extractPermissiveLinks(body []byte) []Link {
	inFence := false
	fence := ""

	out := make([]Link, 0)
	for _, line := range strings.Split(string(body), "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "```") || strings.HasPrefix(trimmed, "~~~") {
			marker := trimmed[:3]
			switch {
			case !inFence:
				inFence, fence = true, marker
			case fence == marker:
				inFence, fence = false, ""
			}
			continue
		}
		if inFence || strings.HasPrefix(line, "    ") || strings.HasPrefix(line, "\t") {
			continue
		}

		clean := stripInlineCodeSpans(line)
		out = append(out, permissiveLineLinks(clean)...)
		if def, ok := permissiveReferenceDefinition(clean); ok {
			out = append(out, def)
		}
	}
	return out
}

// permissiveLineLinks extracts [text](target) and ![alt](target) occurrences
// whose target contains whitespace.
func permissiveLineLinks(line string) []Link {
	links := make([]Link, 0)
	for i := 0; i+1 < len(line); i++ {
		if line[i] != ']' || line[i+1] != '(' {
			continue
		}
		openBracket := strings.LastIndex(line[:i], "[")
		if openBracket == -1 {
			continue
		}
		end := strings.Index(line[i+2:], ")")
		if end == -1 {
			continue
		}
		target := line[i+2 : i+2+end]
		if !strings.ContainsAny(target, " \t") {
			continue
		}
		kind := LinkKindInline
		if openBracket > 0 && line[openBracket-1] == '!' {
			kind = LinkKindImage
		}
		links = append(links, Link{Kind: kind, Destination: target})
	}
	return links
}

// permissiveReferenceDefinition extracts a "[label]: target" definition whose
// target contains whitespace. Footnote definitions are not links.
func permissiveReferenceDefinition(line string) (Link, bool) {
	trimmed := strings.TrimSpace(line)
	if !strings.HasPrefix(trimmed, "[") || strings.HasPrefix(trimmed, "[^") {
		return Link{}, false
	}
	_, after, ok := strings.Cut(trimmed, "]:")
	if !ok {
		return Link{}, false
	}

	target := strings.TrimSpace(after)
	for _, quote := range []string{" \"", " '"} {
		if before, _, found := strings.Cut(target, quote); found {
			target = before
		}
	}
	target = strings.TrimSpace(target)
	if target == "" || !strings.ContainsAny(target, " \t") {
		return Link{}, false
	}
	return Link{Kind: LinkKindReferenceDefinition, Destination: target}, true
}

// stripInlineCodeSpans removes `code` spans so their contents are not
// mistaken for links. Unclosed spans keep their backticks.
func stripInlineCodeSpans(s string) string {
	if !strings.Contains(s, "`") {
		return s
	}

	var out strings.Builder
	out.Grow(len(s))
	for i := 0; i < len(s); {
		if s[i] != '`' {
			out.WriteByte(s[i])
			i++
			continue
		}

		run := 1
		for i+run < len(s) && s[i+run] == '`' {
			run++
		}
		marker := strings.Repeat("`", run)
		closeRel := strings.Index(s[i+run:], marker)
		if closeRel == -1 {
			out.WriteString(marker)
			i += run
			continue
		}
		i = i + run + closeRel + run
	}
	return out.String()
}
