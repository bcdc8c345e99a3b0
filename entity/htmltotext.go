package entity

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// HTMLToText derives a plain-text body from an HTML body when the EDB row
// carries only PR_HTML, walking the token stream the way
// inbucket/pkg/webui/sanitize's tokenizer-based scrubber does, rather than
// regex-stripping tags.
func HTMLToText(htmlBody string) string {
	tokenizer := html.NewTokenizer(strings.NewReader(htmlBody))
	var sb strings.Builder
	skipDepth := 0

	for {
		tt := tokenizer.Next()
		switch tt {
		case html.ErrorToken:
			return strings.TrimSpace(collapseBlankLines(sb.String()))

		case html.StartTagToken, html.SelfClosingTagToken:
			tok := tokenizer.Token()
			switch tok.DataAtom {
			case atom.Script, atom.Style:
				if tt == html.StartTagToken {
					skipDepth++
				}
			case atom.Br:
				sb.WriteByte('\n')
			case atom.P, atom.Div, atom.Tr, atom.Li:
				sb.WriteByte('\n')
			}

		case html.EndTagToken:
			tok := tokenizer.Token()
			switch tok.DataAtom {
			case atom.Script, atom.Style:
				if skipDepth > 0 {
					skipDepth--
				}
			case atom.P, atom.Div, atom.Tr:
				sb.WriteByte('\n')
			}

		case html.TextToken:
			if skipDepth == 0 {
				sb.Write(tokenizer.Text())
			}
		}
	}
}

func collapseBlankLines(s string) string {
	lines := strings.Split(s, "\n")
	var out []string
	blank := false
	for _, l := range lines {
		trimmed := strings.TrimSpace(l)
		if trimmed == "" {
			if blank {
				continue
			}
			blank = true
		} else {
			blank = false
		}
		out = append(out, trimmed)
	}
	return strings.Join(out, "\n")
}
