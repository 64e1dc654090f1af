// Package format holds Telegram text helpers.
package format

import (
	"fmt"
	"strings"
)

var mdReplacer = strings.NewReplacer(
	`_`, `\_`,
	`*`, `\*`,
	"`", "\\`",
	`[`, `\[`,
)

// Escape escapes text for the legacy Markdown mode used by the console.
// Callers pass raw text only; escaping twice shows the backslashes.
// Escaped text must stay outside entities: legacy Markdown ignores escapes inside them.
func Escape(text string) string {
	return mdReplacer.Replace(text)
}

// Bold wraps raw text in bold markers; asterisks in text are dropped
func Bold(text string) string {
	return "*" + strings.ReplaceAll(text, "*", "") + "*"
}

// Code wraps text in an inline code span; backticks are dropped
func Code(text string) string {
	return "`" + strings.ReplaceAll(text, "`", "") + "`"
}

// CheckMarkdown scans text the way the Bot API parses legacy Markdown and
// reports the first entity that is never closed.
func CheckMarkdown(text string) error {
	unclosed := func(at int) error {
		return fmt.Errorf("can't find end of the entity starting at byte offset %d", at)
	}

	for i := 0; i < len(text); i++ {
		switch c := text[i]; c {
		case '\\':
			if i+1 < len(text) && strings.IndexByte("_*`[", text[i+1]) >= 0 {
				i++
			}
		case '_', '*':
			end := strings.IndexByte(text[i+1:], c)
			if end < 0 {
				return unclosed(i)
			}
			i += end + 1
		case '`':
			if strings.HasPrefix(text[i:], "```") {
				end := strings.Index(text[i+3:], "```")
				if end < 0 {
					return unclosed(i)
				}
				i += end + 5
				continue
			}
			end := strings.IndexByte(text[i+1:], '`')
			if end < 0 {
				return unclosed(i)
			}
			i += end + 1
		case '[':
			end := strings.IndexByte(text[i+1:], ']')
			if end < 0 {
				return unclosed(i)
			}
			i += end + 1
			if i+1 < len(text) && text[i+1] == '(' {
				end = strings.IndexByte(text[i+2:], ')')
				if end < 0 {
					return unclosed(i + 1)
				}
				i += end + 2
			}
		}
	}
	return nil
}
