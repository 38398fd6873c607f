package notifier

import (
	"fmt"
	"strings"

	"newsbot/internal/model"
)

// RenderDigest builds the MarkdownV2 digest message for one subscriber.
// Content is shared across the cycle; only the greeting is personal.
func RenderDigest(firstName string, items []model.NewsItem) string {
	var b strings.Builder

	if firstName != "" {
		b.WriteString(fmt.Sprintf("*Your daily news, %s*\n\n", EscapeForMarkdown(firstName)))
	} else {
		b.WriteString("*Your daily news*\n\n")
	}

	for i, item := range items {
		b.WriteString(fmt.Sprintf("*%d\\. %s*\n", i+1, EscapeForMarkdown(item.Title)))
		b.WriteString(fmt.Sprintf("_%s_\n", EscapeForMarkdown(item.SourceName)))

		if item.Summary != "" {
			b.WriteString(EscapeForMarkdown(item.Summary))
			b.WriteString("\n")
		}

		b.WriteString(fmt.Sprintf("%s\n\n", EscapeForMarkdown(item.Link)))
	}

	return strings.TrimRight(b.String(), "\n")
}

var (
	replacer = strings.NewReplacer(
		"-",
		"\\-",
		"_",
		"\\_",
		"*",
		"\\*",
		"[",
		"\\[",
		"]",
		"\\]",
		"(",
		"\\(",
		")",
		"\\)",
		"~",
		"\\~",
		"`",
		"\\`",
		">",
		"\\>",
		"#",
		"\\#",
		"+",
		"\\+",
		"=",
		"\\=",
		"|",
		"\\|",
		"{",
		"\\{",
		"}",
		"\\}",
		".",
		"\\.",
		"!",
		"\\!",
	)
)

func EscapeForMarkdown(src string) string {
	return replacer.Replace(src)
}
