package tg

import (
	"html"
	"strconv"
	"strings"
)

var (
	markdownV2Escaper = strings.NewReplacer(
		`\`, `\\`,
		"_", `\_`, "*", `\*`, "[", `\[`, "]", `\]`, "(", `\(`, ")", `\)`,
		"~", `\~`, "`", "\\`", ">", `\>`, "#", `\#`, "+", `\+`, "-", `\-`,
		"=", `\=`, "|", `\|`, "{", `\{`, "}", `\}`, ".", `\.`, "!", `\!`,
	)
	markdownEscaper = strings.NewReplacer(
		"_", `\_`, "*", `\*`, "`", "\\`", "[", `\[`,
	)
)

// EscapeMarkdownV2 escapes every character reserved by the MarkdownV2 parse mode.
func EscapeMarkdownV2(s string) string {
	return markdownV2Escaper.Replace(s)
}

// EscapeMarkdown escapes the characters reserved by the legacy Markdown parse mode.
func EscapeMarkdown(s string) string {
	return markdownEscaper.Replace(s)
}

// EscapeHTML escapes text for the HTML parse mode.
func EscapeHTML(s string) string {
	return html.EscapeString(s)
}

func userLink(id int64) string {
	return "tg://user?id=" + strconv.FormatInt(id, 10)
}

// MentionHTML returns an inline mention of the user for the HTML parse mode.
func MentionHTML(u *User) string {
	if u == nil {
		return ""
	}
	return `<a href="` + userLink(u.ID) + `">` + EscapeHTML(u.FullName()) + `</a>`
}

// MentionMarkdownV2 returns an inline mention of the user for the MarkdownV2 parse mode.
func MentionMarkdownV2(u *User) string {
	if u == nil {
		return ""
	}
	return "[" + EscapeMarkdownV2(u.FullName()) + "](" + userLink(u.ID) + ")"
}
