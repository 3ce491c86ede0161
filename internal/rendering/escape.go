// Package rendering turns optimized resume data into a LaTeX document.
package rendering

import "strings"

// latexEscaper rewrites the reserved characters in a single left-to-right
// pass, so replacement text such as "\textbackslash{}" is never rescanned.
var latexEscaper = strings.NewReplacer(
	`\`, `\textbackslash{}`,
	`#`, `\#`,
	`$`, `\$`,
	`%`, `\%`,
	`&`, `\&`,
	`_`, `\_`,
	`{`, `\{`,
	`}`, `\}`,
	`^`, `\textasciicircum{}`,
	`~`, `\textasciitilde{}`,
)

// EscapeLaTeX escapes LaTeX special characters in user-supplied text.
func EscapeLaTeX(text string) string {
	if text == "" {
		return ""
	}
	return latexEscaper.Replace(text)
}

// urlEscaper covers the characters hyperref still interprets inside the
// URL argument of \href.
var urlEscaper = strings.NewReplacer(
	`%`, `\%`,
	`#`, `\#`,
)

// EscapeURL prepares text for the first argument of \href. Unlike
// EscapeLaTeX it leaves characters such as "_" and "~" literal, since
// hyperref passes them through to the link target.
func EscapeURL(text string) string {
	return urlEscaper.Replace(text)
}

// escapeJoin escapes each item and joins them with ", ".
func escapeJoin(items []string) string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, EscapeLaTeX(item))
		}
	}
	return strings.Join(out, ", ")
}

// escapeTechnologies normalizes a comma-separated technology list.
func escapeTechnologies(list string) string {
	return escapeJoin(strings.Split(list, ","))
}
