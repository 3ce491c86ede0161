package ingestion

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// noiseSelectors are removed before reading text content.
const noiseSelectors = "script, style, noscript, template, svg, iframe"

// Fields is what an engine extracts from a page. Any field may be empty.
type Fields struct {
	Title       string `json:"title"`
	Company     string `json:"company"`
	JobID       string `json:"jobId"`
	Description string `json:"description"`
}

// ExtractFields applies the strategy for pageURL to an HTML document.
// Descriptions read by a truncating selector are cut to limit runes.
func ExtractFields(html, pageURL string, limit int) (*Fields, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, err
	}
	doc.Find(noiseSelectors).Remove()

	s := StrategyFor(pageURL)
	f := &Fields{
		Title:       first(doc, s.Title, limit),
		Company:     first(doc, s.Company, limit),
		Description: first(doc, s.Description, limit),
		JobID:       jobIDFromURL(pageURL, s),
	}
	if f.JobID == "" {
		f.JobID = first(doc, s.JobIDAttrs, limit)
	}
	return f, nil
}

func first(doc *goquery.Document, candidates []Selector, limit int) string {
	for _, c := range candidates {
		sel := doc.Find(c.CSS).First()
		if sel.Length() == 0 {
			continue
		}
		var v string
		if c.Attr != "" {
			v, _ = sel.Attr(c.Attr)
		} else {
			v = sel.Text()
		}
		v = NormalizeWhitespace(v)
		if v == "" {
			continue
		}
		if c.Truncate {
			v = truncateRunes(v, limit)
		}
		return v
	}
	return ""
}

func jobIDFromURL(pageURL string, s Strategy) string {
	for _, re := range s.JobIDPatterns {
		if m := re.FindStringSubmatch(pageURL); len(m) > 1 && m[1] != "" {
			return m[1]
		}
	}
	return ""
}

func truncateRunes(s string, limit int) string {
	if limit <= 0 {
		return s
	}
	r := []rune(s)
	if len(r) <= limit {
		return s
	}
	return strings.TrimSpace(string(r[:limit]))
}
