package ingestion

import (
	"net/url"
	"regexp"
	"strings"
)

// Selector locates one candidate value in a page. When Attr is set the
// attribute value is used, otherwise the element text.
type Selector struct {
	CSS  string
	Attr string
	// Truncate limits the value to the engine's description limit.
	Truncate bool
}

func text(css string) Selector          { return Selector{CSS: css} }
func attr(css, name string) Selector    { return Selector{CSS: css, Attr: name} }
func truncated(css string) Selector     { return Selector{CSS: css, Truncate: true} }
func meta(property string) Selector     { return attr(`meta[property="`+property+`"]`, "content") }
func metaName(name string) Selector     { return attr(`meta[name="`+name+`"]`, "content") }
func pattern(expr string) *regexp.Regexp { return regexp.MustCompile(expr) }

// Strategy is the extraction recipe for one family of hosts. Candidates in
// each list are tried in order and the first non-empty value wins.
type Strategy struct {
	Name        string
	Hosts       []string
	Title       []Selector
	Company     []Selector
	Description []Selector
	// JobIDPatterns are matched against the full URL; group 1 is the id.
	JobIDPatterns []*regexp.Regexp
	JobIDAttrs    []Selector
}

var strategies = []Strategy{
	{
		Name:  "linkedin",
		Hosts: []string{"linkedin.com"},
		Title: []Selector{
			text(".top-card-layout__title"),
			text("h1.t-24"),
			text(".job-details-jobs-unified-top-card__job-title"),
			text(`[data-automation-id="jobPostingHeader"]`),
		},
		Company: []Selector{
			text(".topcard__flavor-row .topcard__flavor--black-link"),
			text(".top-card-layout__card .topcard__org-name-link"),
			text(".job-details-jobs-unified-top-card__company-name"),
		},
		Description: []Selector{
			text(".show-more-less-html__markup"),
			text(".description__text"),
			text(`[data-automation-id="jobPostingDescription"]`),
		},
		JobIDPatterns: []*regexp.Regexp{pattern(`/jobs/view/(?:[^/?#]*-)?(\d+)`), pattern(`currentJobId=(\d+)`)},
		JobIDAttrs:    []Selector{attr("[data-job-id]", "data-job-id")},
	},
	{
		Name:  "indeed",
		Hosts: []string{"indeed.com"},
		Title: []Selector{
			text("[data-jk] h1"),
			text(".jobsearch-JobInfoHeader-title"),
			text(`[data-testid="jobsearch-JobInfoHeader-title"]`),
		},
		Company: []Selector{
			text(`[data-testid="inlineHeader-companyName"]`),
			text(`[data-company-name="true"]`),
			text(".icl-u-lg-mr--sm"),
		},
		Description:   []Selector{text("#jobDescriptionText")},
		JobIDPatterns: []*regexp.Regexp{pattern(`[?&]jk=([^&#]+)`)},
		JobIDAttrs:    []Selector{attr("[data-jk]", "data-jk")},
	},
	{
		Name:          "glassdoor",
		Hosts:         []string{"glassdoor.com", "glassdoor.co.uk", "glassdoor.ca"},
		Title:         []Selector{text(`[data-test="job-title"]`), text(".e1tk4kwz4")},
		Company:       []Selector{text(`[data-test="employer-name"]`), text(".e1tk4kwz5")},
		Description:   []Selector{text(`[data-test="jobDescriptionContent"]`), text(".jobDescriptionContent")},
		JobIDPatterns: []*regexp.Regexp{pattern(`[?&]jobListingId=(\d+)`), pattern(`/jobs?/([^/?#]+)`)},
	},
	{
		Name:          "greenhouse",
		Hosts:         []string{"greenhouse.io"},
		Title:         []Selector{text(".job__title h1"), text("h1.app-title"), text("h1")},
		Company:       []Selector{text(".company-name"), meta("og:site_name")},
		Description:   []Selector{text(".job__description.body"), text(".job__description"), text("#content")},
		JobIDPatterns: []*regexp.Regexp{pattern(`/jobs/(\d+)`), pattern(`[?&]gh_jid=(\d+)`)},
	},
	{
		Name:          "lever",
		Hosts:         []string{"lever.co"},
		Title:         []Selector{text(".posting-headline h2"), text("h2")},
		Company:       []Selector{attr(".main-header-logo img", "alt"), meta("og:site_name")},
		Description:   []Selector{text(".posting-page .section-wrapper.page-full-width"), text(".posting-description"), text(".content")},
		JobIDPatterns: []*regexp.Regexp{pattern(`lever\.co/[^/]+/([0-9a-f-]{36})`)},
	},
	{
		Name:          "workday",
		Hosts:         []string{"myworkdayjobs.com", "workday.com"},
		Title:         []Selector{text(`[data-automation-id="jobPostingHeader"]`), meta("og:title")},
		Company:       []Selector{meta("og:site_name")},
		Description:   []Selector{text(`[data-automation-id="jobPostingDescription"]`), text(`[data-automation-id="jobDescription"]`)},
		JobIDPatterns: []*regexp.Regexp{pattern(`_(R?-?\d[\w-]*)(?:[/?#]|$)`)},
	},
}

// genericStrategy is used for hosts without a dedicated strategy.
var genericStrategy = Strategy{
	Name: "generic",
	Title: []Selector{
		text("h1"),
		text(`[class*="title"], [class*="job-title"], [id*="title"]`),
		meta("og:title"),
		text("title"),
	},
	Company: []Selector{
		text(`[class*="company"], [class*="employer"], [class*="organization"]`),
		text(`[itemprop="hiringOrganization"]`),
		meta("og:site_name"),
		metaName("company"),
	},
	Description: []Selector{
		text(`[class*="description"], [class*="job-description"], [id*="description"]`),
		text(`[itemprop="description"]`),
		meta("og:description"),
		metaName("description"),
		truncated("main, article, section, body"),
	},
	JobIDAttrs: []Selector{attr("[data-job-id]", "data-job-id"), attr("[data-jobid]", "data-jobid")},
}

// StrategyFor returns the strategy whose host pattern is contained in the
// URL's hostname, or the generic strategy.
func StrategyFor(pageURL string) Strategy {
	u, err := url.Parse(pageURL)
	if err != nil {
		return genericStrategy
	}
	host := strings.ToLower(u.Hostname())
	for _, s := range strategies {
		for _, h := range s.Hosts {
			if strings.Contains(host, h) {
				return s
			}
		}
	}
	return genericStrategy
}
