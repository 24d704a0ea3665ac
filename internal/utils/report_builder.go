package utils

import (
	"strings"
	"unicode/utf8"
)

type reportLine struct {
	key, value string
	keyed      bool
}

// ReportBuilder assembles a plain-text report. Key/value lines within a
// section are aligned on their values.
type ReportBuilder struct {
	title    string
	sections []reportSection
}

type reportSection struct {
	title string
	lines []reportLine
}

func NewReportBuilder() *ReportBuilder {
	return &ReportBuilder{sections: []reportSection{{}}}
}

// Header sets the report title, rendered underlined.
func (rb *ReportBuilder) Header(text string) *ReportBuilder {
	rb.title = text
	return rb
}

// Section starts a new titled section.
func (rb *ReportBuilder) Section(title string) *ReportBuilder {
	rb.sections = append(rb.sections, reportSection{title: title})
	return rb
}

func (rb *ReportBuilder) AddLine(text string) *ReportBuilder {
	return rb.add(reportLine{value: text})
}

func (rb *ReportBuilder) AddBullet(text string) *ReportBuilder {
	return rb.add(reportLine{value: "• " + text})
}

func (rb *ReportBuilder) AddKeyValue(key, value string) *ReportBuilder {
	return rb.add(reportLine{key: key, value: value, keyed: true})
}

func (rb *ReportBuilder) add(line reportLine) *ReportBuilder {
	last := &rb.sections[len(rb.sections)-1]
	last.lines = append(last.lines, line)
	return rb
}

// Build renders the report without a trailing newline.
func (rb *ReportBuilder) Build() string {
	var out []string
	if rb.title != "" {
		out = append(out, rb.title, strings.Repeat("=", utf8.RuneCountInString(rb.title)))
	}

	for _, section := range rb.sections {
		if section.title != "" {
			out = append(out, "", section.title)
		}

		width := 0
		for _, line := range section.lines {
			if line.keyed {
				width = max(width, utf8.RuneCountInString(line.key))
			}
		}

		for _, line := range section.lines {
			if !line.keyed {
				out = append(out, line.value)
				continue
			}
			pad := strings.Repeat(" ", width-utf8.RuneCountInString(line.key))
			out = append(out, line.key+": "+pad+line.value)
		}
	}
	return strings.Join(out, "\n")
}
