package assistant

import (
	"regexp"
	"strings"
)

// Sections is a model response split by the headers requested in the
// analysis prompt. Raw keeps the full response.
type Sections struct {
	Overview        string
	Patterns        string
	Examples        string
	BestPractices   string
	Recommendations string
	Raw             string
}

var sectionHeader = regexp.MustCompile(`(?mi)^[ \t]*#{1,3}[ \t]*(overview|patterns|examples|best practices|recommendations)[ \t]*:?[ \t]*$`)

// ParseSections splits response at the recognised section headers. The
// first occurrence of a header wins. A response without any recognised
// header becomes the Overview.
func ParseSections(response string) Sections {
	s := Sections{Raw: response}

	matches := sectionHeader.FindAllStringSubmatchIndex(response, -1)
	if len(matches) == 0 {
		s.Overview = strings.TrimSpace(response)
		return s
	}

	for i, m := range matches {
		end := len(response)
		if i+1 < len(matches) {
			end = matches[i+1][0]
		}
		body := strings.TrimSpace(response[m[1]:end])
		name := strings.ToLower(response[m[2]:m[3]])

		var dst *string
		switch name {
		case "overview":
			dst = &s.Overview
		case "patterns":
			dst = &s.Patterns
		case "examples":
			dst = &s.Examples
		case "best practices":
			dst = &s.BestPractices
		case "recommendations":
			dst = &s.Recommendations
		}
		if dst != nil && *dst == "" {
			*dst = body
		}
	}
	return s
}
