package seed

import (
	"regexp"
	"strconv"
	"strings"
)

// Audience identifies who a generated topic is written for.
type Audience string

const (
	AudienceTravellers Audience = "travellers"
	AudienceTeachers   Audience = "teachers"
	AudienceBoth       Audience = "both"
)

// ValidFits lists the audience-fit values a topic may carry. The "both"
// request value expands to these two; it is never a fit value itself.
var ValidFits = []string{string(AudienceTravellers), string(AudienceTeachers)}

// CityWide is the sentinel city focus meaning the whole country rather than
// a specific city.
const CityWide = "Cambodia wide"

// CountryName is the bare country used for matching when the focus is
// country-wide.
const CountryName = "Cambodia"

// Request describes one topic-generation run: the human seed title and the
// editorial focus it should be grounded in.
type Request struct {
	Title     string
	CityFocus string
	Audience  Audience
}

// CityTerm resolves the city focus into the term used for matching and
// prompting. The country-wide sentinel maps to the bare country name; any
// other focus is used literally.
func (r Request) CityTerm() string {
	focus := strings.TrimSpace(r.CityFocus)
	if focus == "" || strings.EqualFold(focus, CityWide) {
		return CountryName
	}
	return focus
}

// MentionsCity reports whether s mentions the resolved city term or the
// country name, case-insensitively.
func (r Request) MentionsCity(s string) bool {
	low := strings.ToLower(s)
	if strings.Contains(low, strings.ToLower(r.CityTerm())) {
		return true
	}
	return strings.Contains(low, strings.ToLower(CountryName))
}

var yearRe = regexp.MustCompile(`\b(19|20)\d{2}\b`)

// MentionsYear reports whether the seed title contains the given year.
func (r Request) MentionsYear(year int) bool {
	for _, m := range yearRe.FindAllString(r.Title, -1) {
		if n, err := strconv.Atoi(m); err == nil && n == year {
			return true
		}
	}
	return false
}

// Years returns all four-digit years found in s, in order of appearance.
func Years(s string) []int {
	var out []int
	for _, m := range yearRe.FindAllString(s, -1) {
		if n, err := strconv.Atoi(m); err == nil {
			out = append(out, n)
		}
	}
	return out
}

// FitsFor expands a requested audience into topic fit values.
func (a Audience) FitsFor() []string {
	switch a {
	case AudienceTravellers:
		return []string{string(AudienceTravellers)}
	case AudienceTeachers:
		return []string{string(AudienceTeachers)}
	default:
		return append([]string{}, ValidFits...)
	}
}
