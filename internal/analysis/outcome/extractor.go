package outcome

import (
	"regexp"
	"strings"
)

// Detector answers whether a reply closes the conversation. The phrase
// set is the union across all personas: any persona's closing formula
// ends the call, whatever mode the session runs in.
type Detector struct {
	phrases []string
}

// NewDetector lowercases and stores the phrase set once.
func NewDetector(phrases []string) *Detector {
	lowered := make([]string, 0, len(phrases))
	for _, p := range phrases {
		p = strings.ToLower(strings.TrimSpace(p))
		if p != "" {
			lowered = append(lowered, p)
		}
	}
	return &Detector{phrases: lowered}
}

// DetectEnding reports whether text contains any ending phrase,
// case-insensitively.
func (d *Detector) DetectEnding(text string) bool {
	lowered := strings.ToLower(text)
	for _, phrase := range d.phrases {
		if strings.Contains(lowered, phrase) {
			return true
		}
	}
	return false
}

// Fields is the structured record extracted from a concluded dialogue.
type Fields struct {
	Date      string `json:"date,omitempty"`
	Time      string `json:"time,omitempty"`
	Service   string `json:"service"`
	Confirmed bool   `json:"confirmed"`
}

// ExtractFunc is a pure extraction strategy over the full dialogue text.
// The boolean is false when the text yields no usable record.
type ExtractFunc func(text string) (Fields, bool)

var ruleSets = map[string]ExtractFunc{
	"appointment": extractAppointment,
}

// RuleSet resolves an extraction strategy by the name a persona declares.
func RuleSet(name string) (ExtractFunc, bool) {
	fn, ok := ruleSets[name]
	return fn, ok
}

var (
	datePattern    = regexp.MustCompile(`(\d{1,2})\s*(ianuarie|februarie|martie|aprilie|mai|iunie|iulie|august|septembrie|octombrie|noiembrie|decembrie)`)
	timePattern    = regexp.MustCompile(`ora?\s*(\d{1,2}):?(\d{2})?`)
	servicePattern = regexp.MustCompile(`(consultație|detartraj|plombă|extracție|control)`)
)

// extractAppointment scans the dialogue for a Romanian date expression,
// a time expression and a service name. A record is produced only when
// at least a date or a time was found.
func extractAppointment(text string) (Fields, bool) {
	lowered := strings.ToLower(text)

	dateMatch := datePattern.FindStringSubmatch(lowered)
	timeMatch := timePattern.FindStringSubmatch(lowered)
	serviceMatch := servicePattern.FindStringSubmatch(lowered)

	if dateMatch == nil && timeMatch == nil {
		return Fields{}, false
	}

	fields := Fields{
		Service:   "Consultație generală",
		Confirmed: strings.Contains(lowered, "programat") || strings.Contains(lowered, "confirmat"),
	}
	if dateMatch != nil {
		fields.Date = dateMatch[1] + " " + dateMatch[2]
	}
	if timeMatch != nil {
		minutes := timeMatch[2]
		if minutes == "" {
			minutes = "00"
		}
		fields.Time = timeMatch[1] + ":" + minutes
	}
	if serviceMatch != nil {
		fields.Service = serviceMatch[1]
	}

	return fields, true
}
