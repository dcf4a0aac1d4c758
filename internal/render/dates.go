package render

import (
	"strconv"
	"strings"
	"time"
)

// dateRules captures one locale's date pattern. Placeholders are {day},
// {month}, and {year}.
type dateRules struct {
	pattern string
	months  [12]string
}

var dateFormats = map[string]dateRules{
	"en": {
		pattern: "{month} {day}, {year}",
		months: [12]string{
			"January", "February", "March", "April", "May", "June",
			"July", "August", "September", "October", "November", "December",
		},
	},
	"de": {
		pattern: "{day}. {month} {year}",
		months: [12]string{
			"Januar", "Februar", "März", "April", "Mai", "Juni",
			"Juli", "August", "September", "Oktober", "November", "Dezember",
		},
	},
	"hi": {
		pattern: "{day} {month} {year}",
		months: [12]string{
			"जनवरी", "फ़रवरी", "मार्च", "अप्रैल", "मई", "जून",
			"जुलाई", "अगस्त", "सितंबर", "अक्टूबर", "नवंबर", "दिसंबर",
		},
	},
}

// FormatDate renders a date with the locale's pattern and month names.
// Region subtags fall back to the base language ("de-AT" uses "de"),
// unknown locales use the English rules, and zero times produce "".
func FormatDate(locale string, value time.Time) string {
	if value.IsZero() {
		return ""
	}

	normalized := strings.ToLower(strings.TrimSpace(locale))
	rules, ok := dateFormats[normalized]
	if !ok {
		base, _, _ := strings.Cut(normalized, "-")
		if rules, ok = dateFormats[base]; !ok {
			rules = dateFormats["en"]
		}
	}

	replacer := strings.NewReplacer(
		"{day}", strconv.Itoa(value.Day()),
		"{month}", rules.months[value.Month()-1],
		"{year}", strconv.Itoa(value.Year()),
	)
	return replacer.Replace(rules.pattern)
}
