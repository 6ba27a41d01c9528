package scrape

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

// isoLayout is how parsed listing dates are stored.
const isoLayout = "2006-01-02T15:04:05"

// Date formats a ScraperConfig can name.
const (
	DateISO     = "iso"
	DateGreek   = "greek"
	DateRussian = "russian"
	DateEnglish = "english"
	DateTurkish = "turkish"
	DateDotted  = "dotted"
	DateAny     = "any"
)

var greekMonths = map[string]time.Month{
	"Ιανουαρίου": time.January, "Φεβρουαρίου": time.February, "Μαρτίου": time.March,
	"Απριλίου": time.April, "Μαΐου": time.May, "Ιουνίου": time.June,
	"Ιουλίου": time.July, "Αυγούστου": time.August, "Σεπτεμβρίου": time.September,
	"Οκτωβρίου": time.October, "Νοεμβρίου": time.November, "Δεκεμβρίου": time.December,
}

var russianMonths = map[string]time.Month{
	"января": time.January, "февраля": time.February, "марта": time.March,
	"апреля": time.April, "мая": time.May, "июня": time.June,
	"июля": time.July, "августа": time.August, "сентября": time.September,
	"октября": time.October, "ноября": time.November, "декабря": time.December,
}

var englishMonths = map[string]time.Month{
	"January": time.January, "February": time.February, "March": time.March,
	"April": time.April, "May": time.May, "June": time.June,
	"July": time.July, "August": time.August, "September": time.September,
	"October": time.October, "November": time.November, "December": time.December,
}

func alternation(months map[string]time.Month) string {
	names := make([]string, 0, len(months))
	for name := range months {
		names = append(names, regexp.QuoteMeta(name))
	}
	return strings.Join(names, "|")
}

var (
	greekFullRe     = regexp.MustCompile(`(\d{1,2})\s+(` + alternation(greekMonths) + `)\s+(\d{4}),?\s*(\d{1,2}):(\d{2})`)
	greekUpdatedRe  = regexp.MustCompile(`(\d{1,2})\s+(` + alternation(greekMonths) + `)\s*-\s*(\d{1,2}):(\d{2})`)
	greekRelativeRe = regexp.MustCompile(`Πριν\s*(\d+)\s*(λεπτ|ώρ|ωρ)`)

	russianTodayRe     = regexp.MustCompile(`Сегодня\s+в\s+(\d{1,2}):(\d{2})`)
	russianYesterdayRe = regexp.MustCompile(`Вчера\s+в\s+(\d{1,2}):(\d{2})`)
	russianDayMonthRe  = regexp.MustCompile(`(\d{1,2})\s+(` + alternation(russianMonths) + `)`)

	englishDateRe = regexp.MustCompile(`(\d{1,2})\s+(` + alternation(englishMonths) + `)\s+(\d{4})`)

	turkishRelativeRe = regexp.MustCompile(`^(\d+)\s+(dakika|saat|gün)\s+önce`)
	turkishShortRe    = regexp.MustCompile(`^(\d{2})/(\d{2})/(\d{2})`)

	dottedDateTimeRe = regexp.MustCompile(`^(\d{2})\.(\d{2})\.(\d{4})(?:\s+(\d{1,2}):(\d{2}))?$`)
	timeOnlyRe       = regexp.MustCompile(`^(\d{1,2}):(\d{2})$`)
)

// ParseDate converts listing date text into the stored ISO form. now anchors
// relative and year-less dates. The second result is false when nothing matched.
func ParseDate(format, text string, now time.Time) (string, bool) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", false
	}

	var (
		t  time.Time
		ok bool
	)
	switch format {
	case "", DateISO:
		// Attribute values are already machine-readable; keep them verbatim.
		if _, err := dateparse.ParseAny(text); err != nil {
			return "", false
		}
		return text, true
	case DateGreek:
		t, ok = parseGreek(text, now)
	case DateRussian:
		t, ok = parseRussian(text, now)
	case DateEnglish:
		t, ok = parseEnglish(text)
	case DateTurkish:
		t, ok = parseTurkish(text, now)
	case DateDotted:
		t, ok = parseDotted(text, now)
	case DateAny:
		parsed, err := dateparse.ParseIn(text, now.Location())
		t, ok = parsed, err == nil
	default:
		return "", false
	}
	if !ok {
		return "", false
	}
	return t.Format(isoLayout), true
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}

func at(y int, m time.Month, d, hh, mm int, loc *time.Location) time.Time {
	return time.Date(y, m, d, hh, mm, 0, 0, loc)
}

func truncateToMinute(t time.Time) time.Time {
	return t.Truncate(time.Minute)
}

// parseGreek handles "17 Φεβρουαρίου 2026, 9:33", "17 Φεβρουαρίου - 8:52"
// (current year) and "Πριν 48 λεπτά" / "Πριν 2 ώρες".
func parseGreek(text string, now time.Time) (time.Time, bool) {
	if m := greekFullRe.FindStringSubmatch(text); m != nil {
		return at(atoi(m[3]), greekMonths[m[2]], atoi(m[1]), atoi(m[4]), atoi(m[5]), now.Location()), true
	}
	if m := greekUpdatedRe.FindStringSubmatch(text); m != nil {
		return at(now.Year(), greekMonths[m[2]], atoi(m[1]), atoi(m[3]), atoi(m[4]), now.Location()), true
	}
	if m := greekRelativeRe.FindStringSubmatch(text); m != nil {
		amount := time.Duration(atoi(m[1]))
		if strings.HasPrefix(m[2], "λεπτ") {
			return truncateToMinute(now.Add(-amount * time.Minute)), true
		}
		return truncateToMinute(now.Add(-amount * time.Hour)), true
	}
	return time.Time{}, false
}

// parseRussian handles "Сегодня в 10:00", "Вчера в 15:47" and "16 февраля" (current year).
func parseRussian(text string, now time.Time) (time.Time, bool) {
	if m := russianTodayRe.FindStringSubmatch(text); m != nil {
		return at(now.Year(), now.Month(), now.Day(), atoi(m[1]), atoi(m[2]), now.Location()), true
	}
	if m := russianYesterdayRe.FindStringSubmatch(text); m != nil {
		y := now.AddDate(0, 0, -1)
		return at(y.Year(), y.Month(), y.Day(), atoi(m[1]), atoi(m[2]), now.Location()), true
	}
	if m := russianDayMonthRe.FindStringSubmatch(text); m != nil {
		return at(now.Year(), russianMonths[m[2]], atoi(m[1]), 0, 0, now.Location()), true
	}
	return time.Time{}, false
}

// parseEnglish handles "18 February 2026".
func parseEnglish(text string) (time.Time, bool) {
	if m := englishDateRe.FindStringSubmatch(text); m != nil {
		return at(atoi(m[3]), englishMonths[m[2]], atoi(m[1]), 0, 0, time.UTC), true
	}
	return time.Time{}, false
}

// parseTurkish handles "5 dakika önce", "2 saat önce", "1 gün önce" and "08/02/26".
func parseTurkish(text string, now time.Time) (time.Time, bool) {
	text = strings.TrimSpace(strings.TrimRight(strings.TrimSpace(text), "|"))
	if m := turkishRelativeRe.FindStringSubmatch(text); m != nil {
		amount := atoi(m[1])
		switch m[2] {
		case "dakika":
			return now.Add(-time.Duration(amount) * time.Minute), true
		case "saat":
			return now.Add(-time.Duration(amount) * time.Hour), true
		default:
			return now.AddDate(0, 0, -amount), true
		}
	}
	if m := turkishShortRe.FindStringSubmatch(text); m != nil {
		return at(2000+atoi(m[3]), time.Month(atoi(m[2])), atoi(m[1]), 0, 0, now.Location()), true
	}
	return time.Time{}, false
}

// parseDotted handles "17.02.2026 13:31", "17.02.2026" and a bare "13:28" (today).
func parseDotted(text string, now time.Time) (time.Time, bool) {
	if m := dottedDateTimeRe.FindStringSubmatch(text); m != nil {
		hh, mm := 0, 0
		if m[4] != "" {
			hh, mm = atoi(m[4]), atoi(m[5])
		}
		return at(atoi(m[3]), time.Month(atoi(m[2])), atoi(m[1]), hh, mm, now.Location()), true
	}
	if m := timeOnlyRe.FindStringSubmatch(text); m != nil {
		return at(now.Year(), now.Month(), now.Day(), atoi(m[1]), atoi(m[2]), now.Location()), true
	}
	return time.Time{}, false
}

// describeFormats lists the accepted date format names.
func describeFormats() string {
	return fmt.Sprintf("%s|%s|%s|%s|%s|%s|%s", DateISO, DateGreek, DateRussian, DateEnglish, DateTurkish, DateDotted, DateAny)
}
