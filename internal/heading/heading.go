// Package heading renders the localized title and disclaimer placed above each digest.
package heading

import (
	"fmt"
	"time"
)

const showURL = "https://tv.rik.cy/show/eideseis-ton-8/"

// DefaultCutoffHour is the hour before which a broadcast from the previous
// date still counts as "this evening's".
const DefaultCutoffHour = 2

type locale struct {
	days   [7]string // indexed by time.Weekday
	months [12]string
	// date formats the weekday, day of month, month name and year.
	date      func(weekday string, day int, month string, year int) string
	evening   string
	yesterday string
	body      func(date, ref string) string
}

var locales = map[string]locale{
	"el": {
		days:   [7]string{"Κυριακή", "Δευτέρα", "Τρίτη", "Τετάρτη", "Πέμπτη", "Παρασκευή", "Σάββατο"},
		months: [12]string{"Ιανουαρίου", "Φεβρουαρίου", "Μαρτίου", "Απριλίου", "Μαΐου", "Ιουνίου", "Ιουλίου", "Αυγούστου", "Σεπτεμβρίου", "Οκτωβρίου", "Νοεμβρίου", "Δεκεμβρίου"},
		date: func(w string, d int, m string, y int) string {
			return fmt.Sprintf("%s, %d %s %d", w, d, m, y)
		},
		evening:   "το απογευματινό",
		yesterday: "το χθεσινό",
		body: func(date, ref string) string {
			return fmt.Sprintf("## 📰 Περίληψη Ειδήσεων για %s\n\n"+
				"Αυτή είναι μια περίληψη %s [δελτίο ειδήσεων στις 8μμ του ΡΙΚ](%s). "+
				"Όπου είναι διαθέσιμοι, παρέχονται σύνδεσμοι σε σχετικά ελληνόγλωσσα άρθρα. "+
				"Σημειώστε ότι αυτή η περίληψη δημιουργήθηκε με τη βοήθεια AI και μπορεί να περιέχει ανακρίβειες.",
				date, ref, showURL)
		},
	},
	"ru": {
		days:   [7]string{"воскресенье", "понедельник", "вторник", "среда", "четверг", "пятница", "суббота"},
		months: [12]string{"января", "февраля", "марта", "апреля", "мая", "июня", "июля", "августа", "сентября", "октября", "ноября", "декабря"},
		date: func(w string, d int, m string, y int) string {
			return fmt.Sprintf("%s, %d %s %d", w, d, m, y)
		},
		evening:   "сегодняшнего вечернего",
		yesterday: "вчерашнего",
		body: func(date, ref string) string {
			return fmt.Sprintf("## 📰 Сводка новостей за %s\n\n"+
				"Это краткое изложение %s [выпуска новостей RIK в 20:00](%s). "+
				"Где возможно, приводятся ссылки на статьи по теме на русском языке. "+
				"Обратите внимание, что сводка подготовлена с помощью ИИ и может содержать неточности.",
				date, ref, showURL)
		},
	},
	"uk": {
		days:   [7]string{"неділя", "понеділок", "вівторок", "середа", "четвер", "пʼятниця", "субота"},
		months: [12]string{"січня", "лютого", "березня", "квітня", "травня", "червня", "липня", "серпня", "вересня", "жовтня", "листопада", "грудня"},
		date: func(w string, d int, m string, y int) string {
			return fmt.Sprintf("%s, %d %s %d", w, d, m, y)
		},
		evening:   "сьогоднішнього вечірнього",
		yesterday: "вчорашнього",
		body: func(date, ref string) string {
			return fmt.Sprintf("## 📰 Зведення новин за %s\n\n"+
				"Це короткий виклад %s [випуску новин RIK о 20:00](%s). "+
				"Де можливо, наведено посилання на статті за темою українською мовою. "+
				"Зверніть увагу, що зведення підготовлено за допомогою ШІ і може містити неточності.",
				date, ref, showURL)
		},
	},
	"he": {
		days:   [7]string{"ראשון", "שני", "שלישי", "רביעי", "חמישי", "שישי", "שבת"},
		months: [12]string{"ינואר", "פברואר", "מרץ", "אפריל", "מאי", "יוני", "יולי", "אוגוסט", "ספטמבר", "אוקטובר", "נובמבר", "דצמבר"},
		date: func(w string, d int, m string, y int) string {
			return fmt.Sprintf("יום %s, %d ב%s %d", w, d, m, y)
		},
		evening:   "של הערב",
		yesterday: "של אתמול",
		body: func(date, ref string) string {
			return fmt.Sprintf("## 📰 סיכום חדשות ליום %s\n\n"+
				"זהו סיכום [מהדורת החדשות של RIK בשעה 20:00](%s) %s. "+
				"במידת האפשר מצורפים קישורים לכתבות רלוונטיות בעברית. "+
				"שימו לב: הסיכום נוצר בסיוע בינה מלאכותית ועשוי להכיל אי-דיוקים.",
				date, showURL, ref)
		},
	},
}

// Generator renders headings relative to a clock in the broadcaster's timezone.
type Generator struct {
	Location   *time.Location
	CutoffHour int
}

// Generate renders the heading for day in lang. Unknown languages get English.
func (g Generator) Generate(day time.Time, lang string, now time.Time) string {
	return render(day, lang, g.isEvening(day, now))
}

func render(day time.Time, lang string, evening bool) string {
	loc, ok := locales[lang]
	if !ok {
		ref := "yesterday's"
		if evening {
			ref = "this evening's"
		}
		return fmt.Sprintf("## 📰 News Summary for %s\n\n"+
			"This is a summary of %s [8pm RIK news broadcast](%s). "+
			"Where available, links to related English-language articles from the Cyprus Mail "+
			"and In-Cyprus are provided for further reading. Please note that this summary was "+
			"generated with the assistance of AI and may contain inaccuracies.",
			day.Format("Monday, 02 January 2006"), ref, showURL)
	}

	ref := loc.yesterday
	if evening {
		ref = loc.evening
	}
	date := loc.date(loc.days[day.Weekday()], day.Day(), loc.months[day.Month()-1], day.Year())
	return loc.body(date, ref)
}

// isEvening reports whether the broadcast of day aired this evening as seen
// from now: the same date, or the following date before the cutoff hour.
func (g Generator) isEvening(day, now time.Time) bool {
	tz := g.Location
	if tz == nil {
		tz = time.UTC
	}
	local := now.In(tz)
	y, m, d := local.Date()
	today := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)

	dy, dm, dd := day.Date()
	broadcast := time.Date(dy, dm, dd, 0, 0, 0, 0, time.UTC)

	switch {
	case today.Equal(broadcast):
		return true
	case today.Equal(broadcast.AddDate(0, 0, 1)) && local.Hour() < g.CutoffHour:
		return true
	}
	return false
}

// Strip removes a leading heading followed by a blank line from text, if present.
func Strip(text, heading string) string {
	prefix := heading + "\n\n"
	if len(text) >= len(prefix) && text[:len(prefix)] == prefix {
		return text[len(prefix):]
	}
	return text
}

// StripFor removes whichever heading variant for day and lang leads text.
// The evening/yesterday wording depends on when a file was written, so both
// are tried.
func StripFor(text string, day time.Time, lang string) string {
	for _, evening := range []bool{false, true} {
		if stripped := Strip(text, render(day, lang, evening)); stripped != text {
			return stripped
		}
	}
	return text
}
