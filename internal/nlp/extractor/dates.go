// internal/nlp/extractor/dates.go
package extractor

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"contract-query-workers/internal/models"
	"contract-query-workers/internal/nlp/lexicon"
)

const (
	dateLayout     = "2006-01-02"
	attrCreateDate = "CREATE_DATE"
	attrExpiration = "EXPIRATION_DATE"
)

var (
	nextMonthRe    = regexp.MustCompile(`(?i)\bnext\s+month\b`)
	thisMonthRe    = regexp.MustCompile(`(?i)\bthis\s+month\b`)
	quarterRe      = regexp.MustCompile(`(?i)\bq([1-4])\s*(20\d{2})\b`)
	withinDaysRe   = regexp.MustCompile(`(?i)\bwithin\s+(?:the\s+next\s+)?(\d{1,3})\s+days?\b`)
	nDayRe         = regexp.MustCompile(`(?i)\b(\d{1,3})-day\b`)
	createdYearRe  = regexp.MustCompile(`(?i)\bcreated\s+(in|during|after|since|before|prior\s+to)\s+((?:19|20)\d{2})(?:$|[^-\d])`)
	createdRangeRe = regexp.MustCompile(`(?i)\bcreated\s+between\s+((?:19|20)\d{2})\s*(?:and|to|-)\s*((?:19|20)\d{2})\b`)
	createdMonthRe = regexp.MustCompile(`(?i)\bcreated\s+(?:in\s+)?(jan(?:uary)?|feb(?:ruary)?|mar(?:ch)?|apr(?:il)?|may|june?|july?|aug(?:ust)?|sep(?:t(?:ember)?)?|oct(?:ober)?|nov(?:ember)?|dec(?:ember)?)\s+((?:19|20)\d{2})\b`)
	relMonthRe     = regexp.MustCompile(`(?i)\bcreated\s+(this|last)\s+month\b`)
	exactDateRe    = regexp.MustCompile(`(?i)\b(after|since|before)\s+(\d{4}-\d{2}-\d{2})\b`)
	relYearRe      = regexp.MustCompile(`(?i)\b(this|last)\s+year\b`)
)

var monthPrefixes = []string{"jan", "feb", "mar", "apr", "may", "jun", "jul", "aug", "sep", "oct", "nov", "dec"}

func between(from, to time.Time) string {
	return fmt.Sprintf("'%s' AND '%s'", from.Format(dateLayout), to.Format(dateLayout))
}

func monthRange(year int, month time.Month, loc *time.Location) string {
	first := time.Date(year, month, 1, 0, 0, 0, 0, loc)
	last := first.AddDate(0, 1, -1)
	return first.Format(dateLayout) + "," + last.Format(dateLayout)
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// dateAttribute picks the column a bare date phrase refers to.
func (s *state) dateAttribute() string {
	if lexicon.MentionsExpiration(s.lex) && !s.lex.Has("created") {
		return attrExpiration
	}
	return attrCreateDate
}

// dates converts relative and absolute date phrases into filters anchored on
// the supplied current date.
func (s *state) dates() {
	now := s.in.Now
	if now.IsZero() {
		return
	}
	today := startOfDay(now)
	expiring := lexicon.MentionsExpiration(s.lex)

	if expiring {
		switch {
		case nextMonthRe.MatchString(s.text):
			first := time.Date(today.Year(), today.Month()+1, 1, 0, 0, 0, 0, today.Location())
			s.add(models.NewFilter(attrExpiration, models.OpBetween, between(first, first.AddDate(0, 1, -1))))
		case thisMonthRe.MatchString(s.text) && !s.lex.Has("created"):
			first := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, today.Location())
			s.add(models.NewFilter(attrExpiration, models.OpBetween, between(first, first.AddDate(0, 1, -1))))
		}
	}

	if m := quarterRe.FindStringSubmatchIndex(s.text); m != nil {
		q, _ := strconv.Atoi(s.text[m[2]:m[3]])
		year, _ := strconv.Atoi(s.text[m[4]:m[5]])
		first := time.Date(year, time.Month(3*(q-1)+1), 1, 0, 0, 0, 0, today.Location())
		attr := attrExpiration
		if s.lex.Has("created") {
			attr = attrCreateDate
		}
		s.add(models.NewFilter(attr, models.OpBetween, between(first, first.AddDate(0, 3, -1))))
		s.consume(m[4], m[5])
	}

	days := withinDaysRe.FindStringSubmatchIndex(s.text)
	if days == nil {
		days = nDayRe.FindStringSubmatchIndex(s.text)
	}
	if days != nil {
		n, _ := strconv.Atoi(s.text[days[2]:days[3]])
		s.add(models.NewFilter(attrExpiration, models.OpBetween, between(today, today.AddDate(0, 0, n))))
		s.consume(days[2], days[3])
	}

	s.createdDates(today)

	if m := exactDateRe.FindStringSubmatchIndex(s.text); m != nil {
		if d, err := time.ParseInLocation(dateLayout, s.text[m[4]:m[5]], today.Location()); err == nil {
			op := models.OpGreater
			if strings.EqualFold(s.text[m[2]:m[3]], "before") {
				op = models.OpLess
			}
			s.add(models.NewFilter(s.dateAttribute(), op, d.Format(dateLayout)))
			s.consume(m[4], m[5])
		}
	}
}

func (s *state) createdDates(today time.Time) {
	if m := createdRangeRe.FindStringSubmatchIndex(s.text); m != nil {
		s.add(models.NewFilter(attrCreateDate, models.OpYearRange, s.text[m[2]:m[3]]+","+s.text[m[4]:m[5]]))
		s.consume(m[2], m[3])
		s.consume(m[4], m[5])
		return
	}
	if m := createdYearRe.FindStringSubmatchIndex(s.text); m != nil {
		year := s.text[m[4]:m[5]]
		switch strings.Join(strings.Fields(strings.ToLower(s.text[m[2]:m[3]])), " ") {
		case "in", "during":
			s.add(models.NewFilter(attrCreateDate, models.OpInYear, year))
		case "after":
			s.add(models.NewFilter(attrCreateDate, models.OpAfterYear, year))
		case "since":
			s.add(models.NewFilter(attrCreateDate, models.OpYearRange, year+","+strconv.Itoa(today.Year())))
		default:
			s.add(models.NewFilter(attrCreateDate, models.OpBeforeYear, year))
		}
		s.consume(m[4], m[5])
		return
	}
	if m := createdMonthRe.FindStringSubmatchIndex(s.text); m != nil {
		year, _ := strconv.Atoi(s.text[m[4]:m[5]])
		s.add(models.NewFilter(attrCreateDate, models.OpMonthRange, monthRange(year, monthOf(s.text[m[2]:m[3]]), today.Location())))
		s.consume(m[4], m[5])
		return
	}
	if m := relMonthRe.FindStringSubmatch(s.text); m != nil {
		ref := today
		if strings.EqualFold(m[1], "last") {
			ref = time.Date(today.Year(), today.Month()-1, 1, 0, 0, 0, 0, today.Location())
		}
		s.add(models.NewFilter(attrCreateDate, models.OpMonthRange, monthRange(ref.Year(), ref.Month(), today.Location())))
		return
	}
	if m := relYearRe.FindStringSubmatch(s.text); m != nil {
		year := today.Year()
		if strings.EqualFold(m[1], "last") {
			year--
		}
		s.add(models.NewFilter(s.dateAttribute(), models.OpInYear, strconv.Itoa(year)))
	}
}

func monthOf(name string) time.Month {
	name = strings.ToLower(name)
	for i, p := range monthPrefixes {
		if strings.HasPrefix(name, p) {
			return time.Month(i + 1)
		}
	}
	return time.January
}
