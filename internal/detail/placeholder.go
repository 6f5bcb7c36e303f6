// Synthesizes a detail for ids that match no stored record.

package detail

import (
	"fmt"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/sarkari/portal/internal/record"
)

// Placeholder kinds in classification order. The first substring found in
// the id wins.
var placeholderTypes = []struct {
	substr string
	kind   record.Kind
}{
	{"admit", record.AdmitCard},
	{"result", record.Result},
	{"answer-key", record.AnswerKey},
	{"yojana", record.Yojana},
	{"internship", record.Internship},
	{"scholarship", record.Scholarship},
}

// Fixed dates shown by every placeholder.
const (
	placeholderPosted = "25-03-2024"
	placeholderStart  = "01-03-2024"
)

// PlaceholderType classifies an unknown id by substring.
func PlaceholderType(id string) string {
	for _, t := range placeholderTypes {
		if strings.Contains(id, t.substr) {
			return t.kind.Label()
		}
	}
	return record.Job.Label()
}

// PlaceholderTitle title-cases the dash separated segments of id.
func PlaceholderTitle(id string) string {
	words := strings.Split(id, "-")
	for i, w := range words {
		if w != "" {
			words[i] = capitalize(w)
		}
	}
	return strings.Join(words, " ")
}

// Placeholder returns a generic detail for id. Dates are relative to now. An
// empty title is derived from the id.
func Placeholder(id, title string, now time.Time) *Detail {
	if title == "" {
		title = PlaceholderTitle(id)
	}
	typ := PlaceholderType(id)
	site := "https://www." + strings.ToLower(strings.Split(id, "-")[0]) + ".gov.in"

	lastDate := now.AddDate(0, 0, 30)
	exam := now.AddDate(0, 2, 0)
	result := now.AddDate(0, 3, 0)

	return &Detail{
		ID:                   id,
		Title:                title,
		ShortTitle:           title,
		Type:                 typ,
		Date:                 placeholderPosted,
		Description:          fmt.Sprintf("The %s has released the official notification for %s %s 2024. Candidates can check all the details like application dates, eligibility, selection process, how to apply, and more information below.", title, title, typ),
		ApplyLink:            site + "/apply",
		DownloadLink:         site + "/download",
		OfficialWebsite:      site,
		ApplicationStartDate: placeholderStart,
		ApplicationEndDate:   record.FormatDate(lastDate),
		ExamDate:             record.FormatDate(exam),
		ResultDate:           record.FormatDate(result),
		Eligibility: []string{
			"Candidates must be Indian citizens.",
			"Age Limit: 21-30 years (Age relaxation as per government norms).",
			"Educational Qualification: Bachelor's degree from a recognized university.",
			"Candidates must have to check the official notification.",
		},
		ImportantDates: []Event{
			{"Online Application Start Date", placeholderStart},
			{"Last Date to Apply Online", record.FormatDate(lastDate)},
			{"Last Date to Pay Application Fee", record.FormatDate(lastDate.AddDate(0, 0, 1))},
			{"Admit Card Release Date", record.FormatDate(exam.AddDate(0, 0, -10))},
			{"Exam Date", record.FormatDate(exam)},
			{"Result Declaration", record.FormatDate(result)},
		},
		ApplicationFee: []Fee{
			{"General", "₹500"},
			{"SC/ST/PwD", "₹250"},
			{"OBC", "₹0 (Exempted)"},
		},
		Vacancies: Vacancies{
			Total: "1500",
			Categories: []Category{
				{"General", "600"},
				{"OBC", "400"},
				{"SC", "250"},
				{"ST", "150"},
				{"EWS", "100"},
			},
		},
		SelectionProcess: []string{
			"Written Examination (Objective Type)",
			"Skill Test/Physical Test (if applicable)",
			"Document Verification",
			"Medical Examination",
		},
		Placeholder: true,
	}
}

// capitalize upper-cases the first rune of w.
func capitalize(w string) string {
	r, n := utf8.DecodeRuneInString(w)
	if r == utf8.RuneError {
		return w
	}
	return string(unicode.ToUpper(r)) + w[n:]
}
