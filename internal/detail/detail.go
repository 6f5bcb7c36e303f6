// Projects any stored record, joined with its parent job, into one display shape.

// Package detail builds the uniform detail view served for every record id.
package detail

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/sarkari/portal/internal/record"
	"github.com/sarkari/portal/internal/storage"
)

// Detail is the display-ready view of a record.
type Detail struct {
	ID                   string            `json:"id"`
	Title                string            `json:"title"`
	ShortTitle           string            `json:"shortTitle"`
	Type                 string            `json:"type"`
	Date                 string            `json:"date"`
	Description          string            `json:"description"`
	ApplyLink            string            `json:"applyLink"`
	DownloadLink         string            `json:"downloadLink"`
	OfficialWebsite      string            `json:"officialWebsite"`
	ApplicationStartDate string            `json:"applicationStartDate"`
	ApplicationEndDate   string            `json:"applicationEndDate"`
	ExamDate             string            `json:"examDate"`
	ResultDate           string            `json:"resultDate"`
	Posts                []record.Post     `json:"posts"`
	Eligibility          []string          `json:"eligibility"`
	ImportantDates       []Event           `json:"importantDates"`
	ApplicationFee       []Fee             `json:"applicationFee"`
	Vacancies            Vacancies         `json:"vacancies"`
	SelectionProcess     []string          `json:"selectionProcess"`
	Coachings            []record.Coaching `json:"coachings"`
	TopCoachings         []record.Coaching `json:"topCoachings"`
	Benefits             []string          `json:"benefits,omitempty"`
	Documents            []string          `json:"documents,omitempty"`
	Criteria             []string          `json:"criteria,omitempty"`
	StipendDetails       []record.Stipend  `json:"stipendDetails"`
	// Placeholder is set when the view was synthesized from the id alone.
	Placeholder bool `json:"placeholder,omitempty"`
}

// Event is a dated milestone.
type Event struct {
	Event string `json:"event"`
	Date  string `json:"date"`
}

// Fee is the application fee of one candidate category.
type Fee struct {
	Category string `json:"category"`
	Fee      string `json:"fee"`
}

// Vacancies is the seat breakdown. Categories without a count are omitted.
type Vacancies struct {
	Total      string     `json:"total,omitempty"`
	Categories []Category `json:"categories,omitempty"`
}

// Category is the seat count of one candidate category.
type Category struct {
	Name  string `json:"name"`
	Count string `json:"count"`
}

// Vacancy field names in display order for jobs and their children.
var jobVacancyFields = []Category{
	{"General", "vacancyGeneral"},
	{"EWS", "vacancyEWS"},
	{"OBC", "vacancyOBC"},
	{"SC", "vacancySC"},
	{"ST", "vacancyST"},
	{"PwD", "vacancyPwD"},
}

// Vacancy field names in display order for yojanas and internships.
var schemeVacancyFields = []Category{
	{"General", "vacancyGeneral"},
	{"OBC", "vacancyOBC"},
	{"SC", "vacancySC"},
	{"ST", "vacancyST"},
	{"EWS", "vacancyEWS"},
	{"PwD", "vacancyPwD"},
}

// Projector builds details from a Repository.
type Projector struct {
	repo storage.Repository
	now  func() time.Time
}

// NewProjector returns a Projector. A nil now uses time.Now.
func NewProjector(repo storage.Repository, now func() time.Time) *Projector {
	if now == nil {
		now = time.Now
	}
	return &Projector{repo: repo, now: now}
}

// Project returns the detail of id.
//
// Unknown ids are not an error: they yield a placeholder derived from the id.
// Only storage failures are returned.
func (p *Projector) Project(ctx context.Context, id string) (*Detail, error) {
	k, r, err := p.repo.Resolve(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		slog.DebugContext(ctx, "Unknown detail id", "id", id)
		return Placeholder(id, "", p.now()), nil
	}
	if err != nil {
		return nil, err
	}
	var d *Detail
	switch k {
	case record.Result, record.AdmitCard, record.AnswerKey:
		job, err := p.repo.Get(ctx, record.Job, r.JobID())
		if errors.Is(err, storage.ErrNotFound) {
			slog.DebugContext(ctx, "Parent job missing", "id", id, "jobId", r.JobID())
			return Placeholder(id, r.Title(), p.now()), nil
		}
		if err != nil {
			return nil, err
		}
		d = fromChild(k, r, job)
	case record.Job:
		d = fromJob(r)
	case record.Yojana:
		d = fromYojana(r)
	case record.Internship:
		d = fromInternship(r)
	case record.Scholarship:
		d = fromScholarship(r)
	default:
		return nil, fmt.Errorf("unexpected kind %v for %q", k, id)
	}
	d.ID = id
	if k != record.Yojana {
		table, err := p.repo.Coaching(ctx)
		if err != nil {
			return nil, err
		}
		d.TopCoachings = table.Top(d.ShortTitle)
	}
	return d, nil
}

// fromJob projects a job. Children reuse it for the fields they inherit.
func fromJob(job record.Record) *Detail {
	posts := numberedPosts(job, func(i int) string { return fmt.Sprintf("Post %d", i) })
	return &Detail{
		Title:                job.Title(),
		ShortTitle:           job.Title(),
		Type:                 record.Job.Label(),
		Date:                 job.Date(),
		Description:          job.Get("jobDescription"),
		ApplyLink:            job.Get("applyOnlineUrl"),
		DownloadLink:         job.Get("jobNotificationUrl"),
		OfficialWebsite:      firstOf(job.Get("officialWebsiteUrl"), job.Get("howToApplyUrl")),
		ApplicationStartDate: job.Get("startDate"),
		ApplicationEndDate:   job.Get("lastDate"),
		ExamDate:             job.Get("examDate"),
		ResultDate:           job.Get("resultDate"),
		Posts:                posts,
		Eligibility:          eligibility(posts),
		ImportantDates:       jobDates(job),
		ApplicationFee:       fees(job),
		Vacancies:            vacancies(job, jobVacancyFields),
		SelectionProcess:     record.List(job, record.BaseSelection, record.MaxSelectionSteps),
		Coachings:            record.Coachings(job),
	}
}

// fromChild projects a result, admit card or answer key joined with its job.
// Title, description, date and the download link come from the child.
func fromChild(k record.Kind, child, job record.Record) *Detail {
	d := fromJob(job)
	d.Type = k.Label()
	d.Title = child.Title()
	d.ShortTitle = child.Title()
	d.Description = child.Get(record.FieldDescription)
	d.Date = child.Date()
	if k == record.AdmitCard {
		d.DownloadLink = child.Get(record.FieldURL)
	} else {
		d.DownloadLink = firstOf(child.Get(record.FieldURL), job.Get("jobNotificationUrl"))
	}
	return d
}

func fromYojana(y record.Record) *Detail {
	posts := numberedPosts(y, func(i int) string { return fmt.Sprintf("Post %d", i) })
	var dates []Event
	dates = appendEvent(dates, "Start Date", y.Get("startDate"))
	dates = appendEvent(dates, "Last Date", y.Get("lastDate"))
	return &Detail{
		Title:                y.Title(),
		ShortTitle:           y.Title(),
		Type:                 record.Yojana.Label(),
		Date:                 y.Date(),
		Description:          y.Get("yojanaDescription"),
		ApplyLink:            y.Get("applyOnlineUrl"),
		DownloadLink:         y.Get("yojanaNotificationUrl"),
		OfficialWebsite:      y.Get("officialWebsiteUrl"),
		ApplicationStartDate: y.Get("startDate"),
		ApplicationEndDate:   y.Get("lastDate"),
		Posts:                posts,
		Eligibility:          eligibility(posts),
		ImportantDates:       dates,
		ApplicationFee:       []Fee{},
		Vacancies:            vacancies(y, schemeVacancyFields),
		SelectionProcess:     record.List(y, record.BaseSelection, record.MaxSelectionSteps),
		Coachings:            record.Coachings(y),
		Benefits:             record.List(y, record.BaseBenefit, record.MaxListItems),
		Documents:            record.List(y, record.BaseDocument, record.MaxListItems),
		Criteria:             record.List(y, record.BaseCriteria, record.MaxListItems),
	}
}

func fromInternship(r record.Record) *Detail {
	posts := numberedPosts(r, func(int) string { return "General" })
	var dates []Event
	dates = appendEvent(dates, "Application Start", r.Get("startDate"))
	dates = appendEvent(dates, "Last Date", r.Get("lastDate"))
	dates = appendEvent(dates, "Exam Date", r.Get("examDate"))
	dates = appendEvent(dates, "Result Date", r.Get("resultDate"))
	return &Detail{
		Title:                r.Title(),
		ShortTitle:           r.Title(),
		Type:                 record.Internship.Label(),
		Date:                 r.Date(),
		Description:          r.Get("jobDescription"),
		ApplyLink:            r.Get("applyOnlineUrl"),
		DownloadLink:         r.Get("downloadLink"),
		OfficialWebsite:      r.Get("officialWebsiteUrl"),
		ApplicationStartDate: r.Get("startDate"),
		ApplicationEndDate:   r.Get("lastDate"),
		ExamDate:             r.Get("examDate"),
		ResultDate:           r.Get("resultDate"),
		Posts:                posts,
		Eligibility:          eligibility(posts),
		ImportantDates:       dates,
		ApplicationFee:       []Fee{},
		Vacancies:            vacancies(r, schemeVacancyFields),
		SelectionProcess:     record.List(r, record.BaseSelection, record.MaxSelectionSteps),
		Coachings:            record.Coachings(r),
		StipendDetails:       record.Stipends(r),
	}
}

// fromScholarship projects a scholarship test. Links stored without a scheme
// get https://.
func fromScholarship(r record.Record) *Detail {
	d := fromJob(r)
	d.Type = record.Scholarship.Label()
	d.ApplyLink = withScheme(r.Get("applyOnlineUrl"))
	d.DownloadLink = withScheme(r.Get("scholarshipNotificationUrl"))
	d.OfficialWebsite = withScheme(r.Get("officialWebsiteUrl"))
	return d
}

// numberedPosts returns the filled post slots, naming unnamed ones with
// fallback(slot index).
func numberedPosts(r record.Record, fallback func(int) string) []record.Post {
	posts := record.Posts(r)
	for i := range posts {
		if posts[i].Name == "" {
			posts[i].Name = fallback(posts[i].Index)
		}
	}
	return posts
}

func eligibility(posts []record.Post) []string {
	out := make([]string, 0, len(posts))
	for i, p := range posts {
		out = append(out, fmt.Sprintf("Post %d: %s | Eligibility: %s | Age: %s", i+1, p.Name, p.Eligibility, p.AgeLimit))
	}
	return out
}

func jobDates(r record.Record) []Event {
	return []Event{
		{"Start Date", r.Get("startDate")},
		{"Last Date", r.Get("lastDate")},
		{"Admit Card Date", r.Get("admitCardDate")},
		{"Exam Date", r.Get("examDate")},
		{"Result Date", r.Get("resultDate")},
	}
}

func appendEvent(events []Event, name, date string) []Event {
	if date == "" {
		return events
	}
	return append(events, Event{name, date})
}

func fees(r record.Record) []Fee {
	return []Fee{
		{"General/EWS", r.Get("feeGeneral")},
		{"OBC", r.Get("feeOBC")},
		{"SC/ST/PwD", r.Get("feeSCST")},
	}
}

// vacancies reads the total and the non-empty category counts. fields maps
// display names (Name) to record fields (Count).
func vacancies(r record.Record, fields []Category) Vacancies {
	v := Vacancies{Total: r.Get("totalVacancies")}
	for _, f := range fields {
		if c := r.Get(f.Count); c != "" {
			v.Categories = append(v.Categories, Category{Name: f.Name, Count: c})
		}
	}
	return v
}

func withScheme(u string) string {
	if u == "" || strings.HasPrefix(u, "http") {
		return u
	}
	return "https://" + u
}

func firstOf(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
