package detail

import (
	"reflect"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/sarkari/portal/internal/record"
	"github.com/sarkari/portal/internal/storage"
)

var testNow = time.Date(2025, 1, 15, 12, 0, 0, 0, time.UTC)

func seed(t *testing.T, rows map[record.Kind][]record.Record, coaching map[string][]record.Coaching) *Projector {
	t.Helper()
	b, err := storage.NewFileBackend(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileBackend failed: %v", err)
	}
	store := storage.NewStore(b)
	err = store.Update(t.Context(), func(tx *storage.Tx) error {
		for k, rs := range rows {
			for _, r := range rs {
				tx.Insert(k, r, false)
			}
		}
		if len(coaching) == 0 {
			return nil
		}
		tbl, err := tx.Coaching()
		if err != nil {
			return err
		}
		for title, c := range coaching {
			tbl.Set(title, c)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("seeding failed: %v", err)
	}
	return NewProjector(store, func() time.Time { return testNow })
}

var parentJob = record.Record{
	"id":                 "jobs_1",
	"title":              "SSC CGL 2025",
	"date":               "01-01-2025",
	"jobDescription":     "Combined graduate level",
	"applyOnlineUrl":     "https://ssc.gov.in/apply",
	"jobNotificationUrl": "https://ssc.gov.in/notice.pdf",
	"howToApplyUrl":      "https://ssc.gov.in/how",
	"startDate":          "02-01-2025",
	"lastDate":           "30-01-2025",
	"feeGeneral":         "₹100",
	"feeSCST":            "₹0",
	"totalVacancies":     "100",
	"vacancyGeneral":     "40",
	"vacancyOBC":         "30",
	"postName1":          "Inspector",
	"postEligibility1":   "Graduate",
	"postAgeLimit1":      "18-30",
	"postEligibility3":   "12th pass",
	"selectionProcess1":  "Tier 1",
	"selectionProcess3":  "Tier 2",
	"coachingName1":      "Adda", "coachingUrl1": "https://adda",
	"coachingName2": "Missing URL",
}

func TestProjectChild(t *testing.T) {
	p := seed(t, map[record.Kind][]record.Record{
		record.Job: {parentJob},
		record.Result: {{
			"id": "result_1", "jobId": "jobs_1", "title": "SSC CGL Result",
			"description": "Tier 1 result", "date": "05-03-2025",
		}},
		record.AdmitCard: {{
			"id": "admit-card-1", "jobId": "jobs_1", "title": "SSC CGL Admit Card",
			"url": "https://ssc.gov.in/admit", "date": "01-02-2025",
		}},
		record.AnswerKey: {{"id": "answer-key-1", "jobId": "jobs_404", "title": "Orphan Key"}},
	}, nil)
	want := fromJob(parentJob)

	t.Run("result", func(t *testing.T) {
		d, err := p.Project(t.Context(), "result_1")
		if err != nil {
			t.Fatalf("Project failed: %v", err)
		}
		if d.Type != "Result" || d.Title != "SSC CGL Result" || d.ShortTitle != d.Title {
			t.Errorf("type/title = %q/%q", d.Type, d.Title)
		}
		if d.Date != "05-03-2025" || d.Description != "Tier 1 result" {
			t.Errorf("date/description = %q/%q", d.Date, d.Description)
		}
		if d.DownloadLink != "https://ssc.gov.in/notice.pdf" {
			t.Errorf("DownloadLink = %q", d.DownloadLink)
		}
		if d.OfficialWebsite != "https://ssc.gov.in/how" {
			t.Errorf("OfficialWebsite = %q", d.OfficialWebsite)
		}
		if !reflect.DeepEqual(d.Vacancies, want.Vacancies) {
			t.Errorf("Vacancies = %+v, want %+v", d.Vacancies, want.Vacancies)
		}
		if !reflect.DeepEqual(d.ApplicationFee, want.ApplicationFee) {
			t.Errorf("ApplicationFee = %+v, want %+v", d.ApplicationFee, want.ApplicationFee)
		}
		if !reflect.DeepEqual(d.Posts, want.Posts) {
			t.Errorf("Posts = %+v, want %+v", d.Posts, want.Posts)
		}
		if d.Placeholder {
			t.Error("unexpected placeholder")
		}
	})
	t.Run("admit card", func(t *testing.T) {
		d, err := p.Project(t.Context(), "admit-card-1")
		if err != nil {
			t.Fatalf("Project failed: %v", err)
		}
		if d.Type != "Admit Card" || d.DownloadLink != "https://ssc.gov.in/admit" {
			t.Errorf("type/download = %q/%q", d.Type, d.DownloadLink)
		}
		if !reflect.DeepEqual(d.SelectionProcess, []string{"Tier 1", "Tier 2"}) {
			t.Errorf("SelectionProcess = %q", d.SelectionProcess)
		}
	})
	t.Run("missing parent", func(t *testing.T) {
		d, err := p.Project(t.Context(), "answer-key-1")
		if err != nil {
			t.Fatalf("Project failed: %v", err)
		}
		if !d.Placeholder || d.Title != "Orphan Key" || d.Type != "Answer Key" {
			t.Errorf("got %+v", d)
		}
	})
}

func TestProjectJob(t *testing.T) {
	p := seed(t, map[record.Kind][]record.Record{record.Job: {parentJob}},
		map[string][]record.Coaching{"SSC CGL 2025 Exam": {{Name: "Top", URL: "https://top"}}})
	d, err := p.Project(t.Context(), "jobs_1")
	if err != nil {
		t.Fatalf("Project failed: %v", err)
	}
	if d.ID != "jobs_1" || d.Type != "Job Notification" || d.Description != "Combined graduate level" {
		t.Errorf("got %+v", d)
	}
	wantPosts := []record.Post{
		{Index: 1, Name: "Inspector", Eligibility: "Graduate", AgeLimit: "18-30"},
		{Index: 3, Name: "Post 3", Eligibility: "12th pass"},
	}
	if !reflect.DeepEqual(d.Posts, wantPosts) {
		t.Errorf("Posts = %+v", d.Posts)
	}
	wantElig := []string{
		"Post 1: Inspector | Eligibility: Graduate | Age: 18-30",
		"Post 2: Post 3 | Eligibility: 12th pass | Age: ",
	}
	if !reflect.DeepEqual(d.Eligibility, wantElig) {
		t.Errorf("Eligibility = %q", d.Eligibility)
	}
	if len(d.ImportantDates) != 5 || d.ImportantDates[2] != (Event{"Admit Card Date", ""}) {
		t.Errorf("ImportantDates = %+v", d.ImportantDates)
	}
	wantVac := Vacancies{Total: "100", Categories: []Category{{"General", "40"}, {"OBC", "30"}}}
	if !reflect.DeepEqual(d.Vacancies, wantVac) {
		t.Errorf("Vacancies = %+v", d.Vacancies)
	}
	if !reflect.DeepEqual(d.Coachings, []record.Coaching{{Name: "Adda", URL: "https://adda"}}) {
		t.Errorf("Coachings = %+v", d.Coachings)
	}
	if len(d.TopCoachings) != 1 || d.TopCoachings[0].Name != "Top" {
		t.Errorf("TopCoachings = %+v", d.TopCoachings)
	}
}

func TestProjectRoots(t *testing.T) {
	p := seed(t, map[record.Kind][]record.Record{
		record.Yojana: {{
			"id": "yojana-1", "title": "PM Kisan", "yojanaDescription": "Income support",
			"startDate": "01-02-2025", "benefit1": "6000 a year", "benefit4": "Direct transfer",
			"document2": "Aadhaar", "criteria1": "Small farmers", "vacancyEWS": "5", "vacancyGeneral": "9",
		}},
		record.Internship: {{
			"id": "internship-1", "title": "Summer Intern", "postEligibility2": "B.Tech",
			"lastDate": "10-02-2025", "stipend1": "10000", "downloadLink": "https://d",
		}},
		record.Scholarship: {{
			"id": "scholarship-1", "title": "NTSE", "applyOnlineUrl": "ntse.gov.in",
			"officialWebsiteUrl": "http://ncert.nic.in",
		}},
	}, map[string][]record.Coaching{"PM Kisan": {{Name: "X", URL: "https://x"}}})

	t.Run("yojana", func(t *testing.T) {
		d, err := p.Project(t.Context(), "yojana-1")
		if err != nil {
			t.Fatalf("Project failed: %v", err)
		}
		if d.Type != "Sarkari Yojana" || d.Description != "Income support" {
			t.Errorf("got %+v", d)
		}
		if !reflect.DeepEqual(d.Benefits, []string{"6000 a year", "Direct transfer"}) {
			t.Errorf("Benefits = %q", d.Benefits)
		}
		if !reflect.DeepEqual(d.ImportantDates, []Event{{"Start Date", "01-02-2025"}}) {
			t.Errorf("ImportantDates = %+v", d.ImportantDates)
		}
		wantVac := []Category{{"General", "9"}, {"EWS", "5"}}
		if !reflect.DeepEqual(d.Vacancies.Categories, wantVac) {
			t.Errorf("Vacancies = %+v", d.Vacancies)
		}
		if d.TopCoachings != nil {
			t.Errorf("TopCoachings = %+v, want none for yojana", d.TopCoachings)
		}
	})
	t.Run("internship", func(t *testing.T) {
		d, err := p.Project(t.Context(), "internship-1")
		if err != nil {
			t.Fatalf("Project failed: %v", err)
		}
		if len(d.Posts) != 1 || d.Posts[0].Name != "General" {
			t.Errorf("Posts = %+v", d.Posts)
		}
		if !reflect.DeepEqual(d.StipendDetails, []record.Stipend{{Amount: "10000", Duration: "Not specified"}}) {
			t.Errorf("StipendDetails = %+v", d.StipendDetails)
		}
		if !reflect.DeepEqual(d.ImportantDates, []Event{{"Last Date", "10-02-2025"}}) {
			t.Errorf("ImportantDates = %+v", d.ImportantDates)
		}
		if d.DownloadLink != "https://d" || len(d.ApplicationFee) != 0 {
			t.Errorf("got %+v", d)
		}
	})
	t.Run("scholarship", func(t *testing.T) {
		d, err := p.Project(t.Context(), "scholarship-1")
		if err != nil {
			t.Fatalf("Project failed: %v", err)
		}
		if d.ApplyLink != "https://ntse.gov.in" || d.OfficialWebsite != "http://ncert.nic.in" || d.DownloadLink != "" {
			t.Errorf("links = %q %q %q", d.ApplyLink, d.OfficialWebsite, d.DownloadLink)
		}
		if d.Type != "Scholarship Test" {
			t.Errorf("Type = %q", d.Type)
		}
	})
}

func TestPlaceholder(t *testing.T) {
	p := seed(t, nil, nil)
	d, err := p.Project(t.Context(), "xyz-999")
	if err != nil {
		t.Fatalf("Project failed: %v", err)
	}
	if d.Type != "Job Notification" || d.Title != "Xyz 999" || !d.Placeholder {
		t.Errorf("got type %q title %q", d.Type, d.Title)
	}
	if d.OfficialWebsite != "https://www.xyz.gov.in" || d.ApplyLink != "https://www.xyz.gov.in/apply" {
		t.Errorf("links = %q %q", d.OfficialWebsite, d.ApplyLink)
	}
	if d.ApplicationEndDate != "14-02-2025" || d.ExamDate != "15-03-2025" || d.ResultDate != "15-04-2025" {
		t.Errorf("dates = %q %q %q", d.ApplicationEndDate, d.ExamDate, d.ResultDate)
	}
	if len(d.ImportantDates) != 6 || d.ImportantDates[3].Date != "05-03-2025" {
		t.Errorf("ImportantDates = %+v", d.ImportantDates)
	}

	tests := []struct {
		id, want string
	}{
		{"upsc-admit-2025", "Admit Card"},
		{"ssc-result", "Result"},
		{"neet-answer-key", "Answer Key"},
		{"pm-yojana", "Sarkari Yojana"},
		{"isro-internship", "Internship"},
		{"ntse-scholarship", "Scholarship Test"},
		{"answer", "Job Notification"},
	}
	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			if got := PlaceholderType(tt.id); got != tt.want {
				t.Errorf("PlaceholderType(%q) = %q, want %q", tt.id, got, tt.want)
			}
		})
	}
}

func TestPlaceholderTitle(t *testing.T) {
	tests := []struct {
		id, want string
	}{
		{"xyz-999", "Xyz 999"},
		{"élection-2024", "Élection 2024"},
		{"upsc--cse", "Upsc  Cse"},
		{"ñ", "Ñ"},
	}
	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			got := PlaceholderTitle(tt.id)
			if got != tt.want {
				t.Errorf("PlaceholderTitle(%q) = %q, want %q", tt.id, got, tt.want)
			}
			if !utf8.ValidString(got) {
				t.Errorf("PlaceholderTitle(%q) is not valid UTF-8", tt.id)
			}
		})
	}
}
