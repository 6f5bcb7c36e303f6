// Describes the seven record kinds and dispatches ids to their kind.

package record

import "strings"

// Kind identifies a collection of the record document.
type Kind int

// Record kinds.
const (
	Job Kind = iota
	AdmitCard
	Result
	AnswerKey
	Yojana
	Internship
	Scholarship

	numKinds = iota
)

type kindInfo struct {
	collection string
	prefixes   []string // first entry is used for new ids
	label      string
	child      bool
}

var kindTable = [numKinds]kindInfo{
	Job:         {collection: "jobs", prefixes: []string{"jobs_"}, label: "Job Notification"},
	AdmitCard:   {collection: "admitCards", prefixes: []string{"admit-card-"}, label: "Admit Card", child: true},
	Result:      {collection: "results", prefixes: []string{"result_"}, label: "Result", child: true},
	AnswerKey:   {collection: "answerKeys", prefixes: []string{"answer-key-"}, label: "Answer Key", child: true},
	Yojana:      {collection: "sarkariYojana", prefixes: []string{"yojana-"}, label: "Sarkari Yojana"},
	Internship:  {collection: "internships", prefixes: []string{"internship-"}, label: "Internship"},
	Scholarship: {collection: "scholarshipTests", prefixes: []string{"scholarship-", "scholarship_"}, label: "Scholarship Test"},
}

// Kinds returns every kind in document order.
func Kinds() []Kind {
	return []Kind{Job, AdmitCard, Result, AnswerKey, Yojana, Internship, Scholarship}
}

// ResolveOrder returns the kinds in the order used to break ties when an id
// is present in more than one collection.
func ResolveOrder() []Kind {
	return []Kind{Yojana, Result, AdmitCard, AnswerKey, Job, Scholarship, Internship}
}

// Valid reports whether k is a known kind.
func (k Kind) Valid() bool {
	return k >= 0 && k < numKinds
}

// Collection returns the document key holding records of this kind.
func (k Kind) Collection() string {
	if !k.Valid() {
		return ""
	}
	return kindTable[k].collection
}

// Prefix returns the id prefix used for newly allocated ids.
func (k Kind) Prefix() string {
	if !k.Valid() {
		return ""
	}
	return kindTable[k].prefixes[0]
}

// Label returns the human readable type shown on detail pages.
func (k Kind) Label() string {
	if !k.Valid() {
		return ""
	}
	return kindTable[k].label
}

// IsChild reports whether records of this kind reference a parent job.
func (k Kind) IsChild() bool {
	return k.Valid() && kindTable[k].child
}

func (k Kind) String() string {
	return k.Collection()
}

// KindOf returns the kind whose id prefix starts id.
func KindOf(id string) (Kind, bool) {
	for _, k := range Kinds() {
		for _, p := range kindTable[k].prefixes {
			if strings.HasPrefix(id, p) {
				return k, true
			}
		}
	}
	return 0, false
}

// ParseCollection returns the kind stored under the given document key.
func ParseCollection(name string) (Kind, bool) {
	for _, k := range Kinds() {
		if kindTable[k].collection == name {
			return k, true
		}
	}
	return 0, false
}
