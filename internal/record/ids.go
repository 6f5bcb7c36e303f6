// Allocates per-collection sequential identifiers.

package record

import (
	"regexp"
	"strconv"
)

var idPatterns = [numKinds]*regexp.Regexp{
	Job:         regexp.MustCompile(`^jobs_(\d+)$`),
	AdmitCard:   regexp.MustCompile(`^admit-card-(\d+)$`),
	Result:      regexp.MustCompile(`^result_(\d+)$`),
	AnswerKey:   regexp.MustCompile(`^answer-key-(\d+)$`),
	Yojana:      regexp.MustCompile(`^yojana-(\d+)$`),
	Internship:  regexp.MustCompile(`^internship-(\d+)$`),
	Scholarship: regexp.MustCompile(`^scholarship[-_](\d+)$`),
}

// Sequence returns the numeric suffix of id for kind k.
func Sequence(k Kind, id string) (int, bool) {
	if !k.Valid() {
		return 0, false
	}
	m := idPatterns[k].FindStringSubmatch(id)
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return n, true
}

// NextID returns the id following the highest sequence number among rows.
//
// Ids that do not match the kind's pattern are ignored. Nothing is persisted,
// so removing the highest record frees its id for reuse.
func NextID(k Kind, rows []Record) string {
	highest := 0
	for _, r := range rows {
		if n, ok := Sequence(k, r.ID()); ok && n > highest {
			highest = n
		}
	}
	return k.Prefix() + strconv.Itoa(highest+1)
}
