// Keeps the title-keyed coaching table in step with job saves and deletes.

package content

import (
	"strings"

	"github.com/sarkari/portal/internal/record"
	"github.com/sarkari/portal/internal/storage"
)

// linkCoaching replaces the coaching entry stored under title with the
// complete name/url pairs of job. With no complete pair the key is removed.
// An untitled job is never linked.
//
// The table is keyed by title, so renaming a job leaves the old key behind
// unless a later delete matches it.
func linkCoaching(tx *storage.Tx, title string, job record.Record) error {
	if strings.TrimSpace(title) == "" {
		return nil
	}
	tbl, err := tx.Coaching()
	if err != nil {
		return err
	}
	tbl.Set(title, record.Coachings(job))
	return nil
}

// unlinkCoaching removes the first coaching key matching title, exactly
// after normalization or else by containment. It reports whether a key was
// removed.
func unlinkCoaching(tx *storage.Tx, title string) (bool, error) {
	if title == "" {
		return false, nil
	}
	tbl, err := tx.Coaching()
	if err != nil {
		return false, err
	}
	key, ok := tbl.Match(title)
	if !ok {
		return false, nil
	}
	return tbl.Delete(key), nil
}
