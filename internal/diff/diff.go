// Package diff compares a freshly fetched feed document with the last
// snapshot of the same feed.
package diff

import "github.com/amishk599/feedwatch/internal/model"

// Diff reports every record in current that is new or whose updateDate
// differs from the previous snapshot. A nil previous means there was no
// snapshot, so everything is new.
//
// Records are matched by subject with a linear scan; the first previous
// record with the same subject wins. Records that disappeared from current
// are not reported. Output follows the order of current.
func Diff(current, previous []model.Record) []model.Change {
	var changes []model.Change
	for _, rec := range current {
		prev, ok := findBySubject(previous, rec.Subject)
		switch {
		case !ok:
			changes = append(changes, model.Change{Record: rec, Kind: model.ChangeNew})
		case prev.UpdateDate != rec.UpdateDate:
			changes = append(changes, model.Change{Record: rec, Kind: model.ChangeUpdated})
		}
	}
	return changes
}

func findBySubject(records []model.Record, subject string) (model.Record, bool) {
	for _, r := range records {
		if r.Subject == subject {
			return r, true
		}
	}
	return model.Record{}, false
}

// Removed returns the records of previous whose subject no longer appears in
// current, in previous order.
func Removed(current, previous []model.Record) []model.Record {
	present := make(map[string]struct{}, len(current))
	for _, r := range current {
		present[r.Subject] = struct{}{}
	}

	var removed []model.Record
	for _, r := range previous {
		if _, ok := present[r.Subject]; !ok {
			removed = append(removed, r)
		}
	}
	return removed
}

// DuplicateSubjects lists subjects that occur more than once, each reported
// once, in order of first occurrence.
func DuplicateSubjects(records []model.Record) []string {
	counts := make(map[string]int, len(records))
	for _, r := range records {
		counts[r.Subject]++
	}

	var dups []string
	for _, r := range records {
		if counts[r.Subject] > 1 {
			dups = append(dups, r.Subject)
			counts[r.Subject] = 0
		}
	}
	return dups
}
