package openregister

import (
	"context"
	"sort"
)

// RecordChange describes a record present on both sides whose values differ.
type RecordChange struct {
	// ID is the record id.
	ID string `json:"id"`

	// Fields lists the normalized names of the fields that differ.
	Fields []string `json:"fields"`
}

// RecordsDiff describes the differences between two record sets of a register,
// typically the same register on two phases.
//
// Example usage:
//
//	diff, err := catalog.DiffPhases(ctx, "country", "alpha", "beta")
//	if err != nil {
//	    return err
//	}
//	if !diff.IsEmpty() {
//	    fmt.Printf("Changes: %d added, %d removed, %d changed\n",
//	        len(diff.Added), len(diff.Removed), len(diff.Changed))
//	}
type RecordsDiff struct {
	// Added contains ids present in new but not in old.
	Added []string `json:"added,omitempty"`

	// Removed contains ids present in old but not in new.
	Removed []string `json:"removed,omitempty"`

	// Changed contains records whose declared field values differ.
	Changed []RecordChange `json:"changed,omitempty"`
}

// IsEmpty returns true if there are no differences.
func (d *RecordsDiff) IsEmpty() bool {
	return len(d.Added) == 0 && len(d.Removed) == 0 && len(d.Changed) == 0
}

// TotalChanges returns the total number of changes (added + removed + changed).
func (d *RecordsDiff) TotalChanges() int {
	return len(d.Added) + len(d.Removed) + len(d.Changed)
}

// DiffRecords computes the difference between two record sets.
//
// Only declared fields are compared; system fields such as entry_number
// differ between phases by construction. A field declared on one side only
// counts as changed when the other side's value is non-blank.
//
// nil is treated as empty. Results are sorted by record id.
func DiffRecords(old, new *Records) *RecordsDiff {
	diff := &RecordsDiff{}
	if old == nil {
		old = &Records{}
	}
	if new == nil {
		new = &Records{}
	}

	for _, id := range new.ids {
		newRec := new.byID[id]
		oldRec, existedBefore := old.byID[id]
		if !existedBefore {
			diff.Added = append(diff.Added, id)
			continue
		}
		if fields := changedFields(oldRec, newRec); len(fields) > 0 {
			diff.Changed = append(diff.Changed, RecordChange{ID: id, Fields: fields})
		}
	}

	for _, id := range old.ids {
		if _, existsNow := new.byID[id]; !existsNow {
			diff.Removed = append(diff.Removed, id)
		}
	}

	sort.Strings(diff.Added)
	sort.Strings(diff.Removed)
	sort.Slice(diff.Changed, func(i, j int) bool {
		return diff.Changed[i].ID < diff.Changed[j].ID
	})

	return diff
}

// changedFields returns the declared fields whose raw values differ.
func changedFields(old, new *Record) []string {
	seen := make(map[string]bool)
	var changed []string

	compare := func(name string, v *FieldValue) {
		if seen[name] || v.Field().Kind() == SystemField {
			return
		}
		seen[name] = true

		var oldRaw, newRaw string
		if ov, ok := old.values[name]; ok {
			oldRaw = ov.Raw()
		}
		if nv, ok := new.values[name]; ok {
			newRaw = nv.Raw()
		}
		if oldRaw != newRaw {
			changed = append(changed, name)
		}
	}

	for name, v := range old.All() {
		compare(name, v)
	}
	for name, v := range new.All() {
		compare(name, v)
	}
	return changed
}

// DiffPhases compares a register's records between two phases.
func (c *Catalog) DiffPhases(ctx context.Context, name, fromPhase, toPhase string) (*RecordsDiff, error) {
	from, err := c.Register(ctx, fromPhase, name)
	if err != nil {
		return nil, err
	}
	to, err := c.Register(ctx, toPhase, name)
	if err != nil {
		return nil, err
	}

	oldRecords, err := from.Records(ctx)
	if err != nil {
		return nil, err
	}
	newRecords, err := to.Records(ctx)
	if err != nil {
		return nil, err
	}

	return DiffRecords(oldRecords, newRecords), nil
}
