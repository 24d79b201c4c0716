// Package reconcile computes the delta between the current cart and a
// desired line set, so a bulk order can be applied with the minimum
// number of gateway mutations instead of clearing and rebuilding.
package reconcile

import "mediequip-storefront/internal/model"

// LineDiff describes the mutations needed to reconcile cart lines.
// Operations should be applied in order: Remove → Update → Add
// to prevent conflicts (e.g., updating a removed line).
type LineDiff struct {
	ToAdd    []model.LineInput  // Variants in desired but not current
	ToUpdate []model.LineUpdate // Variants in both with different quantities
	ToRemove []string           // Line identifiers in current but not desired
}

// IsEmpty returns true if no cart changes are needed.
func (d *LineDiff) IsEmpty() bool {
	return len(d.ToAdd) == 0 && len(d.ToUpdate) == 0 && len(d.ToRemove) == 0
}

// DesiredLine is one entry of the desired cart state, as submitted on
// the bulk order form or by an agent.
type DesiredLine struct {
	VariantID string
	Quantity  int
}

// DiffLines computes the delta between the current cart lines and the
// desired set. Matching is by variant identifier; the server-assigned
// line identifier is only carried through for update and remove calls.
//
// Desired entries with a quantity below one are treated as absent, so a
// zero-quantity row removes the matching line. Duplicate variant rows
// collapse to the last occurrence.
func DiffLines(current []model.CartLine, desired []DesiredLine) *LineDiff {
	diff := &LineDiff{}

	currentByVariant := make(map[string]model.CartLine, len(current))
	for _, line := range current {
		currentByVariant[line.VariantID] = line
	}

	desiredByVariant := make(map[string]DesiredLine, len(desired))
	for _, d := range desired {
		if d.Quantity < 1 {
			continue
		}
		desiredByVariant[d.VariantID] = d
	}

	// Walk the submission order for adds and updates; map iteration
	// would make the mutation sequence nondeterministic.
	seen := make(map[string]bool, len(desired))
	for _, d := range desired {
		want, ok := desiredByVariant[d.VariantID]
		if !ok || seen[d.VariantID] {
			continue
		}
		seen[d.VariantID] = true

		line, exists := currentByVariant[d.VariantID]
		if !exists {
			diff.ToAdd = append(diff.ToAdd, model.LineInput{
				VariantID: want.VariantID,
				Quantity:  want.Quantity,
			})
			continue
		}
		if line.Quantity != want.Quantity {
			diff.ToUpdate = append(diff.ToUpdate, model.LineUpdate{
				LineID:   line.LineID,
				Quantity: want.Quantity,
			})
		}
	}

	for _, line := range current {
		if _, exists := desiredByVariant[line.VariantID]; !exists {
			diff.ToRemove = append(diff.ToRemove, line.LineID)
		}
	}

	return diff
}
