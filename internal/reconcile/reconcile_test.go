package reconcile

import (
	"testing"

	"mediequip-storefront/internal/model"
)

func line(lineID, variantID string, qty int) model.CartLine {
	return model.CartLine{LineID: lineID, VariantID: variantID, Quantity: qty}
}

func TestDiffLines(t *testing.T) {
	tests := []struct {
		name       string
		current    []model.CartLine
		desired    []DesiredLine
		wantAdd    []model.LineInput
		wantUpdate []model.LineUpdate
		wantRemove []string
	}{
		{
			name:    "empty to empty",
			current: nil,
			desired: nil,
		},
		{
			name:    "all adds on empty cart",
			current: nil,
			desired: []DesiredLine{{VariantID: "v1", Quantity: 2}, {VariantID: "v2", Quantity: 1}},
			wantAdd: []model.LineInput{
				{VariantID: "v1", Quantity: 2},
				{VariantID: "v2", Quantity: 1},
			},
		},
		{
			name:       "empty desired removes everything",
			current:    []model.CartLine{line("l1", "v1", 2), line("l2", "v2", 1)},
			desired:    nil,
			wantRemove: []string{"l1", "l2"},
		},
		{
			name:       "quantity change updates by line id",
			current:    []model.CartLine{line("l1", "v1", 2)},
			desired:    []DesiredLine{{VariantID: "v1", Quantity: 5}},
			wantUpdate: []model.LineUpdate{{LineID: "l1", Quantity: 5}},
		},
		{
			name:    "unchanged quantity is a no-op",
			current: []model.CartLine{line("l1", "v1", 2)},
			desired: []DesiredLine{{VariantID: "v1", Quantity: 2}},
		},
		{
			name:    "mixed add update remove",
			current: []model.CartLine{line("l1", "v1", 2), line("l2", "v2", 1)},
			desired: []DesiredLine{{VariantID: "v1", Quantity: 3}, {VariantID: "v3", Quantity: 4}},
			wantAdd: []model.LineInput{{VariantID: "v3", Quantity: 4}},
			wantUpdate: []model.LineUpdate{
				{LineID: "l1", Quantity: 3},
			},
			wantRemove: []string{"l2"},
		},
		{
			name:       "zero quantity removes the matching line",
			current:    []model.CartLine{line("l1", "v1", 2)},
			desired:    []DesiredLine{{VariantID: "v1", Quantity: 0}},
			wantRemove: []string{"l1"},
		},
		{
			name:    "negative quantity never adds",
			current: nil,
			desired: []DesiredLine{{VariantID: "v1", Quantity: -3}},
		},
		{
			name:    "duplicate variant rows collapse to last",
			current: nil,
			desired: []DesiredLine{{VariantID: "v1", Quantity: 1}, {VariantID: "v1", Quantity: 4}},
			wantAdd: []model.LineInput{{VariantID: "v1", Quantity: 4}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			diff := DiffLines(tt.current, tt.desired)

			if len(diff.ToAdd) != len(tt.wantAdd) {
				t.Fatalf("ToAdd = %v, want %v", diff.ToAdd, tt.wantAdd)
			}
			for i, want := range tt.wantAdd {
				if diff.ToAdd[i] != want {
					t.Errorf("ToAdd[%d] = %v, want %v", i, diff.ToAdd[i], want)
				}
			}

			if len(diff.ToUpdate) != len(tt.wantUpdate) {
				t.Fatalf("ToUpdate = %v, want %v", diff.ToUpdate, tt.wantUpdate)
			}
			for i, want := range tt.wantUpdate {
				if diff.ToUpdate[i] != want {
					t.Errorf("ToUpdate[%d] = %v, want %v", i, diff.ToUpdate[i], want)
				}
			}

			if len(diff.ToRemove) != len(tt.wantRemove) {
				t.Fatalf("ToRemove = %v, want %v", diff.ToRemove, tt.wantRemove)
			}
			for i, want := range tt.wantRemove {
				if diff.ToRemove[i] != want {
					t.Errorf("ToRemove[%d] = %q, want %q", i, diff.ToRemove[i], want)
				}
			}

			wantEmpty := len(tt.wantAdd)+len(tt.wantUpdate)+len(tt.wantRemove) == 0
			if diff.IsEmpty() != wantEmpty {
				t.Errorf("IsEmpty() = %v, want %v", diff.IsEmpty(), wantEmpty)
			}
		})
	}
}
