// Package reconcile diffs a posted child collection against the rows already stored
// for a parent and decides what to update, insert and delete.
package reconcile

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// RowInput is one posted child row. ID 0 means the row is new.
type RowInput[T any] struct {
	ID     uint
	Values T
}

// PersistedRow is a child row as currently stored.
type PersistedRow[T any] struct {
	ID     uint
	Values T
}

// ReferenceChecker reports whether a stored row is still referenced elsewhere
// and therefore must not be deleted.
type ReferenceChecker func(ctx context.Context, id uint) (bool, error)

// Skipped describes a posted row that was ignored.
type Skipped struct {
	Index  int    `json:"index"`
	ID     uint   `json:"id,omitempty"`
	Reason string `json:"reason"`
}

// Plan is the set of writes needed to make storage match the posted rows.
type Plan[T any] struct {
	Updates   []RowInput[T]
	Inserts   []T
	Deletions []uint
	// Retained holds rows that were not re-posted but are referenced, so they stay.
	Retained []uint
	Skipped  []Skipped
}

// Empty is true when applying the plan would change nothing.
func (p Plan[T]) Empty() bool {
	return len(p.Updates) == 0 && len(p.Inserts) == 0 && len(p.Deletions) == 0
}

// Reconcile computes the plan. Rows failing struct validation are skipped and
// never fail the call; a skipped row that names a stored ID still keeps that row.
// Only reference checker errors are returned.
func Reconcile[T comparable](ctx context.Context, posted []RowInput[T], existing []PersistedRow[T], referenced ReferenceChecker) (Plan[T], error) {
	var plan Plan[T]

	stored := make(map[uint]T, len(existing))
	for _, row := range existing {
		stored[row.ID] = row.Values
	}

	covered := make(map[uint]bool, len(posted))
	for i, row := range posted {
		if row.ID > 0 && covered[row.ID] {
			plan.Skipped = append(plan.Skipped, Skipped{Index: i, ID: row.ID, Reason: "duplicate id"})
			continue
		}

		current, known := stored[row.ID]
		if row.ID > 0 && known {
			covered[row.ID] = true
		}

		if err := validate.Struct(row.Values); err != nil {
			plan.Skipped = append(plan.Skipped, Skipped{Index: i, ID: row.ID, Reason: describe(err)})
			continue
		}

		switch {
		case row.ID > 0 && known:
			if current != row.Values {
				plan.Updates = append(plan.Updates, row)
			}
		default:
			plan.Inserts = append(plan.Inserts, row.Values)
		}
	}

	for _, row := range existing {
		if covered[row.ID] {
			continue
		}
		inUse, err := referenced(ctx, row.ID)
		if err != nil {
			return Plan[T]{}, fmt.Errorf("check references of row %d: %w", row.ID, err)
		}
		if inUse {
			plan.Retained = append(plan.Retained, row.ID)
			continue
		}
		plan.Deletions = append(plan.Deletions, row.ID)
	}

	return plan, nil
}

func describe(err error) string {
	verrs, ok := err.(validator.ValidationErrors)
	if !ok || len(verrs) == 0 {
		return err.Error()
	}
	fe := verrs[0]
	if fe.Param() != "" {
		return fmt.Sprintf("%s failed %s=%s", fe.Field(), fe.Tag(), fe.Param())
	}
	return fmt.Sprintf("%s failed %s", fe.Field(), fe.Tag())
}
