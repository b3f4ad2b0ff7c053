package patient

import (
	"fmt"
	"sort"
)

// SortField names a numeric patient field usable for ordering.
type SortField string

const (
	SortByHeight SortField = "height"
	SortByWeight SortField = "weight"
	SortByBMI    SortField = "bmi"
)

// SortOrder is the ordering direction.
type SortOrder string

const (
	OrderAsc  SortOrder = "asc"
	OrderDesc SortOrder = "desc"
)

// ValidSortFields lists the accepted sort_by values in display order.
var ValidSortFields = []SortField{SortByHeight, SortByWeight, SortByBMI}

// ParseSortField validates a sort_by query value.
func ParseSortField(s string) (SortField, error) {
	for _, f := range ValidSortFields {
		if string(f) == s {
			return f, nil
		}
	}
	return "", fmt.Errorf("%w: invalid field selected from %v", ErrBadQuery, ValidSortFields)
}

// ParseSortOrder validates an order query value. Empty means ascending.
func ParseSortOrder(s string) (SortOrder, error) {
	switch SortOrder(s) {
	case "", OrderAsc:
		return OrderAsc, nil
	case OrderDesc:
		return OrderDesc, nil
	default:
		return "", fmt.Errorf("%w: invalid selection between asc and desc", ErrBadQuery)
	}
}

func (p Patient) sortKey(field SortField) float64 {
	switch field {
	case SortByHeight:
		return p.Height
	case SortByWeight:
		return p.Weight
	case SortByBMI:
		return p.BMI
	default:
		return 0
	}
}

// Sort orders the collection by field. Patients are first ordered by ID so the
// result does not depend on map iteration, then stable-sorted ascending; desc
// is the exact reverse of asc.
func Sort(patients map[string]Patient, field SortField, order SortOrder) []Patient {
	out := make([]Patient, 0, len(patients))
	for _, p := range patients {
		out = append(out, p)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].sortKey(field) < out[j].sortKey(field)
	})

	if order == OrderDesc {
		for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
			out[i], out[j] = out[j], out[i]
		}
	}
	return out
}
