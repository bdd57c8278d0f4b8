package generation

// Reshaper stage: pivots the flat table into a period-indexed wide table,
// one column per series. Pure functions - pivoting the same flat table twice
// yields identical wide tables.

import "sort"

// WideTable holds unique periods in strictly ascending order and a fixed
// column order.
type WideTable struct {
	Periods []int
	Series  []string
	cells   map[int]map[string]Value
}

// Pivot groups the flat table by period and series. Duplicate (period,
// series) pairs keep the first valid value seen. Column order is preferred
// labels first, unknown series appended alphabetically.
func Pivot(flat FlatTable, preferred []string) *WideTable {
	cells := make(map[int]map[string]Value)
	seriesSet := make(map[string]bool)
	periodSet := make(map[int]bool)

	for _, obs := range flat {
		periodSet[obs.Period] = true
		seriesSet[obs.Series] = true

		row, ok := cells[obs.Period]
		if !ok {
			row = make(map[string]Value)
			cells[obs.Period] = row
		}
		if existing, ok := row[obs.Series]; !ok || (!existing.Valid && obs.Value.Valid) {
			row[obs.Series] = obs.Value
		}
	}

	periods := make([]int, 0, len(periodSet))
	for p := range periodSet {
		periods = append(periods, p)
	}
	sort.Ints(periods)

	return &WideTable{
		Periods: periods,
		Series:  orderSeries(seriesSet, preferred),
		cells:   cells,
	}
}

func orderSeries(seriesSet map[string]bool, preferred []string) []string {
	ordered := make([]string, 0, len(seriesSet))
	seen := make(map[string]bool)

	for _, name := range preferred {
		if seriesSet[name] {
			ordered = append(ordered, name)
			seen[name] = true
		}
	}

	var rest []string
	for name := range seriesSet {
		if !seen[name] {
			rest = append(rest, name)
		}
	}
	sort.Strings(rest)

	return append(ordered, rest...)
}

// Value returns the cell for (period, series); cells never written are
// missing.
func (t *WideTable) Value(period int, series string) Value {
	if row, ok := t.cells[period]; ok {
		return row[series]
	}
	return Missing()
}

// Column returns the series column aligned with Periods.
func (t *WideTable) Column(series string) []Value {
	col := make([]Value, len(t.Periods))
	for i, p := range t.Periods {
		col[i] = t.Value(p, series)
	}
	return col
}

// IsEmpty reports a table with no rows or no columns.
func (t *WideTable) IsEmpty() bool {
	return len(t.Periods) == 0 || len(t.Series) == 0
}

// SeriesHasData reports whether any cell of the series is valid.
func (t *WideTable) SeriesHasData(series string) bool {
	for _, p := range t.Periods {
		if t.Value(p, series).Valid {
			return true
		}
	}
	return false
}

// ForwardFillInterior fills missing cells that have data both before and
// after them with the most recent preceding value. Leading and trailing gaps
// stay missing. Idempotent.
func (t *WideTable) ForwardFillInterior() {
	for _, series := range t.Series {
		first, last := -1, -1
		for i, p := range t.Periods {
			if t.Value(p, series).Valid {
				if first < 0 {
					first = i
				}
				last = i
			}
		}
		if first < 0 {
			continue
		}

		carry := t.Value(t.Periods[first], series)
		for i := first + 1; i < last; i++ {
			p := t.Periods[i]
			if v := t.Value(p, series); v.Valid {
				carry = v
				continue
			}
			row, ok := t.cells[p]
			if !ok {
				row = make(map[string]Value)
				t.cells[p] = row
			}
			row[series] = carry
		}
	}
}
