package grid

import "github.com/Faultbox/mountainhome/pkg/tile"

// Range is an inclusive run of z levels within one column.
type Range struct {
	Start int
	End   int
}

// Len returns the number of levels in the range.
func (r Range) Len() int { return r.End - r.Start + 1 }

// columnVisitor calls yield for consecutive same-valued z runs of one column,
// in ascending z order.
type columnVisitor func(yield func(z0, z1 int, t tile.Type))

// collectRanges merges the visited runs whose value satisfies keep into
// maximal ranges.
func collectRanges(visit columnVisitor, keep func(tile.Type) bool) []Range {
	var ranges []Range
	open := false
	var cur Range

	visit(func(z0, z1 int, t tile.Type) {
		if keep(t) {
			if open && cur.End+1 == z0 {
				cur.End = z1
				return
			}
			if open {
				ranges = append(ranges, cur)
			}
			cur = Range{Start: z0, End: z1}
			open = true
			return
		}
		if open {
			ranges = append(ranges, cur)
			open = false
		}
	})

	if open {
		ranges = append(ranges, cur)
	}
	return ranges
}

func emptyRanges(visit columnVisitor, empty tile.Type) []Range {
	return collectRanges(visit, func(t tile.Type) bool { return t == empty })
}

func filledRanges(visit columnVisitor, empty tile.Type) []Range {
	return collectRanges(visit, func(t tile.Type) bool { return t != empty })
}
