package layout

import (
	"cmp"
	"slices"
)

// fenwick is a binary indexed tree over positions 0..n-1 that counts how
// many values were added at or before a position.
type fenwick []int

func newFenwick(n int) fenwick { return make(fenwick, n+1) }

func (f fenwick) add(pos int) {
	for i := pos + 1; i < len(f); i += i & -i {
		f[i]++
	}
}

func (f fenwick) atOrBefore(pos int) int {
	n := 0
	for i := pos + 1; i > 0; i -= i & -i {
		n += f[i]
	}
	return n
}

// countLayerCrossings counts crossings between edges joining two adjacent
// ranks. Edges (u1,v1) and (u2,v2) cross when u1 is left of u2 and v1 right
// of v2, so sorting edges by upper position and counting inversions of
// their lower positions gives the total in O(E log V). Parallel edges count
// once each.
func countLayerCrossings(upper, lower []string, down map[string][]string) int {
	if len(upper) == 0 || len(lower) == 0 {
		return 0
	}
	lowerPos := posMap(lower)

	var spans [][2]int
	for i, id := range upper {
		for _, child := range down[id] {
			if j, ok := lowerPos[child]; ok {
				spans = append(spans, [2]int{i, j})
			}
		}
	}
	if len(spans) < 2 {
		return 0
	}
	slices.SortFunc(spans, func(a, b [2]int) int {
		if c := cmp.Compare(a[0], b[0]); c != 0 {
			return c
		}
		return cmp.Compare(a[1], b[1])
	})

	seen := newFenwick(len(lower))
	crossings := 0
	for n, s := range spans {
		crossings += n - seen.atOrBefore(s[1])
		seen.add(s[1])
	}
	return crossings
}

func posMap(ids []string) map[string]int {
	m := make(map[string]int, len(ids))
	for i, id := range ids {
		m[id] = i
	}
	return m
}
