package plan

import (
	"sort"

	"github.com/ukaji3/exmerge-go/pkg/exmerge/models"
)

type insertion struct {
	target  int
	aligned int
}

// IndexMap projects ours physical indices along one axis through a set of
// deletes and inserts. Deletes are applied first, then inserts in
// ascending target order; an insert with target T lands before the ours
// index T.
type IndexMap struct {
	deletes []int
	deleted map[int]bool
	inserts []insertion
	final   map[int]int
}

func newIndexMap(deletes []int, inserts []insertion) *IndexMap {
	m := &IndexMap{
		deleted: make(map[int]bool, len(deletes)),
		final:   make(map[int]int, len(inserts)),
	}
	for _, d := range deletes {
		if !m.deleted[d] {
			m.deleted[d] = true
			m.deletes = append(m.deletes, d)
		}
	}
	sort.Ints(m.deletes)

	m.inserts = append(m.inserts, inserts...)
	sort.Slice(m.inserts, func(i, j int) bool {
		if m.inserts[i].target != m.inserts[j].target {
			return m.inserts[i].target < m.inserts[j].target
		}
		return m.inserts[i].aligned < m.inserts[j].aligned
	})
	for k, ins := range m.inserts {
		m.final[ins.aligned] = ins.target - m.deletedBelow(ins.target) + k
	}
	return m
}

// ColumnMap builds the column projection of an edit set.
func ColumnMap(edits EditSet) *IndexMap {
	var deletes []int
	var inserts []insertion
	for aligned, op := range edits.Columns {
		switch op.Action {
		case models.ActionDelete:
			deletes = append(deletes, op.Target)
		case models.ActionInsert:
			inserts = append(inserts, insertion{target: op.Target, aligned: aligned})
		}
	}
	return newIndexMap(deletes, inserts)
}

// RowMap builds the row projection of an edit set.
func RowMap(edits EditSet) *IndexMap {
	var deletes []int
	var inserts []insertion
	for aligned, op := range edits.Rows {
		switch op.Action {
		case models.ActionDelete:
			deletes = append(deletes, op.Target)
		case models.ActionInsert:
			inserts = append(inserts, insertion{target: op.Target, aligned: aligned})
		}
	}
	return newIndexMap(deletes, inserts)
}

func (m *IndexMap) deletedBelow(p int) int {
	return sort.SearchInts(m.deletes, p)
}

func (m *IndexMap) insertedUpTo(p int) int {
	return sort.Search(len(m.inserts), func(i int) bool { return m.inserts[i].target > p })
}

// Resolve maps an ours physical index to its final position. ok is false
// when the index was deleted.
func (m *IndexMap) Resolve(p int) (int, bool) {
	if m.deleted[p] {
		return 0, false
	}
	return p - m.deletedBelow(p) + m.insertedUpTo(p), true
}

// Inserted returns the final position of the item inserted for an aligned
// index.
func (m *IndexMap) Inserted(aligned int) (int, bool) {
	p, ok := m.final[aligned]
	return p, ok
}

// Deletes returns the ours indices to remove, descending.
func (m *IndexMap) Deletes() []int {
	out := make([]int, len(m.deletes))
	for i, d := range m.deletes {
		out[len(out)-1-i] = d
	}
	return out
}

// Inserts returns the final positions of inserted items, ascending.
func (m *IndexMap) Inserts() []int {
	out := make([]int, len(m.inserts))
	for k, ins := range m.inserts {
		out[k] = m.final[ins.aligned]
	}
	return out
}
