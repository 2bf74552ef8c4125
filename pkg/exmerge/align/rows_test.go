package align

import (
	"testing"

	"github.com/ukaji3/exmerge-go/pkg/exmerge/models"
)

// sameColumns aligns n columns present on every side at the same position.
func sameColumns(n int) []models.AlignedColumn {
	cols := make([]models.AlignedColumn, n)
	for i := range cols {
		cols[i] = models.AlignedColumn{Base: i + 1, Ours: i + 1, Theirs: i + 1}
	}
	return cols
}

func rowsOf(g models.Grid, cols []models.AlignedColumn, side models.Side, keyCol int) []models.RowRecord {
	return BuildRows(g, cols, side, 1, keyCol)
}

func alignRows(base, ours, theirs models.Grid, width, keyCol int) ([]models.AlignedRow, Strategy) {
	cols := sameColumns(width)
	var b []models.RowRecord
	if base != nil {
		b = rowsOf(base, cols, models.SideBase, keyCol)
	}
	return Rows(b, rowsOf(ours, cols, models.SideOurs, keyCol), rowsOf(theirs, cols, models.SideTheirs, keyCol), cols, keyCol, DefaultParams())
}

func physicals(ar models.AlignedRow) [3]int {
	return [3]int{ar.Physical(models.SideBase), ar.Physical(models.SideOurs), ar.Physical(models.SideTheirs)}
}

func expectLayout(t *testing.T, got []models.AlignedRow, expected [][3]int) {
	t.Helper()
	if len(got) != len(expected) {
		t.Fatalf("Expected %d aligned rows, got %d: %v", len(expected), len(got), layout(got))
	}
	for i := range expected {
		if physicals(got[i]) != expected[i] {
			t.Errorf("row %d: expected physical rows %v, got %v", i+1, expected[i], physicals(got[i]))
		}
	}
}

func layout(rows []models.AlignedRow) [][3]int {
	out := make([][3]int, len(rows))
	for i := range rows {
		out[i] = physicals(rows[i])
	}
	return out
}

func TestBuildRows(t *testing.T) {
	g := gridOf(
		r("id", "name"),
		r("K1", " a "),
		r(nil, nil),
		r("", 3),
	)
	rows := rowsOf(g, sameColumns(2), models.SideOurs, 1)
	if len(rows) != 2 {
		t.Fatalf("Expected 2 rows, got %d", len(rows))
	}
	if rows[0].Physical != 2 || rows[0].Seq != 0 || rows[0].Key != "K1" || !rows[0].HasKey {
		t.Errorf("Unexpected first row %+v", rows[0])
	}
	if rows[0].Keys[1] != "a" {
		t.Errorf("Expected trimmed key, got %q", rows[0].Keys[1])
	}
	if rows[1].Physical != 4 || rows[1].Seq != 1 || rows[1].HasKey {
		t.Errorf("Unexpected second row %+v", rows[1])
	}
}

func TestKeySingleMatch(t *testing.T) {
	base := gridOf(r("id", "v"), r("K1", 1))
	ours := gridOf(r("id", "v"), r("K1", 1))
	theirs := gridOf(r("id", "v"), r("K1", 2))

	got, strategy := alignRows(base, ours, theirs, 2, 1)
	if strategy != StrategyKey {
		t.Errorf("Expected key strategy, got %s", strategy)
	}
	expectLayout(t, got, [][3]int{{2, 2, 2}})
	if got[0].AmbiguousOurs || got[0].AmbiguousTheirs {
		t.Error("Expected no ambiguity")
	}
	if got[0].Key != "K1" {
		t.Errorf("Expected key K1, got %q", got[0].Key)
	}
}

func TestKeyDuplicateOnOneSide(t *testing.T) {
	base := gridOf(r("id", "name", "qty"), r("K1", "apple", 3))
	ours := gridOf(r("id", "name", "qty"), r("K1", "pear", 9), r("K1", "apple", 3))
	theirs := gridOf(r("id", "name", "qty"), r("K1", "apple", 3))

	got, _ := alignRows(base, ours, theirs, 3, 1)
	// The best match is the second ours row; the first becomes a gap before it.
	expectLayout(t, got, [][3]int{{0, 2, 0}, {2, 3, 2}})
	for i, ar := range got {
		if ar.AmbiguousOurs {
			t.Errorf("row %d: unexpected ambiguity", i+1)
		}
	}
}

func TestKeyDuplicateSimilarity(t *testing.T) {
	base := gridOf(r("id", "a", "b", "c", "d"), r("K1", 1, 2, 3, 4))
	ours := gridOf(r("id", "a", "b", "c", "d"),
		r("K1", 1, 2, 3, 5),
		r("K1", 9, 9, 9, 9),
	)

	got, _ := alignRows(base, ours, base, 5, 1)
	expectLayout(t, got, [][3]int{{2, 2, 2}, {0, 3, 0}})
}

func TestKeyDuplicateAmbiguous(t *testing.T) {
	base := gridOf(r("id", "a", "b"), r("K1", 1, 2))
	ours := gridOf(r("id", "a", "b"), r("K1", 1, 7), r("K1", 7, 2))

	got, _ := alignRows(base, ours, base, 3, 1)
	// Both candidates precede the unresolved base row: no matched ours row
	// comes before them.
	expectLayout(t, got, [][3]int{{0, 2, 0}, {0, 3, 0}, {2, 0, 2}})
	for i, ar := range got {
		if !ar.AmbiguousOurs {
			t.Errorf("row %d: expected ambiguity on ours", i+1)
		}
		if ar.AmbiguousTheirs {
			t.Errorf("row %d: unexpected ambiguity on theirs", i+1)
		}
	}
}

func TestKeyChanged(t *testing.T) {
	base := gridOf(r("id", "name", "qty"), r("K1", "a", 1), r("K2", "b", 2))
	ours := gridOf(r("id", "name", "qty"), r("K1", "a", 1), r("K9", "b", 2))

	got, _ := alignRows(base, ours, base, 3, 1)
	expectLayout(t, got, [][3]int{{2, 2, 2}, {3, 3, 3}})
}

func TestKeyMissingIsAmbiguous(t *testing.T) {
	base := gridOf(r("id", "v"), r("K1", 1), r(nil, 2))
	got, _ := alignRows(base, base, base, 2, 1)
	// Rows without a key never match: the side rows become gaps after K1.
	expectLayout(t, got, [][3]int{{2, 2, 2}, {0, 3, 0}, {0, 0, 3}, {3, 0, 0}})
	if !got[3].AmbiguousOurs || !got[3].AmbiguousTheirs {
		t.Error("Expected the keyless base row to be ambiguous")
	}
	if !got[1].AmbiguousOurs || !got[2].AmbiguousTheirs {
		t.Error("Expected keyless side rows to be ambiguous")
	}
}

func TestKeyBothAddedSameKey(t *testing.T) {
	base := gridOf(r("id", "v"), r("K1", 1))
	ours := gridOf(r("id", "v"), r("K1", 1), r("K5", 5))
	theirs := gridOf(r("id", "v"), r("K1", 1), r("K5", 6))

	got, _ := alignRows(base, ours, theirs, 2, 1)
	expectLayout(t, got, [][3]int{{2, 2, 2}, {0, 3, 3}})
}

func TestSequenceIdentical(t *testing.T) {
	g := gridOf(r("v", "w"), r("A", 1), r("B", 2), r("C", 3))
	got, strategy := alignRows(g, g, g, 2, 0)
	if strategy != StrategySequence {
		t.Errorf("Expected sequence strategy, got %s", strategy)
	}
	expectLayout(t, got, [][3]int{{2, 2, 2}, {3, 3, 3}, {4, 4, 4}})
}

func TestSequenceDelete(t *testing.T) {
	base := gridOf(r("v", "w"), r("A", 1), r("B", 2), r("C", 3))
	ours := gridOf(r("v", "w"), r("A", 1), r("C", 3))

	got, _ := alignRows(base, ours, base, 2, 0)
	expectLayout(t, got, [][3]int{{2, 2, 2}, {3, 0, 3}, {4, 3, 4}})
	if got[1].AmbiguousOurs {
		t.Error("A deleted row with no nearby candidate must not be ambiguous")
	}
}

func TestSequenceMovedRow(t *testing.T) {
	base := gridOf(r("v", "w"), r("A", 1), r("B", 2), r("C", 3), r("D", 4))
	ours := gridOf(r("v", "w"), r("B", 2), r("C", 3), r("D", 4), r("A", 1))

	got, _ := alignRows(base, ours, base, 2, 0)
	expectLayout(t, got, [][3]int{{2, 5, 2}, {3, 2, 3}, {4, 3, 4}, {5, 4, 5}})
}

func TestSequenceEditedRow(t *testing.T) {
	head := r("name", "a", "b", "c")
	base := gridOf(head, r("A", 1, 1, 1), r("B", 2, 2, 2), r("C", 3, 3, 3))
	ours := gridOf(head, r("A", 1, 1, 1), r("B", 2, 2, 9), r("C", 3, 3, 3))

	got, _ := alignRows(base, ours, base, 4, 0)
	expectLayout(t, got, [][3]int{{2, 2, 2}, {3, 3, 3}, {4, 4, 4}})
}

func TestSequenceAmbiguousWindow(t *testing.T) {
	head := r("name", "a", "b", "c")
	base := gridOf(head, r("A", 1, 1, 1), r("B", 2, 2, 2), r("C", 3, 3, 3))
	ours := gridOf(head, r("A", 1, 1, 1), r("B", 2, 2, 8), r("B", 2, 2, 9), r("C", 3, 3, 3))

	got, _ := alignRows(base, ours, base, 4, 0)
	expectLayout(t, got, [][3]int{{2, 2, 2}, {0, 3, 0}, {0, 4, 0}, {3, 0, 3}, {4, 5, 4}})
	for _, i := range []int{1, 2, 3} {
		if !got[i].AmbiguousOurs {
			t.Errorf("row %d: expected ambiguity on ours", i+1)
		}
	}
	if got[0].AmbiguousOurs || got[4].AmbiguousOurs {
		t.Error("Anchored rows must not be ambiguous")
	}
}

func TestAnchorEditedRow(t *testing.T) {
	head := r("name", "a", "b", "c")
	ours := gridOf(head, r("A", 1, 1, 1), r("B", 2, 2, 2), r("C", 3, 3, 3))
	theirs := gridOf(head, r("A", 1, 1, 1), r("B", 2, 2, 7), r("C", 3, 3, 3))

	got, strategy := alignRows(nil, ours, theirs, 4, 0)
	if strategy != StrategyAnchor {
		t.Errorf("Expected anchor strategy, got %s", strategy)
	}
	expectLayout(t, got, [][3]int{{0, 2, 2}, {0, 3, 3}, {0, 4, 4}})
}

func TestAnchorCrossingDiscarded(t *testing.T) {
	ours := gridOf(r("v", "w"), r("A", 1), r("B", 2), r("C", 3))
	theirs := gridOf(r("v", "w"), r("C", 3), r("A", 1), r("B", 2))

	got, _ := alignRows(nil, ours, theirs, 2, 0)
	expectLayout(t, got, [][3]int{{0, 0, 2}, {0, 2, 3}, {0, 3, 4}, {0, 4, 0}})
}

func TestRowsDeterministic(t *testing.T) {
	head := r("name", "a", "b")
	base := gridOf(head, r("A", 1, 1), r("B", 2, 2), r("C", 3, 3), r("D", 4, 4))
	ours := gridOf(head, r("D", 4, 4), r("B", 2, 9), r("X", 0, 0), r("A", 1, 1))
	theirs := gridOf(head, r("A", 1, 1), r("C", 3, 3), r("E", 5, 5))

	first, _ := alignRows(base, ours, theirs, 3, 0)
	second, _ := alignRows(base, ours, theirs, 3, 0)
	a, b := layout(first), layout(second)
	if len(a) != len(b) {
		t.Fatalf("layouts differ in length: %v vs %v", a, b)
	}
	for i := range a {
		if a[i] != b[i] {
			t.Errorf("row %d differs: %v vs %v", i+1, a[i], b[i])
		}
	}
}

func TestDetectKeyColumn(t *testing.T) {
	cols := sameColumns(3)
	g := gridOf(r("name", "sku", "qty"), r("a", "S1", 1), r("b", "S2", 1), r("c", "S3", 2))
	rows := rowsOf(g, cols, models.SideBase, 0)

	if got := DetectKeyColumn([][]models.RowRecord{rows}, []string{"name", "sku", "qty"}); got != 2 {
		t.Errorf("Expected the key-like header to win, got %d", got)
	}
	if got := DetectKeyColumn([][]models.RowRecord{rows}, []string{"name", "label", "qty"}); got != 1 {
		t.Errorf("Expected the leftmost unique column, got %d", got)
	}

	dup := gridOf(r("a", "b"), r(1, 1), r(1, 1), r(2, 1))
	dupRows := rowsOf(dup, sameColumns(2), models.SideBase, 0)
	if got := DetectKeyColumn([][]models.RowRecord{dupRows}, []string{"a", "b"}); got != 0 {
		t.Errorf("Expected no key column, got %d", got)
	}
}
