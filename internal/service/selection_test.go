package service

import (
	"errors"
	"reflect"
	"testing"

	"beacon_analyzer/internal/models"
)

func testEngine() *SelectionEngine {
	return NewSelectionEngine(QualityConfig{Threshold: 0.5, MinReadings: 10})
}

func assertSelection(t *testing.T, sel models.Selection, want ...string) {
	t.Helper()
	got := sel.IDs()
	exp := models.NewSelection(want...).IDs()
	if !reflect.DeepEqual(got, exp) {
		t.Fatalf("selection: want %v, got %v", exp, got)
	}
}

func TestCompareIDs(t *testing.T) {
	t.Parallel()

	tests := []struct {
		a, b string
		want int
	}{
		{"2", "10", -1},
		{"10", "2", 1},
		{"a", "b", -1},
		{"10", "x7", -1},
		{"01", "1", -1},
		{"7", "7", 0},
	}
	for _, tt := range tests {
		if got := compareIDs(tt.a, tt.b); got != tt.want {
			t.Fatalf("compareIDs(%q, %q): want %d, got %d", tt.a, tt.b, tt.want, got)
		}
	}
}

func TestSelectFirst(t *testing.T) {
	t.Parallel()

	e, cat := testEngine(), testCatalog()

	t.Run("numeric-aware order", func(t *testing.T) {
		var sel models.Selection
		e.SelectFirst(&sel, cat, 3)
		assertSelection(t, sel, "1", "2", "3")
	})

	t.Run("n larger than catalog", func(t *testing.T) {
		var sel models.Selection
		e.SelectFirst(&sel, cat, 99)
		assertSelection(t, sel, "1", "2", "3", "10", "x7")
	})

	t.Run("replaces previous selection", func(t *testing.T) {
		sel := models.NewSelection("x7")
		e.SelectFirst(&sel, cat, 1)
		assertSelection(t, sel, "1")
	})

	for _, n := range []int{0, -1, -100} {
		n := n
		t.Run("non-positive n is a no-op", func(t *testing.T) {
			for _, prior := range []models.Selection{{}, models.NewSelection("2", "x7")} {
				sel := prior.Clone()
				e.SelectFirst(&sel, cat, n)
				if !sel.Equal(prior) {
					t.Fatalf("n=%d changed selection %v -> %v", n, prior.IDs(), sel.IDs())
				}
			}
		})
	}
}

func TestSelectAllThenClear(t *testing.T) {
	t.Parallel()

	e, cat := testEngine(), testCatalog()
	for _, prior := range []models.Selection{{}, models.NewSelection("1"), models.NewSelection("gone")} {
		sel := prior.Clone()
		e.SelectAll(&sel, cat)
		assertSelection(t, sel, "1", "2", "3", "10", "x7")
		e.Clear(&sel)
		if !sel.IsEmpty() {
			t.Fatalf("clear left %v", sel.IDs())
		}
	}
}

func TestSelectByPattern(t *testing.T) {
	t.Parallel()

	e, cat := testEngine(), testCatalog()

	tests := []struct {
		name  string
		prior []string
		text  string
		want  []string
	}{
		{name: "description case-insensitive", text: "KILN", want: []string{"10", "2"}},
		{name: "identifier substring", text: "1", want: []string{"1", "10"}},
		{name: "additive", prior: []string{"3"}, text: "spare", want: []string{"3", "x7"}},
		{name: "no match adds nothing", prior: []string{"3"}, text: "boiler", want: []string{"3"}},
		{name: "blank text is a no-op", prior: []string{"3"}, text: "  ", want: []string{"3"}},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			sel := models.NewSelection(tt.prior...)
			e.SelectByPattern(&sel, cat, tt.text)
			assertSelection(t, sel, tt.want...)

			once := sel.Clone()
			e.SelectByPattern(&sel, cat, tt.text)
			if !sel.Equal(once) {
				t.Fatalf("second application changed %v -> %v", once.IDs(), sel.IDs())
			}
		})
	}
}

func TestQualityScore(t *testing.T) {
	t.Parallel()

	e := testEngine()
	tests := []struct {
		name string
		st   models.BeaconStats
		want float64
	}{
		{name: "no readings", st: models.BeaconStats{}, want: 0},
		{name: "full volume", st: models.BeaconStats{Readings: 100, TemperatureReadings: 90}, want: 0.9},
		{name: "scaled by volume", st: models.BeaconStats{Readings: 4, TemperatureReadings: 4}, want: 0.4},
		{name: "no temperature", st: models.BeaconStats{Readings: 50}, want: 0},
	}
	for _, tt := range tests {
		if got := e.QualityScore(tt.st); got != tt.want {
			t.Fatalf("%s: want %v, got %v", tt.name, tt.want, got)
		}
	}
}

func TestSelectByQuality(t *testing.T) {
	t.Parallel()

	cat := testCatalog()

	sel := models.NewSelection("2")
	testEngine().SelectByQuality(&sel, cat)
	assertSelection(t, sel, "1")

	again := sel.Clone()
	testEngine().SelectByQuality(&again, cat)
	if !again.Equal(sel) {
		t.Fatalf("quality selection is not deterministic")
	}

	lenient := NewSelectionEngine(QualityConfig{Threshold: 0.1, MinReadings: 10})
	lenient.SelectByQuality(&sel, cat)
	assertSelection(t, sel, "1", "2", "3")
}

func TestSelectByTemperatureRange(t *testing.T) {
	t.Parallel()

	e, cat := testEngine(), testCatalog()

	sel := models.NewSelection("10")
	if err := e.SelectByTemperatureRange(&sel, cat, 50, 150); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// "10" has readings but no temperature, "x7" has no stats at all.
	assertSelection(t, sel, "1", "3")

	if err := e.SelectByTemperatureRange(&sel, cat, 200, 300); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !sel.IsEmpty() {
		t.Fatalf("want empty selection, got %v", sel.IDs())
	}

	sel = models.NewSelection("1")
	err := e.SelectByTemperatureRange(&sel, cat, 150, 50)
	if !errors.Is(err, ErrInvalidSelection) {
		t.Fatalf("want ErrInvalidSelection, got %v", err)
	}
	assertSelection(t, sel, "1")
}

func TestSelectRange(t *testing.T) {
	t.Parallel()

	e := testEngine()
	list := []string{"10", "2", "1", "3", "x7"}

	tests := []struct {
		name     string
		prior    []string
		from, to string
		want     []string
		wantErr  bool
	}{
		{name: "forward", from: "2", to: "3", want: []string{"2", "1", "3"}},
		{name: "reverse order", from: "3", to: "2", want: []string{"2", "1", "3"}},
		{name: "single", from: "x7", to: "x7", want: []string{"x7"}},
		{name: "additive", prior: []string{"10"}, from: "3", to: "x7", want: []string{"10", "3", "x7"}},
		{name: "unknown from", prior: []string{"10"}, from: "nope", to: "3", wantErr: true},
		{name: "unknown to", prior: []string{"10"}, from: "3", to: "nope", wantErr: true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			sel := models.NewSelection(tt.prior...)
			err := e.SelectRange(&sel, list, tt.from, tt.to)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidSelection) {
					t.Fatalf("want ErrInvalidSelection, got %v", err)
				}
				assertSelection(t, sel, tt.prior...)
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			assertSelection(t, sel, tt.want...)

			e.SelectRange(&sel, list, tt.from, tt.to)
			assertSelection(t, sel, tt.want...)
		})
	}
}

func TestApply(t *testing.T) {
	t.Parallel()

	e, cat := testEngine(), testCatalog()

	tests := []struct {
		name    string
		list    []string
		req     SelectionRequest
		want    []string
		wantErr error
	}{
		{name: "all", req: SelectionRequest{Op: OpAll}, want: []string{"1", "2", "3", "10", "x7"}},
		{name: "clear", req: SelectionRequest{Op: " Clear "}, want: nil},
		{name: "first", req: SelectionRequest{Op: OpFirst, N: 2}, want: []string{"1", "2"}},
		{name: "pattern", req: SelectionRequest{Op: OpPattern, Text: "oven"}, want: []string{"1", "3", "x7"}},
		{name: "quality", req: SelectionRequest{Op: OpQuality}, want: []string{"1"}},
		{name: "temperature range", req: SelectionRequest{Op: OpTemperatureRange, Lo: fp(100), Hi: fp(120)}, want: []string{"1"}},
		{name: "temperature range needs bounds", req: SelectionRequest{Op: OpTemperatureRange, Lo: fp(100)}, wantErr: ErrInvalidSelection},
		{name: "range falls back to catalog order", req: SelectionRequest{Op: OpRange, From: "2", To: "1"}, want: []string{"2", "1", "x7"}},
		{name: "range uses list order", list: []string{"1", "2", "3"}, req: SelectionRequest{Op: OpRange, From: "1", To: "2"}, want: []string{"1", "2", "x7"}},
		{name: "unknown op", req: SelectionRequest{Op: "toggle"}, wantErr: ErrInvalidSelection},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			sel := models.NewSelection("x7")
			err := e.Apply(&sel, cat, tt.list, tt.req)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("want %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			assertSelection(t, sel, tt.want...)
		})
	}
}

func TestBeaconList(t *testing.T) {
	t.Parallel()

	e, cat := testEngine(), testCatalog()
	sel := models.NewSelection("3")

	rows, err := e.BeaconList(cat, sel, BeaconQuery{})
	if err != nil {
		t.Fatalf("BeaconList: %v", err)
	}
	if got := beaconRowIDs(rows); !reflect.DeepEqual(got, []string{"10", "2", "1", "3", "x7"}) {
		t.Fatalf("default order must follow the catalog, got %v", got)
	}

	rows, err = e.BeaconList(cat, sel, BeaconQuery{Search: "OVEN", Sort: SortID})
	if err != nil {
		t.Fatalf("BeaconList: %v", err)
	}
	if got := beaconRowIDs(rows); !reflect.DeepEqual(got, []string{"1", "3"}) {
		t.Fatalf("unexpected filtered list %v", got)
	}
	if rows[0].Quality != 0.9 || rows[0].Selected || !rows[1].Selected {
		t.Fatalf("unexpected rows: %+v", rows)
	}

	rows, err = e.BeaconList(cat, sel, BeaconQuery{Sort: SortID})
	if err != nil {
		t.Fatalf("BeaconList: %v", err)
	}
	if got := beaconRowIDs(rows); !reflect.DeepEqual(got, []string{"1", "2", "3", "10", "x7"}) {
		t.Fatalf("unexpected id order %v", got)
	}
	if rows[4].Stats.BeaconID != "x7" || rows[4].Quality != 0 {
		t.Fatalf("beacon without stats: %+v", rows[4])
	}

	if _, err := e.BeaconList(cat, sel, BeaconQuery{Sort: "quality"}); !errors.Is(err, ErrInvalidSelection) {
		t.Fatalf("want ErrInvalidSelection for unknown sort, got %v", err)
	}
}

func beaconRowIDs(rows []BeaconRow) []string {
	out := make([]string, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.ID)
	}
	return out
}

func TestApply_RangeListNilVersusEmpty(t *testing.T) {
	t.Parallel()

	cat := testCatalog()
	req := SelectionRequest{Op: OpRange, From: "1", To: "3"}

	sel := models.NewSelection()
	if err := testEngine().Apply(&sel, cat, nil, req); err != nil {
		t.Fatalf("nil list falls back to catalog order: %v", err)
	}
	assertSelection(t, sel, "1", "3")

	sel = models.NewSelection()
	if err := testEngine().Apply(&sel, cat, []string{}, req); !errors.Is(err, ErrInvalidSelection) {
		t.Fatalf("empty list: want ErrInvalidSelection, got %v", err)
	}
	if !sel.IsEmpty() {
		t.Fatalf("selection changed: %v", sel.IDs())
	}
}
