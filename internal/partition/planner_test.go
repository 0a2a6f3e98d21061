package partition

import (
	"bytes"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

type planFixture struct {
	Cases []planCase `yaml:"cases"`
}

type planCase struct {
	Name    string       `yaml:"name"`
	From    string       `yaml:"from"`
	To      string       `yaml:"to"`
	Shape   string       `yaml:"shape"`
	Filters []filterSpan `yaml:"filters"`
}

// filterSpan is the compact fixture form of a Filter.
type filterSpan struct {
	Year   string `yaml:"year"`
	Months string `yaml:"months,omitempty"`
	Days   string `yaml:"days,omitempty"`
}

func loadPlanCases(t *testing.T) []planCase {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("testdata", "plans.yaml"))
	require.NoError(t, err)

	var fixture planFixture
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	require.NoError(t, decoder.Decode(&fixture))
	require.NotEmpty(t, fixture.Cases)
	return fixture.Cases
}

func toSpan(values []string) string {
	switch len(values) {
	case 0:
		return ""
	case 1:
		return values[0]
	default:
		return values[0] + ".." + values[len(values)-1]
	}
}

func toFilterSpans(set FilterSet) []filterSpan {
	return lo.Map(set.Sorted(), func(f Filter, _ int) filterSpan {
		return filterSpan{Year: f.Year(), Months: toSpan(f.Months()), Days: toSpan(f.Days())}
	})
}

func mustDate(t *testing.T, s string) Date {
	t.Helper()
	d, err := ParseDate(s)
	require.NoError(t, err)
	return d
}

func TestPlan_Fixtures(t *testing.T) {
	for _, tc := range loadPlanCases(t) {
		t.Run(tc.Name, func(t *testing.T) {
			start, end := mustDate(t, tc.From), mustDate(t, tc.To)

			set, err := Plan(start, end)
			require.NoError(t, err)

			assert.Equal(t, tc.Shape, set.Shape().String())
			assert.Equal(t, tc.Filters, toFilterSpans(set))
			assertExactCover(t, start, end, set)
		})
	}
}

func TestPlan_SingleMonthAligned(t *testing.T) {
	set := MustPlan(NewDate(2020, time.April, 1), NewDate(2020, time.April, 30))

	require.Equal(t, 1, set.Len())
	f := set.Filters()[0]
	assert.Equal(t, "2020", f.Year())
	assert.Equal(t, []string{"04"}, f.Months())
	assert.Nil(t, f.Days())
	assert.Equal(t, KindYearMonths, f.Kind())
}

func TestPlan_SingleMonthUnaligned(t *testing.T) {
	set := MustPlan(NewDate(2020, time.April, 9), NewDate(2020, time.April, 19))

	require.Equal(t, 1, set.Len())
	f := set.Filters()[0]
	assert.Equal(t, []string{"04"}, f.Months())
	assert.Equal(t, []string{"09", "10", "11", "12", "13", "14", "15", "16", "17", "18", "19"}, f.Days())
	assert.True(t, f.HasYearMonthDay())
}

func TestPlan_WholeYearAligned(t *testing.T) {
	set := MustPlan(NewDate(2020, time.January, 1), NewDate(2020, time.December, 31))

	require.Equal(t, 1, set.Len())
	f := set.Filters()[0]
	assert.Equal(t, "2020", f.Year())
	assert.Nil(t, f.Months())
	assert.Nil(t, f.Days())
	assert.True(t, f.HasOnlyYear())
}

func TestPlan_CrossYearEmitsMiddleYearsFirst(t *testing.T) {
	set := MustPlan(NewDate(2016, time.March, 3), NewDate(2020, time.April, 19))

	emitted := set.Filters()
	require.GreaterOrEqual(t, len(emitted), 3)
	assert.Equal(t, "2017", emitted[0].String())
	assert.Equal(t, "2018", emitted[1].String())
	assert.Equal(t, "2019", emitted[2].String())

	sorted := set.Sorted()
	assert.Equal(t, "2016-03-[03..31]", sorted[0].String())
}

func TestPlan_Idempotent(t *testing.T) {
	start, end := NewDate(2018, time.February, 17), NewDate(2020, time.April, 19)

	first := MustPlan(start, end)
	second := MustPlan(start, end)

	assert.True(t, first.Equal(second))
	assert.Equal(t, first.Filters(), second.Filters())
}

func TestPlan_ConcurrentUse(t *testing.T) {
	start, end := NewDate(2018, time.February, 17), NewDate(2020, time.April, 19)
	want := MustPlan(start, end)

	var wg sync.WaitGroup
	results := make([]FilterSet, 16)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = MustPlan(start, end)
		}(i)
	}
	wg.Wait()

	for _, got := range results {
		assert.True(t, want.Equal(got))
	}
}

func TestPlan_InvalidRanges(t *testing.T) {
	testCases := []struct {
		name  string
		start Date
		end   Date
		code  RangeErrorCode
	}{
		{"start after end", NewDate(2020, time.April, 20), NewDate(2020, time.April, 19), ErrCodeInvalidRange},
		{"zero start", Date{}, NewDate(2020, time.April, 19), ErrCodeNullDate},
		{"zero end", NewDate(2020, time.April, 19), Date{}, ErrCodeNullDate},
		{"day out of month", NewDate(2021, time.February, 29), NewDate(2021, time.March, 1), ErrCodeInvalidDate},
		{"month out of range", NewDate(2021, 13, 1), NewDate(2022, time.March, 1), ErrCodeInvalidDate},
		{"year out of range", NewDate(2021, time.January, 1), NewDate(10000, time.March, 1), ErrCodeInvalidDate},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			set, err := Plan(tc.start, tc.end)
			require.Error(t, err)
			assert.True(t, IsInvalidRange(err))
			assert.Zero(t, set.Len())

			var re *InvalidRangeError
			require.ErrorAs(t, err, &re)
			assert.Equal(t, tc.code, re.Code)
		})
	}
}

func TestMustPlan_PanicsOnInvalidRange(t *testing.T) {
	assert.Panics(t, func() {
		MustPlan(NewDate(2020, time.May, 1), NewDate(2020, time.April, 1))
	})
}

// TestPlan_ExactCoverSweep checks coverage and minimality for every range
// shape across leap and non-leap years and year boundaries.
func TestPlan_ExactCoverSweep(t *testing.T) {
	if testing.Short() {
		t.Skip("sweep skipped in short mode")
	}

	offsets := append(lo.Range(70), lo.RangeWithSteps(70, 1200, 13)...)
	first, last := NewDate(2019, time.November, 1), NewDate(2021, time.March, 5)

	for start := first; !start.After(last); start = start.AddDays(3) {
		for _, offset := range offsets {
			end := start.AddDays(offset)
			set, err := Plan(start, end)
			require.NoError(t, err, "plan %s..%s", start, end)
			if !assertExactCover(t, start, end, set) {
				return
			}
		}
	}
}

// TestPlan_MonthBoundarySweep walks every (first, last) day pair around the
// 2023/2024 boundary so aligned and unaligned edges are all exercised.
func TestPlan_MonthBoundarySweep(t *testing.T) {
	first, last := NewDate(2023, time.December, 25), NewDate(2024, time.March, 5)

	for start := first; !start.After(last); start = start.AddDays(1) {
		for end := start; !end.After(last); end = end.AddDays(1) {
			set, err := Plan(start, end)
			require.NoError(t, err)
			if !assertExactCover(t, start, end, set) {
				return
			}
		}
	}
}

func TestPlan_FilterInvariants(t *testing.T) {
	start := NewDate(2015, time.July, 14)
	for _, offset := range []int{0, 17, 45, 90, 400, 1000, 2500} {
		set := MustPlan(start, start.AddDays(offset))
		for _, f := range set.Filters() {
			assert.NotEmpty(t, f.Year())
			if len(f.Days()) > 0 {
				assert.Len(t, f.Months(), 1, "day filter %s must name one month", f)
			}
			for _, m := range f.Months() {
				assert.Len(t, m, 2)
			}
			for _, d := range f.Days() {
				assert.Len(t, d, 2)
			}
		}
	}
}

// assertExactCover verifies that set selects every day of [start, end] exactly
// once and nothing else.
func assertExactCover(t *testing.T, start, end Date, set FilterSet) bool {
	t.Helper()

	var want []Date
	for d := start; !d.After(end); d = d.AddDays(1) {
		want = append(want, d)
	}

	got := set.Dates()
	if !assert.Equal(t, len(want), len(got), "plan %s..%s = %s: day count (overlap or gap)", start, end, set) {
		return false
	}
	return assert.Equal(t, want, got, "plan %s..%s = %s", start, end, set)
}
