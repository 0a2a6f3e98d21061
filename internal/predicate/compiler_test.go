package predicate

import (
	"bytes"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/athenaq/internal/partition"
	"github.com/roach88/athenaq/internal/queryir"
)

var partitionCols = Columns{
	Year:  queryir.Col("year"),
	Month: queryir.Col("month"),
	Day:   queryir.Col("day"),
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func plan(t *testing.T, from, to string) partition.FilterSet {
	t.Helper()
	start, err := partition.ParseDate(from)
	require.NoError(t, err)
	end, err := partition.ParseDate(to)
	require.NoError(t, err)
	set, err := partition.Plan(start, end)
	require.NoError(t, err)
	return set
}

func yearEq(y string) queryir.Equals {
	return queryir.Equals{Column: queryir.Column{Name: "year"}, Value: queryir.String(y)}
}

func monthIn(ms ...string) queryir.In {
	return queryir.In{Column: queryir.Column{Name: "month"}, Values: queryir.Strings(ms...)}
}

func dayIn(ds ...string) queryir.In {
	return queryir.In{Column: queryir.Column{Name: "day"}, Values: queryir.Strings(ds...)}
}

func TestCompile_SingleMonthAligned(t *testing.T) {
	c := NewCompiler(discardLogger())

	result := c.Compile(nil, plan(t, "2020-04-01", "2020-04-30"), partitionCols)

	require.True(t, result.Applied)
	assert.NoError(t, result.Diagnostic)
	assert.Equal(t, 1, result.Clauses)
	assert.Equal(t, queryir.Or{Predicates: []queryir.Predicate{
		queryir.And{Predicates: []queryir.Predicate{yearEq("2020"), monthIn("04")}},
	}}, result.Predicate)
}

func TestCompile_WholeYear(t *testing.T) {
	c := NewCompiler(discardLogger())

	result := c.Compile(nil, plan(t, "2020-01-01", "2020-12-31"), partitionCols)

	require.True(t, result.Applied)
	assert.Equal(t, queryir.Or{Predicates: []queryir.Predicate{yearEq("2020")}}, result.Predicate)
}

func TestCompile_ClausesAreChronological(t *testing.T) {
	c := NewCompiler(discardLogger())

	result := c.Compile(nil, plan(t, "2018-12-30", "2020-01-02"), partitionCols)

	require.True(t, result.Applied)
	assert.Equal(t, 3, result.Clauses)
	assert.Equal(t, queryir.Or{Predicates: []queryir.Predicate{
		queryir.And{Predicates: []queryir.Predicate{yearEq("2018"), monthIn("12"), dayIn("30", "31")}},
		yearEq("2019"),
		queryir.And{Predicates: []queryir.Predicate{yearEq("2020"), monthIn("01"), dayIn("01", "02")}},
	}}, result.Predicate)
}

func TestCompile_AttachesToExisting(t *testing.T) {
	c := NewCompiler(discardLogger())
	brands := queryir.In{Column: queryir.Column{Name: "brandname"}, Values: queryir.Strings("acme")}

	result := c.Compile(brands, plan(t, "2020-04-09", "2020-04-10"), partitionCols)

	require.True(t, result.Applied)
	and, ok := result.Predicate.(queryir.And)
	require.True(t, ok, "expected And, got %T", result.Predicate)
	require.Len(t, and.Predicates, 2)
	assert.Equal(t, brands, and.Predicates[0])
	assert.Equal(t, queryir.Or{Predicates: []queryir.Predicate{
		queryir.And{Predicates: []queryir.Predicate{yearEq("2020"), monthIn("04"), dayIn("09", "10")}},
	}}, and.Predicates[1])
}

func TestCompile_MissingColumnDegrades(t *testing.T) {
	existing := queryir.Equals{Column: queryir.Column{Name: "brandname"}, Value: queryir.String("acme")}
	set := plan(t, "2020-04-01", "2020-04-30")

	testCases := []struct {
		name string
		cols Columns
	}{
		{"no year", Columns{Month: queryir.Col("month"), Day: queryir.Col("day")}},
		{"no month", Columns{Year: queryir.Col("year"), Day: queryir.Col("day")}},
		{"no day", Columns{Year: queryir.Col("year"), Month: queryir.Col("month")}},
		{"none", Columns{}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var buf bytes.Buffer
			c := NewCompiler(slog.New(slog.NewTextHandler(&buf, nil)))

			result := c.Compile(existing, set, tc.cols)

			assert.False(t, result.Applied)
			assert.Equal(t, existing, result.Predicate)
			assert.Zero(t, result.Clauses)
			assert.ErrorIs(t, result.Diagnostic, ErrColumnsUnavailable)
			assert.Contains(t, buf.String(), "level=WARN")
		})
	}
}

func TestCompile_MissingColumnWithNilExisting(t *testing.T) {
	c := NewCompiler(discardLogger())

	result := c.Compile(nil, plan(t, "2020-04-01", "2020-04-30"), Columns{})

	assert.False(t, result.Applied)
	assert.Nil(t, result.Predicate)
}

func TestCompile_EmptySet(t *testing.T) {
	var buf bytes.Buffer
	c := NewCompiler(slog.New(slog.NewTextHandler(&buf, nil)))
	existing := queryir.Equals{Column: queryir.Column{Name: "brandname"}, Value: queryir.String("acme")}

	result := c.Compile(existing, partition.FilterSet{}, partitionCols)

	assert.False(t, result.Applied)
	assert.Equal(t, existing, result.Predicate)
	assert.ErrorIs(t, result.Diagnostic, ErrNoClauses)
	assert.Contains(t, buf.String(), "level=ERROR")
}

func TestCompile_ClauseCountMatchesSet(t *testing.T) {
	c := NewCompiler(discardLogger())
	start := partition.NewDate(2016, time.March, 3)

	for _, days := range []int{0, 1, 30, 45, 400, 1500} {
		set := partition.MustPlan(start, start.AddDays(days))
		result := c.Compile(nil, set, partitionCols)

		require.True(t, result.Applied)
		assert.Equal(t, set.Len(), result.Clauses)
		assert.Len(t, result.Predicate.(queryir.Or).Predicates, set.Len())
		assert.True(t, queryir.Validate(queryir.Select{
			Columns: []queryir.Column{{Name: "stockid"}},
			From:    queryir.Table{Name: "stock"},
			Filter:  result.Predicate,
		}).IsValid())
	}
}

func TestCompile_ZeroValueCompiler(t *testing.T) {
	var c *Compiler

	result := c.Compile(nil, plan(t, "2020-04-01", "2020-04-30"), partitionCols)

	assert.True(t, result.Applied)
}

func TestCompile_ConcurrentUse(t *testing.T) {
	c := NewCompiler(discardLogger())
	set := plan(t, "2018-02-17", "2020-04-19")
	want := c.Compile(nil, set, partitionCols)

	var wg sync.WaitGroup
	for range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.Equal(t, want, c.Compile(nil, set, partitionCols))
		}()
	}
	wg.Wait()
}
