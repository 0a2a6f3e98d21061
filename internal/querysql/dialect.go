package querysql

import (
	"fmt"
	"sort"
	"strings"

	sq "github.com/Masterminds/squirrel"
)

// Dialect controls how a compiled query binds its literals.
type Dialect struct {
	// Name is the configuration name of the dialect.
	Name string

	// Placeholder formats bind parameters when InlineLiterals is false.
	Placeholder sq.PlaceholderFormat

	// InlineLiterals renders literals into the SQL text and returns no args.
	// Athena's query editor and StartQueryExecution take plain SQL text.
	InlineLiterals bool
}

var (
	// Athena renders a single self-contained statement with inline literals.
	Athena = Dialect{Name: "athena", Placeholder: sq.Question, InlineLiterals: true}

	// SQLite binds literals with ? placeholders.
	SQLite = Dialect{Name: "sqlite", Placeholder: sq.Question}

	// Postgres binds literals with $n placeholders.
	Postgres = Dialect{Name: "postgres", Placeholder: sq.Dollar}
)

var dialects = map[string]Dialect{
	Athena.Name:   Athena,
	SQLite.Name:   SQLite,
	Postgres.Name: Postgres,
}

// DialectByName looks up a dialect by its configuration name.
func DialectByName(name string) (Dialect, error) {
	d, ok := dialects[strings.ToLower(name)]
	if !ok {
		return Dialect{}, fmt.Errorf("unknown SQL dialect %q (valid: %s)", name, strings.Join(DialectNames(), ", "))
	}
	return d, nil
}

// DialectNames returns the known dialect names in sorted order.
func DialectNames() []string {
	names := make([]string, 0, len(dialects))
	for name := range dialects {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
