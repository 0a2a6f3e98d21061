package querysql

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/roach88/athenaq/internal/queryir"
)

// quoteIdent double-quotes an identifier, doubling embedded quotes.
func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// quoteTable renders an optionally schema-qualified table name.
func quoteTable(t queryir.Table) string {
	if t.Schema == "" {
		return quoteIdent(t.Name)
	}
	return quoteIdent(t.Schema) + "." + quoteIdent(t.Name)
}

// valueToParam converts a QueryIR literal to a Go native bind parameter.
func valueToParam(v queryir.Value) (any, error) {
	switch val := v.(type) {
	case queryir.String:
		return string(val), nil
	case queryir.Int:
		return int64(val), nil
	case queryir.Bool:
		return bool(val), nil
	default:
		return nil, fmt.Errorf("unsupported literal type: %T", v)
	}
}

// renderLiteral renders a bind parameter as SQL literal text.
// Strings use single quotes with embedded quotes doubled.
func renderLiteral(arg any) (string, error) {
	switch v := arg.(type) {
	case string:
		return "'" + strings.ReplaceAll(v, "'", "''") + "'", nil
	case int64:
		return strconv.FormatInt(v, 10), nil
	case int:
		return strconv.Itoa(v), nil
	case bool:
		if v {
			return "TRUE", nil
		}
		return "FALSE", nil
	default:
		return "", fmt.Errorf("cannot inline argument of type %T", arg)
	}
}

// inlineArgs replaces each ? placeholder in sql with the matching rendered
// literal. "??" is an escaped question mark, as in squirrel.
func inlineArgs(sql string, args []any) (string, error) {
	var buf strings.Builder
	buf.Grow(len(sql) + 8*len(args))

	next := 0
	for {
		p := strings.IndexByte(sql, '?')
		if p == -1 {
			break
		}
		if p+1 < len(sql) && sql[p+1] == '?' {
			buf.WriteString(sql[:p+1])
			sql = sql[p+2:]
			continue
		}
		if next >= len(args) {
			return "", fmt.Errorf("placeholder %d has no argument", next+1)
		}
		lit, err := renderLiteral(args[next])
		if err != nil {
			return "", fmt.Errorf("argument %d: %w", next+1, err)
		}
		buf.WriteString(sql[:p])
		buf.WriteString(lit)
		sql = sql[p+1:]
		next++
	}
	buf.WriteString(sql)

	if next != len(args) {
		return "", fmt.Errorf("%d arguments for %d placeholders", len(args), next)
	}
	return buf.String(), nil
}
