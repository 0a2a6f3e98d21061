package stock

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/roach88/athenaq/internal/config"
	"github.com/roach88/athenaq/internal/metrics"
	"github.com/roach88/athenaq/internal/partition"
	"github.com/roach88/athenaq/internal/predicate"
	"github.com/roach88/athenaq/internal/queryir"
	"github.com/roach88/athenaq/internal/querysql"
)

// ErrNoBrands is returned when a request names no usable brand.
var ErrNoBrands = errors.New("at least one brand is required")

// PlanFunc plans the partition filters for an inclusive date range.
// partition.Plan is the default; callers may substitute a cached planner.
type PlanFunc func(start, end partition.Date) (partition.FilterSet, error)

// Request asks for the stock query of some brands over a date range.
type Request struct {
	From   partition.Date `json:"from"`
	To     partition.Date `json:"to"`
	Brands []string       `json:"brands"`
}

// Query is a generated stock query.
type Query struct {
	ID      string `json:"query_id"`
	SQL     string `json:"sql"`
	Args    []any  `json:"args,omitempty"`
	Dialect string `json:"dialect"`

	// Filters is the partition plan behind the date restriction.
	Filters partition.FilterSet `json:"filters"`

	// DateFilterApplied is false when the query scans every partition.
	DateFilterApplied bool `json:"date_filter_applied"`

	// Diagnostic explains a missing date filter.
	Diagnostic string `json:"diagnostic,omitempty"`
}

// Builder assembles stock queries from configuration.
//
// A Builder is immutable after construction and safe for concurrent use.
type Builder struct {
	cfg        config.Config
	dialect    querysql.Dialect
	sql        *querysql.SQLCompiler
	predicates *predicate.Compiler
	plan       PlanFunc
	ids        IDGenerator
	metrics    *metrics.Metrics
	logger     *slog.Logger
}

// Option configures a Builder.
type Option func(*Builder)

// WithLogger sets the logger (default slog.Default()).
func WithLogger(logger *slog.Logger) Option {
	return func(b *Builder) { b.logger = logger }
}

// WithIDGenerator sets the query id source (default UUIDv7Generator).
func WithIDGenerator(ids IDGenerator) Option {
	return func(b *Builder) { b.ids = ids }
}

// WithMetrics records generation metrics.
func WithMetrics(m *metrics.Metrics) Option {
	return func(b *Builder) { b.metrics = m }
}

// WithPlanner replaces partition.Plan.
func WithPlanner(plan PlanFunc) Option {
	return func(b *Builder) { b.plan = plan }
}

// NewBuilder creates a Builder for cfg. The configured dialect must exist.
func NewBuilder(cfg config.Config, opts ...Option) (*Builder, error) {
	dialect, err := querysql.DialectByName(cfg.Athena.Dialect)
	if err != nil {
		return nil, err
	}

	b := &Builder{
		cfg:     cfg,
		dialect: dialect,
		sql:     querysql.NewSQLCompiler(dialect),
		plan:    partition.Plan,
		ids:     UUIDv7Generator{},
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(b)
	}
	b.predicates = predicate.NewCompiler(b.logger)
	return b, nil
}

// Dialect returns the dialect queries are rendered in.
func (b *Builder) Dialect() querysql.Dialect {
	return b.dialect
}

// Build generates the stock query for req.
//
// The query selects the configured stock columns for the requested brands
// and product filter, restricted to the date range through partition
// predicates, newest shipment first. When the table lacks a partition
// column the query is still produced, unpruned, with DateFilterApplied
// false and a diagnostic.
func (b *Builder) Build(req Request) (*Query, error) {
	brands := NormalizeBrands(req.Brands)
	if len(brands) == 0 {
		return nil, ErrNoBrands
	}

	b.logger.Debug("building stock query",
		"action", "get_query_string",
		"from", req.From.String(),
		"to", req.To.String(),
		"brands", len(brands))

	filters, err := b.plan(req.From, req.To)
	if err != nil {
		return nil, fmt.Errorf("plan partitions: %w", err)
	}
	b.metrics.ObservePlan(filters.Shape().String(), filters.Len())

	result := b.predicates.Compile(b.baseFilter(brands), filters, b.partitionColumns())

	sql, args, err := b.sql.Compile(b.selectFor(result.Predicate))
	if err != nil {
		return nil, fmt.Errorf("compile query: %w", err)
	}

	q := &Query{
		ID:                b.ids.Generate(),
		SQL:               sql,
		Args:              args,
		Dialect:           b.dialect.Name,
		Filters:           filters,
		DateFilterApplied: result.Applied,
	}
	if result.Diagnostic != nil {
		q.Diagnostic = result.Diagnostic.Error()
	}
	b.metrics.ObserveQuery(q.Dialect, q.DateFilterApplied)

	b.logger.Info("stock query generated",
		"action", "get_query_string",
		"query_id", q.ID,
		"from", req.From.String(),
		"to", req.To.String(),
		"shape", filters.Shape().String(),
		"filters", filters.Len(),
		"applied", q.DateFilterApplied)
	b.logger.Debug("stock query text", "query_id", q.ID, "sql", q.SQL)

	return q, nil
}

// baseFilter is the brand restriction AND-ed with the product filter.
func (b *Builder) baseFilter(brands []string) queryir.Predicate {
	cols := b.cfg.Stock.Columns
	brandFilter := queryir.In{
		Column: queryir.Column{Name: cols.BrandName},
		Values: queryir.Strings(brands...),
	}

	product := b.productFilter()
	if product == nil {
		return queryir.And{Predicates: []queryir.Predicate{brandFilter}}
	}
	return queryir.And{Predicates: []queryir.Predicate{brandFilter, product}}
}

// productFilter matches whole categories or (category, name) pairs.
// Returns nil when neither is configured.
func (b *Builder) productFilter() queryir.Predicate {
	cols := b.cfg.Stock.Columns
	var alternatives []queryir.Predicate

	if len(b.cfg.Stock.Categories) > 0 {
		alternatives = append(alternatives, queryir.In{
			Column: queryir.Column{Name: cols.ProductCategory},
			Values: queryir.Strings(b.cfg.Stock.Categories...),
		})
	}
	for _, p := range b.cfg.Stock.Products {
		alternatives = append(alternatives, queryir.And{Predicates: []queryir.Predicate{
			queryir.Equals{Column: queryir.Column{Name: cols.ProductCategory}, Value: queryir.String(p.Category)},
			queryir.Equals{Column: queryir.Column{Name: cols.ProductName}, Value: queryir.String(p.Name)},
		}})
	}

	if len(alternatives) == 0 {
		return nil
	}
	return queryir.Or{Predicates: alternatives}
}

func (b *Builder) partitionColumns() predicate.Columns {
	return predicate.Columns{
		Year:  queryir.OptionalCol(b.cfg.Partition.Year),
		Month: queryir.OptionalCol(b.cfg.Partition.Month),
		Day:   queryir.OptionalCol(b.cfg.Partition.Day),
	}
}

func (b *Builder) selectFor(filter queryir.Predicate) queryir.Select {
	cols := b.cfg.Stock.Columns
	return queryir.Select{
		Columns: []queryir.Column{
			{Name: cols.StockID},
			{Name: cols.ProductCategory},
			{Name: cols.ProductName},
			{Name: cols.BrandName},
			{Name: cols.ShippedTimestamp},
		},
		From:    queryir.Table{Schema: b.cfg.Athena.Database, Name: b.cfg.Athena.Table},
		Filter:  filter,
		OrderBy: []queryir.OrderBy{{Column: queryir.Column{Name: cols.ShippedTimestamp}, Desc: true}},
	}
}
