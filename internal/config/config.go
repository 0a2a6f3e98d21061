package config

import (
	"encoding/json"
	"fmt"
	"time"
)

// Config is the complete athenaq configuration.
//
// Every section has defaults (see Default); a configuration file only needs
// to name what differs.
type Config struct {
	Athena    AthenaConfig    `yaml:"athena" json:"athena"`
	Partition PartitionConfig `yaml:"partition" json:"partition"`
	Stock     StockConfig     `yaml:"stock" json:"stock"`
	Server    ServerConfig    `yaml:"server" json:"server"`
}

// AthenaConfig locates the queried table.
type AthenaConfig struct {
	// Database is printed as the schema qualifier when non-empty.
	Database string `yaml:"database" json:"database" validate:"omitempty,ident"`
	Table    string `yaml:"table" json:"table" validate:"required,ident"`
	// Dialect selects SQL rendering: athena, sqlite or postgres.
	Dialect string `yaml:"dialect" json:"dialect" validate:"required,oneof=athena sqlite postgres"`
}

// PartitionConfig names the year/month/day partition columns.
//
// An empty name means the table lacks that column; generated queries are
// then produced without date pruning.
type PartitionConfig struct {
	Year  string `yaml:"year" json:"year" validate:"omitempty,ident"`
	Month string `yaml:"month" json:"month" validate:"omitempty,ident"`
	Day   string `yaml:"day" json:"day" validate:"omitempty,ident"`
}

// StockConfig describes the stock table and its product filter.
type StockConfig struct {
	Columns StockColumns `yaml:"columns" json:"columns"`

	// Categories are matched whole: productcategory IN (...).
	Categories []string `yaml:"categories" json:"categories" validate:"dive,required"`

	// Products are (category, name) pairs matched together.
	Products []ProductPair `yaml:"products" json:"products" validate:"dive"`
}

// StockColumns names the stock table's columns.
type StockColumns struct {
	StockID          string `yaml:"stock_id" json:"stock_id" validate:"required,ident"`
	ProductCategory  string `yaml:"product_category" json:"product_category" validate:"required,ident"`
	ProductName      string `yaml:"product_name" json:"product_name" validate:"required,ident"`
	BrandName        string `yaml:"brand_name" json:"brand_name" validate:"required,ident"`
	ShippedTimestamp string `yaml:"shipped_timestamp" json:"shipped_timestamp" validate:"required,ident"`
}

// ProductPair matches one product name inside one category.
type ProductPair struct {
	Category string `yaml:"category" json:"category" validate:"required"`
	Name     string `yaml:"name" json:"name" validate:"required"`
}

// ServerConfig configures `athenaq serve`.
type ServerConfig struct {
	Addr string `yaml:"addr" json:"addr" validate:"required"`
	// PlanCacheSize bounds the plan cache; 0 disables caching.
	PlanCacheSize int      `yaml:"plan_cache_size" json:"plan_cache_size" validate:"gte=0"`
	PlanCacheTTL  Duration `yaml:"plan_cache_ttl" json:"plan_cache_ttl" validate:"gte=0"`
	// ShutdownTimeout bounds graceful shutdown.
	ShutdownTimeout Duration `yaml:"shutdown_timeout" json:"shutdown_timeout" validate:"gte=0"`
}

// Default returns the built-in configuration: the stock table, its
// columns and the product filter of the original query service.
func Default() Config {
	return Config{
		Athena: AthenaConfig{
			Table:   "stock",
			Dialect: "athena",
		},
		Partition: PartitionConfig{
			Year:  "year",
			Month: "month",
			Day:   "day",
		},
		Stock: StockConfig{
			Columns: StockColumns{
				StockID:          "stockid",
				ProductCategory:  "productcategory",
				ProductName:      "productname",
				BrandName:        "brandname",
				ShippedTimestamp: "shippedtimestamp",
			},
			Categories: []string{"toys", "mobiles", "essentials"},
			Products:   []ProductPair{{Category: "furnitures", Name: "sofa"}},
		},
		Server: ServerConfig{
			Addr:            ":8080",
			PlanCacheSize:   1024,
			PlanCacheTTL:    Duration(10 * time.Minute),
			ShutdownTimeout: Duration(10 * time.Second),
		},
	}
}

// Duration is a time.Duration written as a Go duration string ("10m").
type Duration time.Duration

// Std returns d as a time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

func (d Duration) String() string { return time.Duration(d).String() }

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", text, err)
	}
	*d = Duration(parsed)
	return nil
}

// UnmarshalJSON accepts a duration string.
func (d *Duration) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("duration must be a string like \"10m\": %w", err)
	}
	return d.UnmarshalText([]byte(s))
}
