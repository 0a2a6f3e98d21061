// Package replica runs generated stock queries against a local SQLite copy
// of the stock table to check which days they actually select.
//
// The table carries the configured stock columns plus the year/month/day
// partition columns as zero-padded TEXT, the way Athena stores Hive
// partition values. SeedDays writes one row per day; Select and SelectDays
// execute SQL produced in the sqlite dialect; CompareDays reports missing
// and extra days against the requested range.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - One open connection, so ":memory:" databases survive between calls
package replica
