// Package database provides SQLite-based storage for grepscan.
//
// This package implements the FindingDB, which stores:
//   - Scan reports as JSON for later display
//   - A risk summary per scan for cheap history listings
//   - One row per finding for cross-scan queries
//
// Design decision: We use SQLite (via modernc.org/sqlite) instead of other
// databases because:
// 1. No external dependencies - the database is a single file
// 2. CGO-free implementation allows easy cross-compilation
// 3. WAL mode provides good concurrent read performance
package database
