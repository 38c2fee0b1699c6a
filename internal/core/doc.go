// Package core provides the business logic for permit extraction, column
// mapping and import.
//
// The package is independent of any transport. The web server and the
// command-line tool both drive a [Service].
//
// # Architecture
//
//   - Extraction: [Service.Extract] pulls names and identifiers out of one
//     free-text cell (see package extract).
//   - Standardize: [Service.Standardize] crops a sheet, builds headers,
//     applies extraction requests and projects rows onto the canonical
//     NIB, Nama, KBLI, Alamat, NPWP, Nomor, Email schema.
//   - Sessions: stacking sessions accumulate monthly batches under a BULAN
//     label and export them as one report.
//   - Import: [Service.ImportPermits] loads PKL-format sheets into the
//     perizinan table through the resilience executor.
//
// # Import Flow
//
//  1. Sector, category and row offsets are validated against the catalog
//  2. Header cells are matched to permit fields by alias, then overrides
//  3. Each data row is normalized (NIB labels, combined number and date
//     cells, Indonesian dates, nan placeholders)
//  4. Rows are inserted one by one; failures are collected per row
//
// Concurrent imports and standardize runs are bounded by [ImportLimiter].
//
// # Error Handling
//
// Technical errors are mapped to user-friendly messages using [MapError].
// Each error category has a unique code for support reference:
//
//   - DB001-DB009: Database errors
//   - MAP001-MAP010: Mapping and import option errors
//   - FILE001-FILE006: Workbook errors
//   - UPL002-UPL007: Import and session errors
package core
