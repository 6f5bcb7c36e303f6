// Package jsonldb provides a generic, concurrent-safe, JSONL-backed table.
//
// A [Table] stores rows in a JSON Lines file with full in-memory caching for
// fast reads. Line 1 of the file is a schema header derived from the row
// type; each following line is one row. Appends are O(1) file appends;
// deletes and updates rewrite the file through a temporary file and rename.
//
// [UniqueIndex] provides O(1) lookup by a secondary key and stays in sync
// with the table through [TableObserver].
package jsonldb
