// Package sqlerr specifically handles database driver errors.
//
// It parses cryptic error codes from the database driver and
// converts them into client errors (e.g., converting a
// "foreign key violation" into a 406 on the offending field)
package sqlerr
