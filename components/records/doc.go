// Package records provides an in-memory REST collection for record views:
// POST / creates a record with a generated id, PUT /{id} merges top-level
// fields and GET /{id} fetches. Failures use the {"error": ...} body shape
// the record controller interprets.
package records
