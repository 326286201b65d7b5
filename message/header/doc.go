// Package header provides the ordered collection of fields at the top of a
// message or part. Low-level work on single fields, like encoded-words and
// folding, lives in the field subpackage. This package adds lookup by name,
// replacement and removal, and typed getters and setters for the fields
// the rest of the module cares about, such as Content-Type and Date.
//
// Parse builds a header from raw lines leniently: anything it cannot read as
// a field is kept aside rather than failing.
package header
