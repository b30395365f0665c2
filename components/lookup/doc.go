// Package lookup provides an in-memory lookup/search resource with the wire
// shape remote-bound fields expect: GET {base}/{id} returns one item and
// GET {base}?q=&limit= returns {"items": [...]}.
//
// It backs the serve command and the remote and field package tests.
package lookup
