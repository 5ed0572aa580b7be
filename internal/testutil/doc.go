// Package testutil contains helper builders used across tests to reduce
// boilerplate when constructing workflow states at arbitrary pipeline
// positions. These helpers are intentionally minimal and not intended for
// production usage.
package testutil
