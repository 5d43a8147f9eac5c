// Package restaurants implements the restaurant search and detail endpoints.
//
// Both endpoints validate the inbound request, forward the caller's
// Authorization header to the upstream API unchanged, and answer with either
// the upstream body verbatim or {"error": ...} carrying a normalized
// upstream error. The proxy holds no upstream credential of its own.
package restaurants
