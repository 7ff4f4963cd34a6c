// Package errors provides classified error primitives used across sociallike.
//
// Errors carry a category (what failed), a severity (how bad it is) and a retry
// strategy, plus free-form context that adapters surface to CLI and HTTP users.
//
// Example usage:
//
//	err := errors.WrapError(cause, errors.CategoryStorage, "save content item").
//		WithContext("path", item.Path).
//		Build()
package errors
