// Package rbac holds the role model shared by the API and the web tier.
//
// This package implements:
//   - The closed set of conference roles and their priority order
//   - Role-set intersection used by the API gate and the web route guards
//   - Default dashboard resolution for a signed-in user
//
// Everything here is pure: no I/O, no shared state.
package rbac
