// Package types contains the core domain types and interfaces for the Huddle
// library.
//
// This package exists so that internal packages can share types without
// importing the root huddle package, which would create import cycles. The
// root package re-exports the public subset via type aliases.
package types
