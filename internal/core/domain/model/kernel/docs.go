// Package kernel provides the shared domain primitives of the custody service.
//
// The package includes:
//   - UUID: a value object for unique identifiers of off-ledger aggregates
//   - Location: the city / state / country a package was last seen at
//   - PackageAttributes: weight and dimensions asserted at custody transfer
//   - Party and Role: a user acting in the custody chain
//
// Every value object is created through its constructor and fails Validate()
// when used as a zero value. They are immutable and safe for concurrent use.
package kernel
