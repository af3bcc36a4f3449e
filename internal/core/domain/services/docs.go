// Package services provides domain services that span more than one aggregate or
// that must be shared by several layers of the custody service.
//
// The package includes:
//   - CustodyAuthorizer: the role and relationship rules gating every custody operation
//
// The authorizer is pure: it never performs I/O and is safe for concurrent use.
package services
