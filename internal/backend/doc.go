// Package backend provides the stores phase 2 of an import commits to.
//
// Local writes members, registrations and payments to the service's own
// database. Remote talks to the same operations over HTTP, for example to
// another instance exposing the backend API.
package backend
