// Package store defines persistence interfaces for the service's entities
// along with shared error types and transaction helpers. Implementations live
// in internal/platform; services depend only on these interfaces.
package store
