// Package domain contains the core entities of the recall service: users,
// learned items, the per-item MemoryState scheduling record, and the rating
// and lifecycle enums the scheduler operates on. Entities validate themselves;
// they perform no I/O.
package domain
