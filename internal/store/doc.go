// Package store defines interfaces for data persistence operations on
// users, study requests, materials, the credit ledger and dashboard items.
// These interfaces abstract the underlying storage mechanism from the
// application's core logic, and the TxRunner seam lets services compose
// several store writes into one transaction without holding a database
// handle themselves.
package store
