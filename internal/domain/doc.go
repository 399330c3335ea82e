// Package domain contains the core business entities of the application:
// users and their credit balances, study generation requests, the materials
// those requests produce and dashboard placements. Types here carry their
// own validation and construction rules and are independent of any specific
// infrastructure or delivery mechanism.
package domain
