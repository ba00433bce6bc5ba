// Package models defines the core domain models for labelpress.
//
// # Models
//
//   - Session: the operator's authenticated session (token, profile, location)
//   - RawProductRecord: a product exactly as the backend returns it, with all
//     of its inconsistent field aliases intact
//   - NormalizedProduct: the canonical product shape the rest of the app uses
//   - QueueLineItem: one "add" event in the print queue
//   - RawLocation / Location: site records, raw and normalized
//
// # Design Principles
//
//  1. Raw backend shapes stay in models so the alias mess is visible in one
//     place; normalization policy lives in internal/catalog
//  2. NormalizedProduct and QueueLineItem are plain value types (no pointers,
//     no behavior) so they can be copied freely between components
//  3. The User payload is opaque to this client: it is persisted and displayed
//     but never interpreted, so it stays a json.RawMessage
package models
