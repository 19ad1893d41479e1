// Package ecs is an in-process Entity-Component-System runtime built around
// composable namespaces.
//
// A Namespace (module) owns id counters and definitions: components, hooks,
// systems and triggers. A Root is a namespace that additionally owns live
// storage: entities, per-component values, the component group index and the
// trigger table. Modules are composed into roots with Import, which copies
// definitions and records a translation table from the defining namespace's
// local ids to the importer's local ids, so handles can be shared by value.
//
// Component groups are maintained incrementally. Registering a query-based
// system creates a group keyed by the ascending set of non-global component
// ids it requires, backfills it once, and records the group in the
// membership list of every component in the key. Attaching or removing a
// component afterwards only visits that component's memberships.
//
// Everything is single-threaded and synchronous. Triggers run before the
// mutating call returns, and a trigger that mutates components re-enters
// dispatch; bounding that recursion is the caller's job. A Root must not be
// shared between goroutines.
package ecs
