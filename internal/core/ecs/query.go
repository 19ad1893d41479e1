package ecs

import "slices"

// QueryKind discriminates the shape of a Query.
type QueryKind uint8

const (
	// QueryNone is the zero Query; registering it fails.
	QueryNone QueryKind = iota
	// QueryList requires a plain ordered list of components.
	QueryList
	// QueryAdvanced adds exclusions and ordering constraints.
	QueryAdvanced
)

func (k QueryKind) String() string {
	switch k {
	case QueryList:
		return "list"
	case QueryAdvanced:
		return "advanced"
	default:
		return "none"
	}
}

// Query describes the entities a system runs over. Component values are
// handed to the system in the order of the With list.
type Query struct {
	kind    QueryKind
	with    []ComponentRef
	without []ComponentRef
	before  []System
	after   []System
}

// With starts a list query over the given components.
func With(components ...ComponentRef) Query {
	return Query{kind: QueryList, with: slices.Clone(components)}
}

// Without excludes entities holding any of the given components.
func (q Query) Without(components ...ComponentRef) Query {
	q.kind = QueryAdvanced
	q.without = append(slices.Clone(q.without), components...)
	return q
}

// Before orders the system ahead of the given systems within its hook.
func (q Query) Before(systems ...System) Query {
	q.kind = QueryAdvanced
	q.before = append(slices.Clone(q.before), systems...)
	return q
}

// After orders the system behind the given systems within its hook.
func (q Query) After(systems ...System) Query {
	q.kind = QueryAdvanced
	q.after = append(slices.Clone(q.after), systems...)
	return q
}

func (q Query) Kind() QueryKind { return q.kind }

func (q Query) Components() []ComponentRef { return slices.Clone(q.with) }

func (q Query) Excluded() []ComponentRef { return slices.Clone(q.without) }

// Order is the ordering constraints carried by the query. List queries have
// none.
func (q Query) Order() (before, after []System) {
	return slices.Clone(q.before), slices.Clone(q.after)
}
