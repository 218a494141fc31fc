// Package rulesrt is the runtime vocabulary of generated endpoint resolvers.
//
// Generated code builds an Endpoint through an Allocator. Every allocation
// is paired with a rollback registered on an Unwind list, so a failure part
// way through construction releases exactly what was taken, in reverse
// order, and a success hands everything to the caller.
//
// The package also carries the standard rule functions (IsSet, GetAttr,
// ParseURL, ...) and the single error every error rule raises,
// ErrReachedErrorRule.
package rulesrt
