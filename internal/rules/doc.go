// Package rules holds the endpoint ruleset model and its parser.
//
// A RuleSet is a declarative decision tree: typed Parameters, and an ordered
// forest of Rules. Each Rule is guarded by Conditions (named function calls
// evaluated left to right) and ends in one of three actions:
//
//   - ErrorRule: resolution fails with a diagnostic message
//   - EndpointRule: resolution succeeds with an Endpoint
//   - TreeRule: evaluation descends into nested rules
//
// The model is data only. Semantics (what a function does, how a built-in
// is supplied) live in the capability package; lowering lives in resolution.
//
// Parsing is token-driven (see jsonast) and has no hidden state: parsing the
// same document twice yields deep-equal values.
package rules
