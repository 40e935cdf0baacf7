// Package tree provides the render tree: mutable nodes that are executed
// (bound to a render Context), rendered into a presentation tree and
// refreshed in place when records change.
//
// The node kinds are Element, Text, Raw, Error and Macro. A Macro node looks up
// its definition in the Context's Registry when executed and delegates
// building, refreshing and event handling to the resulting MacroInstance.
//
// Nodes keep a stable identity across refresh cycles: a refresh mutates
// fields and presentation nodes in place instead of rebuilding the tree.
package tree
