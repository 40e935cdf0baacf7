// Package rabbithole is the composition root of a small wiki engine built
// around stateful, incrementally refreshed macro widgets.
//
// Records live in a store that notifies listeners with the set of changed
// titles. Documents render records through a markup parser into a tree of
// nodes attached to an HTML presentation tree, and refresh in place when
// records change: a slider whose state record flips only patches its body
// visibility, materializing the body the first time it opens.
//
// Features:
//
//   - **Explicit context**: store, parser, macros and parent chain are passed
//     to every node; there is no global state.
//   - **Batched notifications**: one change set per mutation cycle, with
//     Store.Batch to coalesce imports.
//   - **Imports**: the load command reads HTML store areas, .tid, JSON, YAML,
//     Markdown and CSV files, and can follow them with a file watcher.
//
// Usage:
//
//	wiki, err := rabbithole.New(rabbithole.WithLogger(logger))
//	if err != nil {
//		return err
//	}
//	if err := wiki.Load(ctx, "notes.tid"); err != nil {
//		return err
//	}
//	doc, err := wiki.Render("Home")
package rabbithole
