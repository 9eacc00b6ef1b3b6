// Package ts reads, writes, indexes and validates Qt Linguist translation
// source catalogs (".ts" files).
//
// A catalog groups messages by context. Each message pairs an English source
// string with its translation and carries an optional disambiguation comment,
// translator notes and the source locations it was extracted from.
//
// # Usage
//
//	cat, err := ts.ParseFile("lang/qbittorrent_uk.ts")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	idx := ts.NewIndex(cat)
//	fmt.Println(idx.Translate("MainWindow", "&Pause", ""))
//
// # Lookup semantics
//
// Translate follows the Qt runtime: the (context, source, comment) triple is
// looked up first, then (context, source, "") when a comment was given. If no
// finished translation exists the source text is returned unchanged.
//
// # Validation
//
// Validate reports data-quality problems such as duplicate (source, comment)
// pairs within a context or finished messages with an empty translation.
// Problems are reported, never fatal to loading.
package ts
