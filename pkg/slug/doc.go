// Package slug turns titles and names into URL-safe identifiers and
// assigns them uniquely within a scope.
//
// Make normalizes text. Latin diacritics are folded to ASCII, any other
// run of characters becomes a single separator:
//
//	slug.Make("Café & Restaurant")             // "cafe-restaurant"
//	slug.Make("Über Größe", slug.MaxLength(8)) // "uber-gro"
//	slug.Make("admin", slug.ReservedSlugs("admin"))
//	// "admin-k7x2m4"
//
// Assigner adds a uniqueness probe on top of Make. The base slug is kept
// when free, otherwise a random 6-character suffix is appended:
//
//	a := slug.NewAssigner(repo.SlugExists)
//	s, err := a.Assign(ctx, "Hello World", nil)
//	// "hello-world", or "hello-world-x3k7f9" when taken
//
// Pass the record's own ID as exclude when re-slugging on update.
package slug
