// Package content manages articles and categories: validation, ownership,
// slug assignment and the category listing cache. Persistence sits behind
// the repository interfaces, implemented by internal/store/memory and
// internal/store/postgres.
package content
