// Package notify forwards canonical URL changes to downstream systems so
// they can reindex the affected pages.
package notify
