// Package canonical pins the canonical URL of content published before a
// cutoff date to a previous domain.
//
// Sites that move to a new domain keep links and share counts of older
// content by pointing its canonical URL at the old domain, while newer
// content follows the live domain:
//
//	res, err := canonical.NewUpdater(repo).UpdateCanonicalURL(ctx, rc, "https://example.org",
//		canonical.UpdateRequest{
//			OldCanonicalDomain: "http://example.org",
//			PublishedBefore:    time.Date(2017, 1, 1, 0, 0, 0, 0, time.UTC),
//		})
package canonical
