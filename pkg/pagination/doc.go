// Package pagination drives a page source across all pages of a remote
// collection, absorbing transient failures according to the retry policy and
// yielding a stream of normalized records.
//
// The driver is deliberately sequential: one page fetch in flight at a time,
// with the backoff sleep as the only blocking point. The cursor advances only
// on a successful fetch, so a retried page is retried at the identical cursor
// and no pages are skipped or duplicated across retries.
package pagination
