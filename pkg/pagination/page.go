package pagination

import (
	"context"

	"github.com/ram-tools/ram-client/pkg/model"
)

// PageInfo is the pagination metadata carried by every page.
type PageInfo struct {
	// Count is the collection's reported total item count.
	Count int

	// Pages is the collection's reported total page count.
	Pages int

	// Next is the cursor of the following page, nil on the last page.
	Next *int
}

// Page is one network round trip's worth of normalized records plus
// pagination metadata.
type Page struct {
	Info    PageInfo
	Records []model.Record
}

// Source is the capability implemented by each transport: one network round
// trip per call, returning either a normalized page or a classified
// *client.FetchError. Sources never retry; retry decisions belong to the
// driver and its policy.
type Source interface {
	// FetchPage fetches the page at the given cursor. Cursors start at 1.
	FetchPage(ctx context.Context, cursor int) (*Page, error)

	// Resource names the collection(s) served, for logging and reports.
	Resource() string

	// Close releases the source's network resources.
	Close() error
}
