// Package graphql implements the query-based page source: a single endpoint
// accepting a structured query with a page-number variable. In combined mode
// one round trip requests the character and location collections together,
// trading round-trip count for larger per-request payloads.
package graphql

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/ram-tools/ram-client/pkg/client"
	"github.com/ram-tools/ram-client/pkg/model"
	"github.com/ram-tools/ram-client/pkg/pagination"
)

// Resources served by the query endpoint.
const (
	ResourceCharacters = "characters"
	ResourceLocations  = "locations"
)

const charactersQuery = `query GetCharacters($page: Int!) {
  characters(page: $page) {
    info { count pages next prev }
    results {
      id name status species type gender
      origin { name }
      location { id name }
      image
      episode { id }
      created
    }
  }
}`

const locationsQuery = `query GetLocations($page: Int!) {
  locations(page: $page) {
    info { count pages next prev }
    results {
      id name type dimension
      residents { id }
      created
    }
  }
}`

const combinedQuery = `query GetCombinedPage($charPage: Int!, $locPage: Int!) {
  characters(page: $charPage) {
    info { count pages next prev }
    results {
      id name status species type gender
      origin { name }
      location { id name }
      image
      episode { id }
      created
    }
  }
  locations(page: $locPage) {
    info { count pages next prev }
    results {
      id name type dimension
      residents { id }
      created
    }
  }
}`

// block is one resource's {info, results} slice of a query response.
type block struct {
	Info struct {
		Count int  `json:"count"`
		Pages int  `json:"pages"`
		Next  *int `json:"next"`
		Prev  *int `json:"prev"`
	} `json:"info"`
	Results []json.RawMessage `json:"results"`
}

// envelope is the query response body. A non-empty Errors list means the
// payload cannot be trusted as a page, regardless of HTTP status.
type envelope struct {
	Data struct {
		Characters *block `json:"characters"`
		Locations  *block `json:"locations"`
	} `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

// Source fetches pages through the query endpoint. It implements
// pagination.Source. Combined mode is a construction flag, not a separate
// code path: it only changes what one round trip requests.
type Source struct {
	client   *client.Client
	url      string
	resource string
	combined bool
	logger   zerolog.Logger

	// Per-resource page counts, learned from the first combined response.
	charPages int
	locPages  int
}

// NewSource creates a query page source for a single resource.
func NewSource(c *client.Client, url, resource string) (*Source, error) {
	switch resource {
	case ResourceCharacters, ResourceLocations:
	default:
		return nil, fmt.Errorf("unknown resource %q", resource)
	}

	return &Source{
		client:   c,
		url:      url,
		resource: resource,
		logger: log.With().
			Str("component", "graphql-source").
			Str("resource", resource).
			Logger(),
	}, nil
}

// NewCombinedSource creates a query page source that fetches characters and
// locations together in each round trip.
func NewCombinedSource(c *client.Client, url string) *Source {
	return &Source{
		client:   c,
		url:      url,
		combined: true,
		logger: log.With().
			Str("component", "graphql-source").
			Str("resource", "characters+locations").
			Logger(),
	}
}

// FetchPage performs one round trip for the page at the given cursor.
func (s *Source) FetchPage(ctx context.Context, cursor int) (*pagination.Page, error) {
	if s.combined {
		return s.fetchCombined(ctx, cursor)
	}
	return s.fetchSingle(ctx, cursor)
}

// fetchSingle requests one resource's page.
func (s *Source) fetchSingle(ctx context.Context, cursor int) (*pagination.Page, error) {
	query := charactersQuery
	if s.resource == ResourceLocations {
		query = locationsQuery
	}

	env, err := s.exec(ctx, query, map[string]any{"page": cursor})
	if err != nil {
		return nil, err
	}

	blk := env.Data.Characters
	if s.resource == ResourceLocations {
		blk = env.Data.Locations
	}
	if blk == nil {
		s.client.CountMalformed()
		return nil, client.MalformedError(fmt.Errorf("%s page %d missing from response", s.resource, cursor))
	}

	records, err := normalizeBlock(blk, s.resource)
	if err != nil {
		s.client.CountMalformed()
		return nil, client.MalformedError(fmt.Errorf("parse %s page %d entries: %w", s.resource, cursor, err))
	}

	return &pagination.Page{
		Info: pagination.PageInfo{
			Count: blk.Info.Count,
			Pages: blk.Info.Pages,
			Next:  blk.Info.Next,
		},
		Records: records,
	}, nil
}

// fetchCombined requests the character and the location page for the cursor
// in one round trip while both collections still have pages, then falls back
// to single-resource queries for whichever collection runs longer. The
// location side stops contributing once its page count is passed, so no
// entries are duplicated.
func (s *Source) fetchCombined(ctx context.Context, cursor int) (*pagination.Page, error) {
	wantChars := s.charPages == 0 || cursor <= s.charPages
	wantLocs := s.locPages == 0 || cursor <= s.locPages

	var env *envelope
	var err error
	switch {
	case wantChars && wantLocs:
		env, err = s.exec(ctx, combinedQuery, map[string]any{"charPage": cursor, "locPage": cursor})
	case wantChars:
		env, err = s.exec(ctx, charactersQuery, map[string]any{"page": cursor})
	default:
		env, err = s.exec(ctx, locationsQuery, map[string]any{"page": cursor})
	}
	if err != nil {
		return nil, err
	}

	page := &pagination.Page{}

	if wantChars {
		blk := env.Data.Characters
		if blk == nil {
			s.client.CountMalformed()
			return nil, client.MalformedError(fmt.Errorf("characters page %d missing from response", cursor))
		}
		records, nerr := normalizeBlock(blk, ResourceCharacters)
		if nerr != nil {
			s.client.CountMalformed()
			return nil, client.MalformedError(fmt.Errorf("parse characters page %d entries: %w", cursor, nerr))
		}
		page.Records = append(page.Records, records...)
		page.Info.Count += blk.Info.Count
		s.charPages = blk.Info.Pages
	}

	if wantLocs {
		blk := env.Data.Locations
		if blk == nil {
			s.client.CountMalformed()
			return nil, client.MalformedError(fmt.Errorf("locations page %d missing from response", cursor))
		}
		records, nerr := normalizeBlock(blk, ResourceLocations)
		if nerr != nil {
			s.client.CountMalformed()
			return nil, client.MalformedError(fmt.Errorf("parse locations page %d entries: %w", cursor, nerr))
		}
		page.Records = append(page.Records, records...)
		page.Info.Count += blk.Info.Count
		s.locPages = blk.Info.Pages
	}

	page.Info.Pages = max(s.charPages, s.locPages)
	if cursor < page.Info.Pages {
		next := cursor + 1
		page.Info.Next = &next
	}

	return page, nil
}

// exec posts one query and decodes the response envelope. A response with
// GraphQL errors classifies as malformed: the pagination metadata cannot be
// trusted.
func (s *Source) exec(ctx context.Context, query string, variables map[string]any) (*envelope, error) {
	payload := map[string]any{
		"query":     query,
		"variables": variables,
	}

	resp, err := s.client.PostJSON(ctx, s.url, payload)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		s.client.CountMalformed()
		return nil, client.MalformedError(fmt.Errorf("decode query response: %w", err))
	}

	if len(env.Errors) > 0 {
		s.client.CountMalformed()
		return nil, client.MalformedError(fmt.Errorf("query failed: %s", env.Errors[0].Message))
	}

	return &env, nil
}

// normalizeBlock maps a block's raw entries into domain records.
func normalizeBlock(blk *block, resource string) ([]model.Record, error) {
	records := make([]model.Record, 0, len(blk.Results))

	for _, entry := range blk.Results {
		switch resource {
		case ResourceCharacters:
			var raw model.RawCharacter
			if err := json.Unmarshal(entry, &raw); err != nil {
				return nil, err
			}
			records = append(records, model.NormalizeCharacter(raw))
		case ResourceLocations:
			var raw model.RawLocation
			if err := json.Unmarshal(entry, &raw); err != nil {
				return nil, err
			}
			records = append(records, model.NormalizeLocation(raw))
		}
	}

	return records, nil
}

// Resource implements pagination.Source.
func (s *Source) Resource() string {
	if s.combined {
		return "characters+locations"
	}
	return s.resource
}

// Close releases the underlying HTTP session.
func (s *Source) Close() error {
	return s.client.Close()
}
