// Package rest implements the REST-style page source: one GET request per
// page with the cursor passed as a page-number query parameter.
package rest

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

// Resources served by the REST endpoint.
const (
	ResourceCharacter = "character"
	ResourceLocation  = "location"
)

// envelope is the REST response body: {info, results}. Results stay raw
// until the resource kind picks the entry shape.
type envelope struct {
	Info struct {
		Count int     `json:"count"`
		Pages int     `json:"pages"`
		Next  *string `json:"next"`
		Prev  *string `json:"prev"`
	} `json:"info"`
	Results []json.RawMessage `json:"results"`
}

// Source fetches one resource collection page by page. It implements
// pagination.Source.
type Source struct {
	client   *client.Client
	baseURL  string
	resource string
	logger   zerolog.Logger
}

// NewSource creates a REST page source for the given resource.
func NewSource(c *client.Client, baseURL, resource string) (*Source, error) {
	switch resource {
	case ResourceCharacter, ResourceLocation:
	default:
		return nil, fmt.Errorf("unknown resource %q", resource)
	}

	return &Source{
		client:   c,
		baseURL:  baseURL,
		resource: resource,
		logger: log.With().
			Str("component", "rest-source").
			Str("resource", resource).
			Logger(),
	}, nil
}

// NewCharacterSource creates a REST page source for the character collection.
func NewCharacterSource(c *client.Client, baseURL string) *Source {
	s, _ := NewSource(c, baseURL, ResourceCharacter)
	return s
}

// NewLocationSource creates a REST page source for the location collection.
func NewLocationSource(c *client.Client, baseURL string) *Source {
	s, _ := NewSource(c, baseURL, ResourceLocation)
	return s
}

// FetchPage performs one round trip for the page at the given cursor.
func (s *Source) FetchPage(ctx context.Context, cursor int) (*pagination.Page, error) {
	url := fmt.Sprintf("%s/%s?page=%d", s.baseURL, s.resource, cursor)

	resp, err := s.client.Get(ctx, url)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		s.client.CountMalformed()
		return nil, client.MalformedError(fmt.Errorf("decode %s page %d: %w", s.resource, cursor, err))
	}

	records, err := s.normalize(env.Results)
	if err != nil {
		s.client.CountMalformed()
		return nil, client.MalformedError(fmt.Errorf("parse %s page %d entries: %w", s.resource, cursor, err))
	}

	page := &pagination.Page{
		Info: pagination.PageInfo{
			Count: env.Info.Count,
			Pages: env.Info.Pages,
		},
		Records: records,
	}

	// The REST endpoint reports the next page as a URL; the cursor itself is
	// a plain page number, so non-null next means cursor+1.
	if env.Info.Next != nil && *env.Info.Next != "" {
		next := cursor + 1
		page.Info.Next = &next
	}

	return page, nil
}

// normalize maps raw entries into domain records for this source's resource.
func (s *Source) normalize(entries []json.RawMessage) ([]model.Record, error) {
	records := make([]model.Record, 0, len(entries))

	for _, entry := range entries {
		switch s.resource {
		case ResourceCharacter:
			var raw model.RawCharacter
			if err := json.Unmarshal(entry, &raw); err != nil {
				return nil, err
			}
			records = append(records, model.NormalizeCharacter(raw))
		case ResourceLocation:
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
	return s.resource
}

// Close releases the underlying HTTP session.
func (s *Source) Close() error {
	return s.client.Close()
}
