package rest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ram-tools/ram-client/internal/testutil"
	"github.com/ram-tools/ram-client/pkg/client"
	"github.com/ram-tools/ram-client/pkg/model"
	"github.com/ram-tools/ram-client/pkg/pagination"
	"github.com/ram-tools/ram-client/pkg/retry"
)

func testPolicy() retry.Policy {
	return retry.Policy{
		MaxAttempts:       3,
		InitialBackoff:    time.Millisecond,
		BackoffMultiplier: 2.0,
		MaxBackoff:        10 * time.Millisecond,
	}
}

func TestNewSourceRejectsUnknownResource(t *testing.T) {
	_, err := NewSource(client.New(client.DefaultConfig()), "http://example.com", "episode")
	require.Error(t, err)
}

func TestFetchPageCharacters(t *testing.T) {
	mock := testutil.NewMockAPI()
	defer mock.Close()
	mock.ServeRESTCollection("character", 45, 20)

	source := NewCharacterSource(client.New(client.DefaultConfig()), mock.URL())

	page, err := source.FetchPage(context.Background(), 1)
	require.NoError(t, err)

	assert.Equal(t, 45, page.Info.Count)
	assert.Equal(t, 3, page.Info.Pages)
	require.NotNil(t, page.Info.Next)
	assert.Equal(t, 2, *page.Info.Next)
	require.Len(t, page.Records, 20)

	char, ok := page.Records[0].(model.Character)
	require.True(t, ok)
	assert.Equal(t, 1, char.ID)
	assert.Equal(t, "Character 1", char.Name)
	require.NotNil(t, char.LocationID)
	assert.Equal(t, 3, *char.LocationID)
}

func TestFetchPageLastPageHasNoNext(t *testing.T) {
	mock := testutil.NewMockAPI()
	defer mock.Close()
	mock.ServeRESTCollection("character", 45, 20)

	source := NewCharacterSource(client.New(client.DefaultConfig()), mock.URL())

	page, err := source.FetchPage(context.Background(), 3)
	require.NoError(t, err)

	assert.Nil(t, page.Info.Next)
	assert.Len(t, page.Records, 5)
}

func TestFetchPageLocations(t *testing.T) {
	mock := testutil.NewMockAPI()
	defer mock.Close()
	mock.ServeRESTCollection("location", 7, 20)

	source := NewLocationSource(client.New(client.DefaultConfig()), mock.URL())

	page, err := source.FetchPage(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, page.Records, 7)

	loc, ok := page.Records[0].(model.Location)
	require.True(t, ok)
	assert.Equal(t, "Location 1", loc.Name)
	assert.Equal(t, 1, loc.ResidentCount)
	assert.Equal(t, []int{1}, loc.ResidentIDs)
}

func TestFetchPageOutOfRange(t *testing.T) {
	mock := testutil.NewMockAPI()
	defer mock.Close()
	mock.ServeRESTCollection("character", 45, 20)

	source := NewCharacterSource(client.New(client.DefaultConfig()), mock.URL())

	_, err := source.FetchPage(context.Background(), 99)
	require.Error(t, err)

	var fe *client.FetchError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, client.ErrorClassClient, fe.Class)
	assert.Equal(t, 404, fe.StatusCode)
}

func TestFetchPageRateLimitCarriesWaitHint(t *testing.T) {
	mock := testutil.NewMockAPI()
	defer mock.Close()
	mock.SetResponse("/character", testutil.NewRateLimitResponse(7))

	source := NewCharacterSource(client.New(client.DefaultConfig()), mock.URL())

	_, err := source.FetchPage(context.Background(), 1)
	require.Error(t, err)

	var fe *client.FetchError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, client.ErrorClassRateLimit, fe.Class)
	assert.Equal(t, 7*time.Second, fe.WaitHint)
}

func TestFetchPageMalformedBody(t *testing.T) {
	mock := testutil.NewMockAPI()
	defer mock.Close()
	mock.SetResponse("/character", testutil.NewMalformedResponse())

	source := NewCharacterSource(client.New(client.DefaultConfig()), mock.URL())

	_, err := source.FetchPage(context.Background(), 1)
	require.Error(t, err)

	var fe *client.FetchError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, client.ErrorClassMalformed, fe.Class)
}

func TestDriverOverRESTSource(t *testing.T) {
	mock := testutil.NewMockAPI()
	defer mock.Close()
	mock.ServeRESTCollection("character", 45, 20)

	source := NewCharacterSource(client.New(client.DefaultConfig()), mock.URL())
	driver := pagination.NewDriver(source, testPolicy())

	res := driver.Run(context.Background())

	assert.Equal(t, pagination.StatusSuccess, res.Status)
	assert.Equal(t, 3, res.PagesFetched)
	assert.Len(t, res.Records, 45)
	assert.Equal(t, 3, mock.GetRequestCount())
}

func TestDriverRecoversFromTransientServerErrors(t *testing.T) {
	mock := testutil.NewMockAPI()
	defer mock.Close()

	okBody, _ := testutil.RESTPage("character", 5, 20, 1)
	mock.SetScript("/character", []testutil.MockResponse{
		testutil.NewServerErrorResponse(),
		testutil.NewServerErrorResponse(),
		{StatusCode: 200, Body: okBody},
	})

	source := NewCharacterSource(client.New(client.DefaultConfig()), mock.URL())
	driver := pagination.NewDriver(source, testPolicy())

	res := driver.Run(context.Background())

	assert.Equal(t, pagination.StatusSuccess, res.Status)
	assert.Equal(t, 1, res.PagesFetched)
	assert.Equal(t, 2, res.Retries)
	assert.Len(t, res.Records, 5)
	assert.Equal(t, 3, mock.GetRequestCount())
}

func TestDriverAbortsOnPersistentServerErrors(t *testing.T) {
	mock := testutil.NewMockAPI()
	defer mock.Close()
	mock.SetResponse("/character", testutil.NewServerErrorResponse())

	source := NewCharacterSource(client.New(client.DefaultConfig()), mock.URL())
	driver := pagination.NewDriver(source, testPolicy())

	res := driver.Run(context.Background())

	assert.Equal(t, pagination.StatusAborted, res.Status)
	assert.ErrorIs(t, res.Err, client.ErrRetryExhausted)
	assert.Empty(t, res.Records)
	// Initial attempt plus two retries.
	assert.Equal(t, 3, mock.GetRequestCount())
}
