package apiclient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiebiao/libadmin/internal/domain/author"
	"github.com/xiebiao/libadmin/internal/domain/listquery"
	apperrors "github.com/xiebiao/libadmin/pkg/errors"
)

func TestClient_ListAuthors(t *testing.T) {
	t.Run("bare array", func(t *testing.T) {
		var q url.Values
		c, _ := newClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/api/Authors", r.URL.Path)
			q = r.URL.Query()
			writeJSON(w, http.StatusOK, []map[string]any{
				{"id": 1, "firstName": "Frank", "lastName": "Herbert"},
				{"id": 2, "firstName": "Frances", "lastName": "Burney"},
			})
		})

		page, err := c.ListAuthors(context.Background(), listquery.Request{
			Search: "fra", SortBy: author.SortLastName, SortDesc: true, Page: 3, PageSize: 2,
			Filters: map[string]string{author.FilterLastName: "b"},
		})
		require.NoError(t, err)
		require.Len(t, page.Items, 2)
		assert.Equal(t, "Herbert", page.Items[0].LastName)
		assert.Equal(t, 7, page.TotalCount)
		assert.Equal(t, url.Values{
			"FirstName": {"fra"}, "LastName": {"b"}, "SortBy": {"LastName"},
			"SortDesc": {"true"}, "Page": {"3"}, "PageSize": {"2"},
		}, q)
	})

	t.Run("short last page", func(t *testing.T) {
		c, _ := newClient(t, func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, []map[string]any{{"id": 5, "firstName": "Ann", "lastName": "Leckie"}})
		})

		page, err := c.ListAuthors(context.Background(), listquery.Request{Page: 2, PageSize: 10})
		require.NoError(t, err)
		assert.Equal(t, 11, page.TotalCount)
	})

	t.Run("items page", func(t *testing.T) {
		var q url.Values
		c, _ := newClient(t, func(w http.ResponseWriter, r *http.Request) {
			q = r.URL.Query()
			writeJSON(w, http.StatusOK, map[string]any{"items": []any{}, "totalCount": 40})
		})

		page, err := c.ListAuthors(context.Background(), listquery.Request{
			Search: "ignored", Page: 1, PageSize: 10,
			Filters: map[string]string{author.FilterFirstName: "Jane"},
		})
		require.NoError(t, err)
		assert.NotNil(t, page.Items)
		assert.Equal(t, 40, page.TotalCount)
		assert.Equal(t, "Jane", q.Get("FirstName"))
		assert.False(t, q.Has("LastName"))
	})

	t.Run("unreadable", func(t *testing.T) {
		c, _ := newClient(t, func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, "authors")
		})

		_, err := c.ListAuthors(context.Background(), listquery.Request{Page: 1, PageSize: 10})
		assert.Equal(t, apperrors.ErrCodeUpstream, apperrors.CodeOf(err))
	})
}

func TestClient_AuthorWrites(t *testing.T) {
	var bodies []authorBody
	c, _ := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		var in authorBody
		if r.Body != nil && r.Method != http.MethodDelete {
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&in))
			bodies = append(bodies, in)
		}
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/api/Authors":
			if in.LastName == "Austen" {
				w.WriteHeader(http.StatusConflict)
				return
			}
			writeJSON(w, http.StatusCreated, map[string]any{"id": 12})
		case r.Method == http.MethodPut && r.URL.Path == "/api/Authors/12":
			w.WriteHeader(http.StatusNoContent)
		case r.Method == http.MethodDelete && r.URL.Path == "/api/Authors/12":
			w.WriteHeader(http.StatusNoContent)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})
	ctx := context.Background()

	created, err := c.CreateAuthor(ctx, author.Input{FirstName: "Frank", LastName: "Herbert", BookID: 3})
	require.NoError(t, err)
	assert.Equal(t, author.Author{ID: 12, FirstName: "Frank", LastName: "Herbert"}, created)

	_, err = c.CreateAuthor(ctx, author.Input{FirstName: "Jane", LastName: "Austen"})
	assert.True(t, apperrors.IsConflict(err))

	updated, err := c.UpdateAuthor(ctx, 12, author.Input{FirstName: "Frank", LastName: "Herbert Jr."})
	require.NoError(t, err)
	assert.Equal(t, "Herbert Jr.", updated.LastName)

	require.NoError(t, c.DeleteAuthor(ctx, 12))
	assert.True(t, apperrors.IsNotFound(c.DeleteAuthor(ctx, 13)))

	require.Len(t, bodies, 3)
	assert.Equal(t, authorBody{FirstName: "Frank", LastName: "Herbert"}, bodies[0])
}
