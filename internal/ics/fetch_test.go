package ics

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const tinyFeed = "BEGIN:VCALENDAR\nEND:VCALENDAR\n"

func TestFetchOneCachesWithETag(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		if r.Header.Get("If-None-Match") == `"v1"` {
			w.WriteHeader(http.StatusNotModified)
			return
		}
		w.Header().Set("ETag", `"v1"`)
		_, _ = w.Write([]byte(tinyFeed))
	}))
	defer srv.Close()

	f := NewFetcherWithClient(t.TempDir(), srv.Client())
	src := Source{ID: "council", URL: srv.URL + "/cal.ics"}

	res, err := f.FetchOne(context.Background(), src)
	require.NoError(t, err)
	assert.False(t, res.FromCache)
	assert.Equal(t, tinyFeed, string(res.Body))

	res, err = f.FetchOne(context.Background(), src)
	require.NoError(t, err)
	assert.True(t, res.FromCache)
	assert.Equal(t, tinyFeed, string(res.Body))
	assert.EqualValues(t, 2, atomic.LoadInt32(&hits))
}

func TestFetchOneFallsBackToCache(t *testing.T) {
	fail := int32(0)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.LoadInt32(&fail) == 1 {
			http.Error(w, "maintenance", http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(tinyFeed))
	}))
	defer srv.Close()

	f := NewFetcherWithClient(t.TempDir(), srv.Client())
	src := Source{ID: "council", URL: srv.URL}

	_, err := f.FetchOne(context.Background(), src)
	require.NoError(t, err)

	atomic.StoreInt32(&fail, 1)
	res, err := f.FetchOne(context.Background(), src)
	require.NoError(t, err)
	assert.True(t, res.FromCache)

	srv.Close()
	res, err = f.FetchOne(context.Background(), src)
	require.NoError(t, err)
	assert.True(t, res.FromCache)
}

func TestFetchOneErrorsWithoutCache(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	f := NewFetcherWithClient(t.TempDir(), srv.Client())
	_, err := f.FetchOne(context.Background(), Source{ID: "x", URL: srv.URL})
	require.Error(t, err)

	_, err = f.FetchOne(context.Background(), Source{ID: "empty"})
	require.Error(t, err)
}

func TestFetchAllCollectsErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(tinyFeed))
	}))
	defer srv.Close()

	f := NewFetcherWithClient(t.TempDir(), srv.Client())
	results, errs := f.FetchAll(context.Background(), []Source{
		{ID: "ok", URL: srv.URL + "/ok"},
		{ID: "missing", URL: srv.URL + "/missing"},
	})
	require.Len(t, results, 1)
	assert.Equal(t, "ok", results[0].Source.ID)
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].Error(), "missing")
}

func TestRedactURL(t *testing.T) {
	assert.Equal(t, "https://example.com/...(redacted)", redactURL("https://example.com/cal/200004185983?token=x"))
	assert.Equal(t, "ics://...(redacted)", redactURL("not a url"))
}
