package fetcher

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/unicode"
)

func TestLookup(t *testing.T) {
	ind, err := Lookup("Fed-Funds")
	require.NoError(t, err)
	assert.Equal(t, "rate", ind.Field)
	assert.Equal(t, "/api/fred-fedfunds", ind.Endpoint)

	_, err = Lookup("bitcoin")
	assert.True(t, errors.Is(err, ErrUnknownIndicator))

	keys := Keys()
	assert.Len(t, keys, 7)
	assert.Equal(t, "fed-funds", keys[0])
}

func TestProxyFetcherFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/fred-gdp" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[
			{"date":"01/24","gdp":27.9},
			{"date":"04/24","gdp":"28.3"},
			{"date":"07/24","gdp":null},
			{"gdp":29.0},
			{"date":"10/24","gdp":"."},
			{"date":"01/25","growth":1}
		]`))
	}))
	defer srv.Close()

	ind, err := Lookup("gdp")
	require.NoError(t, err)

	rows, err := NewProxyFetcher(srv.URL+"/", 0).Fetch(context.Background(), ind)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "01/24", rows[0].Date)
	assert.InDelta(t, 27.9, rows[0].Value, 1e-9)
	assert.InDelta(t, 28.3, rows[1].Value, 1e-9)
}

func TestProxyFetcherHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"FRED API key missing"}`))
	}))
	defer srv.Close()

	ind, err := Lookup("inflation")
	require.NoError(t, err)

	_, err = NewProxyFetcher(srv.URL, 0).Fetch(context.Background(), ind)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "http 500")
	assert.Contains(t, err.Error(), "FRED API key missing")
}

func TestProxyFetcherBadJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"not":"an array"}`))
	}))
	defer srv.Close()

	ind, _ := Lookup("unemployment")
	_, err := NewProxyFetcher(srv.URL, 0).Fetch(context.Background(), ind)
	assert.Error(t, err)
}

func TestProxyFetcherDecodesCharset(t *testing.T) {
	enc := unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM).NewEncoder()
	body, err := enc.String(`[{"date":"2024-01-01","ip":"102.5"}]`)
	require.NoError(t, err)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-16le")
		_, _ = w.Write([]byte(body))
	}))
	defer srv.Close()

	ind, err := Lookup("industrial-production")
	require.NoError(t, err)
	rows, err := NewProxyFetcher(srv.URL, 0).Fetch(context.Background(), ind)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, 102.5, rows[0].Value)
}
