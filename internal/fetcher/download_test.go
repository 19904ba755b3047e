package fetcher

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastRetry() DownloadOptions {
	return DownloadOptions{
		MaxAttempts:    3,
		InitialBackoff: time.Millisecond,
		MaxBackoff:     5 * time.Millisecond,
		Timeout:        2 * time.Second,
	}
}

func TestDownload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte("a;b;c\n"))
	}))
	defer srv.Close()

	dest, err := Download(context.Background(), srv.URL+"/wykaz_2025.csv", t.TempDir(), fastRetry())
	require.NoError(t, err)
	assert.Equal(t, "wykaz_2025.csv", filepath.Base(dest))

	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, "a;b;c\n", string(data))
}

func TestDownload_RetriesServerErrors(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++
		if calls < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write([]byte("ok"))
	}))
	defer srv.Close()

	_, err := Download(context.Background(), srv.URL+"/doc.csv", t.TempDir(), fastRetry())
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestDownload_NoRetryOnNotFound(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := Download(context.Background(), srv.URL+"/gone.csv", t.TempDir(), fastRetry())
	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestDownload_GivesUpAfterMaxAttempts(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := Download(context.Background(), srv.URL+"/doc.csv", t.TempDir(), fastRetry())
	require.Error(t, err)
	assert.Equal(t, 3, calls)
}
