package fetcher

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFTPURL(t *testing.T) {
	cases := []struct {
		name     string
		url      string
		wantHost string
		wantPath string
		wantErr  bool
	}{
		{
			name:     "default port joined",
			url:      "ftp://mirror.example.org/pub/unit.csv.gz",
			wantHost: "mirror.example.org:21",
			wantPath: "/pub/unit.csv.gz",
		},
		{
			name:     "explicit port kept",
			url:      "ftp://mirror.example.org:2121/unit.csv",
			wantHost: "mirror.example.org:2121",
			wantPath: "/unit.csv",
		},
		{
			name:    "non-ftp scheme",
			url:     "https://example.org/unit.csv",
			wantErr: true,
		},
		{
			name:    "empty path",
			url:     "ftp://example.org",
			wantErr: true,
		},
		{
			name:    "unparseable url",
			url:     "ftp://bad\x00host/unit.csv",
			wantErr: true,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			host, path, err := parseFTPURL(tc.url)
			if tc.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.wantHost, host)
			assert.Equal(t, tc.wantPath, path)
		})
	}
}

func TestNewFTPFetcherDefaults(t *testing.T) {
	f := NewFTPFetcher(FTPOptions{})
	assert.Equal(t, 30*time.Second, f.opts.Timeout)
	assert.Equal(t, 3, f.opts.MaxRetries)
	assert.Equal(t, "anonymous", f.opts.User)
	assert.Equal(t, "anonymous@", f.opts.Password)
}

func TestNewFTPFetcherKeepsExplicitCredentials(t *testing.T) {
	f := NewFTPFetcher(FTPOptions{User: "mirror-bot", Password: "s3cret"})
	assert.Equal(t, "mirror-bot", f.opts.User)
	assert.Equal(t, "s3cret", f.opts.Password)
}

type fakeFTPResponse struct {
	closeErr error
	closed   bool
}

func (f *fakeFTPResponse) Read(p []byte) (int, error) { return 0, io.EOF }

func (f *fakeFTPResponse) Close() error {
	f.closed = true
	return f.closeErr
}

type fakeFTPConn struct {
	quitErr error
	quit    bool
}

func (c *fakeFTPConn) Quit() error {
	c.quit = true
	return c.quitErr
}

func TestFTPConnReaderClose(t *testing.T) {
	resp := &fakeFTPResponse{}
	conn := &fakeFTPConn{}
	r := &ftpConnReader{resp: resp, conn: conn}

	require.NoError(t, r.Close())
	assert.True(t, resp.closed)
	assert.True(t, conn.quit)
}

func TestFTPConnReaderCloseResponseError(t *testing.T) {
	resp := &fakeFTPResponse{closeErr: io.ErrClosedPipe}
	conn := &fakeFTPConn{}
	r := &ftpConnReader{resp: resp, conn: conn}

	err := r.Close()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "close response")
	// The control connection is still released.
	assert.True(t, conn.quit)
}

func TestFTPConnReaderCloseQuitError(t *testing.T) {
	resp := &fakeFTPResponse{}
	conn := &fakeFTPConn{quitErr: io.ErrClosedPipe}
	r := &ftpConnReader{resp: resp, conn: conn}

	err := r.Close()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "quit connection")
	assert.True(t, resp.closed)
}

func TestFTPDownloadBadURL(t *testing.T) {
	f := NewFTPFetcher(FTPOptions{})
	_, err := f.Download(context.Background(), "https://example.org/unit.csv")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expected ftp scheme")
}

func TestFetcherForSchemeDispatch(t *testing.T) {
	httpF := testHTTPFetcher()
	ftpF := NewFTPFetcher(FTPOptions{})
	opts := DownloadOptions{HTTP: httpF, FTP: ftpF}

	got, err := fetcherFor("https://example.org/unit.csv", opts)
	require.NoError(t, err)
	assert.Same(t, httpF, got)

	got, err = fetcherFor("http://example.org/unit.csv", opts)
	require.NoError(t, err)
	assert.Same(t, httpF, got)

	got, err = fetcherFor("ftp://mirror.example.org/unit.csv", opts)
	require.NoError(t, err)
	assert.Same(t, ftpF, got)
}
