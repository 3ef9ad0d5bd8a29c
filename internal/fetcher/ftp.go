package fetcher

import (
	"context"
	"io"
	"net"
	"net/url"
	"os"
	"path"
	"time"

	"github.com/jlaffaye/ftp"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// FTPOptions configures downloads from OAS FTP mirrors.
type FTPOptions struct {
	Timeout    time.Duration
	MaxRetries int

	// User and Password default to anonymous access, which the public
	// mirrors serving OAS bulk data expect.
	User     string
	Password string
}

// FTPFetcher downloads data units from FTP mirrors. Each download opens a
// fresh control connection; closing the returned reader releases it.
type FTPFetcher struct {
	opts FTPOptions
}

// NewFTPFetcher creates a new FTPFetcher with the given options.
func NewFTPFetcher(opts FTPOptions) *FTPFetcher {
	if opts.Timeout == 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.MaxRetries == 0 {
		opts.MaxRetries = 3
	}
	if opts.User == "" {
		opts.User = "anonymous"
		opts.Password = "anonymous@"
	}
	return &FTPFetcher{opts: opts}
}

// parseFTPURL extracts host (with port) and remote path from an FTP URL.
func parseFTPURL(rawURL string) (host string, remotePath string, err error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", "", eris.Wrap(err, "ftp: parse url")
	}
	if u.Scheme != "ftp" {
		return "", "", eris.Errorf("ftp: expected ftp scheme, got %q", u.Scheme)
	}

	host = u.Host
	if _, _, splitErr := net.SplitHostPort(host); splitErr != nil {
		host = net.JoinHostPort(host, "21")
	}

	remotePath = u.Path
	if remotePath == "" {
		return "", "", eris.New("ftp: empty path in url")
	}

	return host, remotePath, nil
}

// ftpQuitter is the subset of *ftp.ServerConn the reader needs to release
// the control connection.
type ftpQuitter interface {
	Quit() error
}

// ftpConnReader ties a data transfer to its control connection so that
// closing the reader also quits the server session.
type ftpConnReader struct {
	resp io.ReadCloser
	conn ftpQuitter
}

func (r *ftpConnReader) Read(p []byte) (int, error) {
	return r.resp.Read(p)
}

func (r *ftpConnReader) Close() error {
	respErr := r.resp.Close()
	quitErr := r.conn.Quit()
	if respErr != nil {
		return eris.Wrap(respErr, "ftp: close response")
	}
	if quitErr != nil {
		return eris.Wrap(quitErr, "ftp: quit connection")
	}
	return nil
}

// Download retrieves a data unit from an FTP mirror, retrying transient
// dial, login, and transfer failures with the same backoff schedule the
// HTTP fetcher uses. The caller must close the returned ReadCloser to
// release the server connection.
func (f *FTPFetcher) Download(ctx context.Context, ftpURL string) (io.ReadCloser, error) {
	host, remotePath, err := parseFTPURL(ftpURL)
	if err != nil {
		return nil, err
	}

	log := zap.L().With(
		zap.String("unit", path.Base(remotePath)),
		zap.String("host", host),
	)

	var lastErr error
	for attempt := 0; attempt < f.opts.MaxRetries; attempt++ {
		rc, err := f.retrieve(ctx, host, remotePath)
		if err == nil {
			return rc, nil
		}

		lastErr = err
		log.Warn("ftp retrieve failed, retrying",
			zap.Int("attempt", attempt+1),
			zap.Error(err),
		)
		backoffWait(ctx, attempt)
		if ctx.Err() != nil {
			return nil, eris.Wrap(ctx.Err(), "ftp: download cancelled")
		}
	}

	return nil, eris.Wrap(lastErr, "ftp: all retries exhausted")
}

// retrieve opens one control connection, logs in, and starts the transfer.
func (f *FTPFetcher) retrieve(ctx context.Context, host, remotePath string) (io.ReadCloser, error) {
	conn, err := ftp.Dial(host, ftp.DialWithTimeout(f.opts.Timeout), ftp.DialWithContext(ctx))
	if err != nil {
		return nil, eris.Wrap(err, "ftp: dial")
	}

	if err := conn.Login(f.opts.User, f.opts.Password); err != nil {
		_ = conn.Quit()
		return nil, eris.Wrap(err, "ftp: login")
	}

	resp, err := conn.Retr(remotePath)
	if err != nil {
		_ = conn.Quit()
		return nil, eris.Wrapf(err, "ftp: retrieve %s", remotePath)
	}

	return &ftpConnReader{resp: resp, conn: conn}, nil
}

// DownloadToFile retrieves an FTP URL into a local file. Returns bytes written.
func (f *FTPFetcher) DownloadToFile(ctx context.Context, ftpURL string, dest string) (int64, error) {
	rc, err := f.Download(ctx, ftpURL)
	if err != nil {
		return 0, err
	}
	defer rc.Close() //nolint:errcheck

	file, err := os.Create(dest)
	if err != nil {
		return 0, eris.Wrap(err, "ftp: create file")
	}
	defer file.Close() //nolint:errcheck

	n, err := io.Copy(file, rc)
	if err != nil {
		return n, eris.Wrap(err, "ftp: write file")
	}

	return n, nil
}
