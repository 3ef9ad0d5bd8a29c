package fetcher

import (
	"compress/gzip"
	"io"
	"os"
	"strings"

	"github.com/rotisserie/eris"
)

// Decompress unpacks a .csv.gz data unit to destPath and removes the
// archive. Returns the number of bytes written.
func Decompress(gzPath, destPath string) (int64, error) {
	in, err := os.Open(gzPath)
	if err != nil {
		return 0, eris.Wrapf(err, "gzip: open %s", gzPath)
	}
	defer in.Close()

	gz, err := gzip.NewReader(in)
	if err != nil {
		return 0, eris.Wrapf(err, "gzip: read header of %s", gzPath)
	}
	defer gz.Close()

	out, err := os.Create(destPath)
	if err != nil {
		return 0, eris.Wrapf(err, "gzip: create %s", destPath)
	}

	n, err := io.Copy(out, gz)
	if err != nil {
		_ = out.Close()
		return n, eris.Wrapf(err, "gzip: decompress %s", gzPath)
	}
	if err := out.Close(); err != nil {
		return n, eris.Wrapf(err, "gzip: close %s", destPath)
	}

	_ = os.Remove(gzPath)
	return n, nil
}

// StripGzExt removes a trailing .gz from a file name, if present.
func StripGzExt(name string) string {
	return strings.TrimSuffix(name, ".gz")
}
