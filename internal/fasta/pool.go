package fasta

import (
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// Pool concatenates the named FASTA files into dst, in the order given.
// The copy is byte-level, no parsing. A newline is inserted after inputs
// that do not already end in one, so record boundaries survive.
func Pool(dst string, srcs []string) error {
	out, err := os.Create(dst)
	if err != nil {
		return eris.Wrapf(err, "pool: create %s", dst)
	}

	tw := &tailWriter{w: out, last: '\n'}
	for _, src := range srcs {
		if err := appendFile(tw, src); err != nil {
			_ = out.Close()
			return err
		}
	}

	return eris.Wrapf(out.Close(), "pool: close %s", dst)
}

// tailWriter remembers the last byte written, so Pool knows whether the
// previous input supplied its own trailing newline.
type tailWriter struct {
	w    io.Writer
	last byte
}

func (t *tailWriter) Write(p []byte) (int, error) {
	n, err := t.w.Write(p)
	if n > 0 {
		t.last = p[n-1]
	}
	return n, err
}

// appendFile copies src into tw, inserting a separating newline first when
// the previous content did not end with one.
func appendFile(tw *tailWriter, src string) error {
	in, err := os.Open(src)
	if err != nil {
		return eris.Wrapf(err, "pool: open %s", src)
	}
	defer in.Close()

	if tw.last != '\n' {
		if _, err := tw.Write([]byte("\n")); err != nil {
			return eris.Wrap(err, "pool: write separator")
		}
	}

	if _, err := io.Copy(tw, in); err != nil {
		return eris.Wrapf(err, "pool: copy %s", src)
	}
	return nil
}

// PoolDir concatenates every .fasta file under dir (sorted by name) into
// dst. Returns the list of pooled source files.
func PoolDir(dst, dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, eris.Wrapf(err, "pool: read dir %s", dir)
	}

	var srcs []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".fasta") {
			continue
		}
		srcs = append(srcs, filepath.Join(dir, e.Name()))
	}
	sort.Strings(srcs)

	if len(srcs) == 0 {
		return nil, eris.Errorf("pool: no .fasta files under %s", dir)
	}

	zap.L().Info("pooling fasta files",
		zap.String("dir", dir),
		zap.String("dst", dst),
		zap.Int("files", len(srcs)),
	)

	if err := Pool(dst, srcs); err != nil {
		return nil, err
	}
	return srcs, nil
}
