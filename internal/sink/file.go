package sink

import (
	"bufio"
	"io"
	"os"
	"strings"

	"github.com/pierrec/lz4/v4"
)

// FileWriter appends record lines to a file, lz4-framed when compress is set.
type FileWriter struct {
	f   *os.File
	lz  *lz4.Writer
	buf *bufio.Writer
}

// OpenFile opens path for appending. Paths ending in ".lz4" are always
// compressed; each open starts a new lz4 frame.
func OpenFile(path string, compress bool) (*FileWriter, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, err
	}
	fw := &FileWriter{f: f}
	var dst io.Writer = f
	if compress || strings.HasSuffix(path, ".lz4") {
		fw.lz = lz4.NewWriter(f)
		dst = fw.lz
	}
	fw.buf = bufio.NewWriterSize(dst, 64<<10)
	return fw, nil
}

func (fw *FileWriter) WriteLine(line string) error {
	if _, err := fw.buf.WriteString(line); err != nil {
		return err
	}
	return fw.buf.WriteByte('\n')
}

func (fw *FileWriter) Close() error {
	err := fw.buf.Flush()
	if fw.lz != nil {
		if cerr := fw.lz.Close(); err == nil {
			err = cerr
		}
	}
	if cerr := fw.f.Close(); err == nil {
		err = cerr
	}
	return err
}
