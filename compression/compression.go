package compression

import (
	"bytes"
	"compress/gzip"
	"io"
)

// CompressImage writes `image` to `output` using RLE8 and gzip. It returns the
// number of compressed bytes written.
func CompressImage(image []byte, output io.Writer) (int64, error) {
	counter := &countingWriter{w: output}

	// The images aren't that huge so there's no noticeable speed difference
	// between the default and highest levels.
	gzWriter, err := gzip.NewWriterLevel(counter, gzip.BestCompression)
	if err != nil {
		return 0, err
	}

	_, err = gzWriter.Write(EncodeRLE8(image))
	if err != nil {
		gzWriter.Close()
		return counter.n, err
	}

	err = gzWriter.Close()
	return counter.n, err
}

// DecompressImage reads a gzipped RLE8 stream written by [CompressImage] and
// returns the raw image.
func DecompressImage(input io.Reader) ([]byte, error) {
	gzReader, err := gzip.NewReader(input)
	if err != nil {
		return nil, err
	}
	defer gzReader.Close()

	var encoded bytes.Buffer
	_, err = encoded.ReadFrom(gzReader)
	if err != nil {
		return nil, err
	}
	return DecodeRLE8(encoded.Bytes())
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (cw *countingWriter) Write(p []byte) (int, error) {
	n, err := cw.w.Write(p)
	cw.n += int64(n)
	return n, err
}
