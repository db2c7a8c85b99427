// Package compression shrinks file system images for storage and transfer.
//
// Images are made of fixed-size blocks, and a freshly formatted image is almost
// entirely null bytes. Run-length encoding the raw image first and then
// gzipping the result gives far better ratios than gzip alone, so snapshots
// use that combination.
//
// The run-length encoding is RLE8, as used by the BMP format: if a byte B occurs
// N >= 2 times in a row, B is written twice followed by an unsigned byte giving
// how many additional times it occurred (0-255). Longer runs are split up.
//
//	WXXXXXXXXXXXXXXXYZZ
//	W XX 13 Y ZZ 0
package compression
