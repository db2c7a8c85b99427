package main

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dargueta/inodefs/compression"
	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"
)

// runCommand runs the CLI with `args` and returns whatever it wrote to stdout.
func runCommand(t *testing.T, stdin string, args ...string) (string, error) {
	logger := log.New()
	logger.SetOutput(io.Discard)

	output := &bytes.Buffer{}
	app := newApp(logger)
	app.Writer = output
	app.Reader = strings.NewReader(stdin)
	app.ExitErrHandler = func(*cli.Context, error) {}

	err := app.Run(append([]string{"inodefs"}, args...))
	return output.String(), err
}

func TestDemo(t *testing.T) {
	output, err := runCommand(t, "", "demo")
	require.NoError(t, err)

	expectedContents := strings.Repeat("\\x00", 10) + "hello world!" + strings.Repeat("\\x00", 8)
	assert.Contains(t, output, "/file: \""+expectedContents+"\"")
	assert.Contains(t, output, "root: inode=0 size=96 links=2")
	assert.Contains(t, output, "/dir1:\n  . 2\n  .. 0\n  dir2 3\n")
}

func TestGeometries(t *testing.T) {
	output, err := runCommand(t, "", "geometries")
	require.NoError(t, err)
	assert.Contains(t, output, "floppy-1440k")
}

func TestImageRoundTrip(t *testing.T) {
	image := filepath.Join(t.TempDir(), "test.img")

	_, err := runCommand(
		t, "", "--image", image, "--block-size", "64", "--blocks", "256",
		"format", "--descriptors", "16",
	)
	require.NoError(t, err)

	// From here on the block count is inferred from the size of the file.
	_, err = runCommand(t, "", "--image", image, "--block-size", "64", "mkdir", "/a", "/a/b")
	require.NoError(t, err)

	_, err = runCommand(
		t, "some file contents", "--image", image, "--block-size", "64", "write", "/a/f",
	)
	require.NoError(t, err)

	output, err := runCommand(t, "", "--image", image, "--block-size", "64", "cat", "/a/f")
	require.NoError(t, err)
	assert.Equal(t, "some file contents", output)

	_, err = runCommand(t, "new", "--image", image, "--block-size", "64", "write", "/a/f")
	require.NoError(t, err)
	output, err = runCommand(t, "", "--image", image, "--block-size", "64", "cat", "/a/f")
	require.NoError(t, err)
	assert.Equal(t, "new", output, "old contents weren't truncated")

	output, err = runCommand(t, "", "--image", image, "--block-size", "64", "ls", "/a")
	require.NoError(t, err)
	assert.Contains(t, output, " b\n")
	assert.Contains(t, output, " f\n")
}

func TestExportImport(t *testing.T) {
	directory := t.TempDir()
	image := filepath.Join(directory, "test.img")
	snapshot := filepath.Join(directory, "test.img.gz")

	_, err := runCommand(t, "", "--image", image, "--geometry", "tiny", "format")
	require.NoError(t, err)
	_, err = runCommand(t, "", "--image", image, "--geometry", "tiny", "mkdir", "/saved")
	require.NoError(t, err)
	_, err = runCommand(t, "", "--image", image, "--geometry", "tiny", "export", snapshot)
	require.NoError(t, err)

	_, err = runCommand(t, "", "--image", image, "--geometry", "tiny", "rmdir", "/saved")
	require.NoError(t, err)
	_, err = runCommand(t, "", "--image", image, "--geometry", "tiny", "import", snapshot)
	require.NoError(t, err)

	output, err := runCommand(t, "", "--image", image, "--geometry", "tiny", "stat", "/saved")
	require.NoError(t, err)
	assert.Contains(t, output, "Type:  directory")
}

func TestMissingImage(t *testing.T) {
	_, err := runCommand(t, "", "ls")
	assert.Error(t, err)
}

func TestExport__SnapshotIsComplete(t *testing.T) {
	directory := t.TempDir()
	image := filepath.Join(directory, "test.img")
	snapshot := filepath.Join(directory, "test.img.gz")

	_, err := runCommand(t, "", "--image", image, "--geometry", "tiny", "format")
	require.NoError(t, err)
	_, err = runCommand(t, "", "--image", image, "--geometry", "tiny", "export", snapshot)
	require.NoError(t, err)

	input, err := os.Open(snapshot)
	require.NoError(t, err)
	defer input.Close()

	raw, err := compression.DecompressImage(input)
	require.NoError(t, err, "snapshot is truncated")
	assert.Len(t, raw, 64*256)
}

func TestExport__BadOutputPath(t *testing.T) {
	directory := t.TempDir()
	image := filepath.Join(directory, "test.img")

	_, err := runCommand(t, "", "--image", image, "--geometry", "tiny", "format")
	require.NoError(t, err)
	_, err = runCommand(
		t, "", "--image", image, "--geometry", "tiny",
		"export", filepath.Join(directory, "missing", "out.gz"),
	)
	assert.Error(t, err)
}
