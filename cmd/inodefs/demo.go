package main

import (
	"fmt"
	"io"

	"github.com/dargueta/inodefs"
	"github.com/dargueta/inodefs/blockstore"
	"github.com/dargueta/inodefs/filesystem"
	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

const demoBytesPerBlock = 64
const demoTotalBlocks = 256

// runDemo formats a small in-memory device and walks through the basic
// operations, printing what it sees along the way.
func runDemo(ctx *cli.Context, logger *log.Logger) error {
	store := blockstore.NewMemoryStore(demoBytesPerBlock, demoTotalBlocks)
	fs, err := filesystem.New(
		store,
		filesystem.Options{Logger: logger.WithField("image", "<memory>")},
	)
	if err != nil {
		return err
	}
	return demoSequence(fs, ctx.App.Writer)
}

func demoSequence(fs *filesystem.FileSystem, output io.Writer) error {
	err := fs.Format(10)
	if err != nil {
		return err
	}
	err = fs.CreateFile("/file")
	if err != nil {
		return err
	}
	err = fs.Truncate("/file", 30)
	if err != nil {
		return err
	}

	fd, err := fs.Open("/file")
	if err != nil {
		return err
	}
	err = fs.Write(fd, 10, []byte("hello world!"))
	if err != nil {
		return err
	}
	contents, err := fs.Read(fd, 0, 30)
	if err != nil {
		return err
	}
	fmt.Fprintf(output, "/file: %q\n", contents)
	err = fs.Close(fd)
	if err != nil {
		return err
	}

	err = printListing(fs, output, "/")
	if err != nil {
		return err
	}

	root, err := fs.GetDescriptor(inodefs.RootInumber)
	if err != nil {
		return err
	}
	fmt.Fprintf(
		output, "root: inode=%d size=%d links=%d\n", root.ID, root.Size, root.LinkCount,
	)

	err = fs.Mkdir("/dir1")
	if err != nil {
		return err
	}
	err = fs.Mkdir("/dir1/dir2")
	if err != nil {
		return err
	}

	err = printListing(fs, output, "/")
	if err != nil {
		return err
	}
	return printListing(fs, output, "/dir1")
}

func printListing(fs *filesystem.FileSystem, output io.Writer, path string) error {
	entries, err := fs.ListDirectory(path)
	if err != nil {
		return err
	}
	fmt.Fprintf(output, "%s:\n", path)
	for _, entry := range entries {
		fmt.Fprintf(output, "  %s %d\n", entry.Name, entry.Inumber)
	}
	return nil
}
