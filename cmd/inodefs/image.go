package main

import (
	"fmt"

	"github.com/dargueta/inodefs/blockstore"
	"github.com/dargueta/inodefs/disks"
	"github.com/dargueta/inodefs/filesystem"
	"github.com/hashicorp/go-multierror"
	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

// session is an open image with a file system driver on top of it. All changes
// are buffered in memory until the session is closed.
type session struct {
	file  *blockstore.FileStore
	cache *blockstore.Cache
	fs    *filesystem.FileSystem
}

// geometryFromFlags determines the block size and count from --geometry, or
// from --block-size and --blocks if no preset was given.
func geometryFromFlags(ctx *cli.Context) (uint, uint, error) {
	slug := ctx.String("geometry")
	if slug == "" {
		return ctx.Uint("block-size"), ctx.Uint("blocks"), nil
	}

	geometry, err := disks.GetPredefinedGeometry(slug)
	if err != nil {
		return 0, 0, err
	}
	return geometry.BytesPerBlock, geometry.TotalBlocks, nil
}

func openSession(ctx *cli.Context, logger *log.Logger) (*session, error) {
	path := ctx.String("image")
	if path == "" {
		return nil, cli.Exit("--image is required for this command", 1)
	}

	bytesPerBlock, totalBlocks, err := geometryFromFlags(ctx)
	if err != nil {
		return nil, err
	}

	file, err := blockstore.OpenFileStore(path, bytesPerBlock, totalBlocks)
	if err != nil {
		return nil, err
	}

	cache := blockstore.NewCache(file)
	fs, err := filesystem.New(
		cache,
		filesystem.Options{
			MaxSymlinkDepth: ctx.Int("max-symlink-depth"),
			Logger:          logger.WithField("image", path),
		},
	)
	if err != nil {
		closeErr := file.Close()
		if closeErr != nil {
			return nil, multierror.Append(err, closeErr)
		}
		return nil, err
	}

	logger.WithFields(log.Fields{
		"image":        path,
		"block_size":   file.BytesPerBlock(),
		"total_blocks": file.TotalBlocks(),
	}).Debug("opened image")
	return &session{file: file, cache: cache, fs: fs}, nil
}

// Close writes all changes to the image file and closes it.
func (s *session) Close() error {
	var result error
	if err := s.cache.Flush(); err != nil {
		result = multierror.Append(result, err)
	}
	if err := s.file.Close(); err != nil {
		result = multierror.Append(result, err)
	}
	return result
}

// withSession runs `action` on an open session and closes it afterwards. The
// image is only written if the session closes successfully.
func withSession(
	ctx *cli.Context,
	logger *log.Logger,
	action func(fs *filesystem.FileSystem) error,
) (err error) {
	s, err := openSession(ctx, logger)
	if err != nil {
		return err
	}
	defer func() {
		closeErr := s.Close()
		if closeErr != nil {
			err = multierror.Append(err, closeErr)
		}
	}()
	return action(s.fs)
}

func requireArgs(ctx *cli.Context, count int) error {
	if ctx.Args().Len() != count {
		return cli.Exit(
			fmt.Sprintf(
				"%s takes %d argument(s), got %d", ctx.Command.Name, count, ctx.Args().Len(),
			),
			1,
		)
	}
	return nil
}

func requireAtLeastOneArg(ctx *cli.Context) error {
	if ctx.Args().Len() == 0 {
		return cli.Exit(fmt.Sprintf("%s needs at least one path", ctx.Command.Name), 1)
	}
	return nil
}
