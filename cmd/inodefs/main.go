package main

import (
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

func main() {
	logger := log.New()
	logger.SetOutput(os.Stderr)
	logger.SetFormatter(&log.TextFormatter{DisableTimestamp: true})

	app := newApp(logger)
	err := app.Run(os.Args)
	if err != nil {
		logger.Fatalf("fatal error: %s", err.Error())
	}
}

func newApp(logger *log.Logger) *cli.App {
	return &cli.App{
		Name:  "inodefs",
		Usage: "Manage inode file system images",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "image",
				Aliases: []string{"i"},
				Usage:   "path to the image file",
				EnvVars: []string{"INODEFS_IMAGE"},
			},
			&cli.UintFlag{
				Name:  "block-size",
				Usage: "bytes per block",
				Value: 512,
			},
			&cli.UintFlag{
				Name:  "blocks",
				Usage: "total blocks in the image; 0 infers it from an existing file",
			},
			&cli.StringFlag{
				Name:  "geometry",
				Usage: "use a predefined geometry instead of --block-size and --blocks",
			},
			&cli.IntFlag{
				Name:  "max-symlink-depth",
				Usage: "fail lookups after following this many symlinks",
			},
			&cli.BoolFlag{
				Name:    "verbose",
				Aliases: []string{"v"},
				Usage:   "log debug output",
			},
		},
		Before: func(ctx *cli.Context) error {
			if ctx.Bool("verbose") {
				logger.SetLevel(log.DebugLevel)
			}
			return nil
		},
		Commands: []*cli.Command{
			{
				Name:   "geometries",
				Usage:  "List predefined geometries",
				Action: listGeometries,
			},
			{
				Name:  "format",
				Usage: "Create or wipe an image",
				Flags: []cli.Flag{
					&cli.UintFlag{
						Name:  "descriptors",
						Usage: "maximum number of files, directories and symlinks",
						Value: 64,
					},
				},
				Action: withLogger(logger, formatImage),
			},
			{
				Name:      "ls",
				Usage:     "List a directory",
				ArgsUsage: "[PATH]",
				Action:    withLogger(logger, listDirectory),
			},
			{
				Name:      "stat",
				Usage:     "Show an inode",
				ArgsUsage: "PATH",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "no-follow", Usage: "don't follow a final symlink"},
				},
				Action: withLogger(logger, statPath),
			},
			{
				Name:   "df",
				Usage:  "Show free space",
				Action: withLogger(logger, showFreeSpace),
			},
			{
				Name:      "mkdir",
				Usage:     "Create directories",
				ArgsUsage: "PATH...",
				Action:    withLogger(logger, makeDirectories),
			},
			{
				Name:      "rmdir",
				Usage:     "Remove empty directories",
				ArgsUsage: "PATH...",
				Action:    withLogger(logger, removeDirectories),
			},
			{
				Name:      "touch",
				Usage:     "Create empty files",
				ArgsUsage: "PATH...",
				Action:    withLogger(logger, createFiles),
			},
			{
				Name:      "rm",
				Usage:     "Remove files and symlinks",
				ArgsUsage: "PATH...",
				Action:    withLogger(logger, removeFiles),
			},
			{
				Name:      "ln",
				Usage:     "Create a hard link",
				ArgsUsage: "EXISTING NEW",
				Action:    withLogger(logger, hardLink),
			},
			{
				Name:      "symlink",
				Usage:     "Create a symbolic link",
				ArgsUsage: "TARGET LINK",
				Action:    withLogger(logger, symbolicLink),
			},
			{
				Name:      "write",
				Usage:     "Replace a file's contents with standard input",
				ArgsUsage: "PATH",
				Action:    withLogger(logger, writeFile),
			},
			{
				Name:      "cat",
				Usage:     "Print a file's contents",
				ArgsUsage: "PATH",
				Action:    withLogger(logger, catFile),
			},
			{
				Name:      "export",
				Usage:     "Write a compressed snapshot of the image",
				ArgsUsage: "OUTPUT_FILE",
				Action:    withLogger(logger, exportImage),
			},
			{
				Name:      "import",
				Usage:     "Overwrite the image with a compressed snapshot",
				ArgsUsage: "INPUT_FILE",
				Action:    withLogger(logger, importImage),
			},
			{
				Name:   "demo",
				Usage:  "Run a short walkthrough against an in-memory image",
				Action: withLogger(logger, runDemo),
			},
		},
	}
}

type actionWithLogger func(ctx *cli.Context, logger *log.Logger) error

func withLogger(logger *log.Logger, action actionWithLogger) cli.ActionFunc {
	return func(ctx *cli.Context) error {
		return action(ctx, logger)
	}
}
