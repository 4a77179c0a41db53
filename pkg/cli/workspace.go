package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gots/slice"
	"github.com/secmon-lab/repovault/pkg/cli/config"
	"github.com/secmon-lab/repovault/pkg/domain/model"
	"github.com/secmon-lab/repovault/pkg/domain/types"
	"github.com/secmon-lab/repovault/pkg/infra"
	"github.com/secmon-lab/repovault/pkg/usecase"
	"github.com/secmon-lab/repovault/pkg/utils/safe"
	"github.com/urfave/cli/v3"
)

func dirFlag(dir *string) cli.Flag {
	return &cli.StringFlag{
		Name:        "dir",
		Aliases:     []string{"d"},
		Usage:       "Working directory of the workspace",
		Value:       ".",
		Sources:     cli.EnvVars("REPOVAULT_WORKDIR"),
		Destination: dir,
	}
}

// requireArg returns the first positional argument.
func requireArg(c *cli.Command, name string) (string, error) {
	arg := c.Args().First()
	if arg == "" {
		return "", goerr.Wrap(types.ErrInvalidOption, name+" is required",
			goerr.V("command", c.Name))
	}
	return arg, nil
}

// localUseCase runs fn with clients that need no remote service.
func localUseCase(fn func(uc *usecase.UseCase) error) error {
	clients := infra.New()
	defer safe.Close(clients)
	return fn(usecase.New(clients))
}

// remoteUseCase runs fn with the configured blob store.
func remoteUseCase(ctx context.Context, storage *config.Storage, fn func(uc *usecase.UseCase) error) error {
	if !storage.Enabled() {
		return goerr.Wrap(types.ErrInvalidOption, "storage bucket is required for remote operation")
	}
	blobStore, err := storage.NewBlobStore(ctx)
	if err != nil {
		return err
	}

	clients := infra.New(infra.WithBlobStore(blobStore))
	defer safe.Close(clients)
	return fn(usecase.New(clients))
}

func printCommit(w io.Writer, commit *model.Commit) {
	fmt.Fprintf(w, "%s  %s  %s (%d files)\n",
		commit.ID, commit.CreatedAt.Local().Format("2006-01-02 15:04:05"), commit.Message, len(commit.Files))
}

func initCommand() *cli.Command {
	var dir string
	return &cli.Command{
		Name:  "init",
		Usage: "Initialize workspace in the directory",
		Flags: []cli.Flag{dirFlag(&dir)},
		Action: func(ctx context.Context, c *cli.Command) error {
			return localUseCase(func(uc *usecase.UseCase) error {
				return uc.InitWorkspace(ctx, dir)
			})
		},
	}
}

func addCommand() *cli.Command {
	var dir string
	return &cli.Command{
		Name:      "add",
		Usage:     "Stage a file. A relative path is resolved from the workspace directory",
		ArgsUsage: "<file>",
		Flags:     []cli.Flag{dirFlag(&dir)},
		Action: func(ctx context.Context, c *cli.Command) error {
			file, err := requireArg(c, "file")
			if err != nil {
				return err
			}
			return localUseCase(func(uc *usecase.UseCase) error {
				rel, err := uc.StageFile(ctx, dir, file)
				if err != nil {
					return err
				}
				fmt.Fprintf(c.Root().Writer, "staged %s\n", rel)
				return nil
			})
		},
	}
}

func commitCommand() *cli.Command {
	var dir string
	return &cli.Command{
		Name:      "commit",
		Usage:     "Record staged files as a new commit",
		ArgsUsage: "<message>",
		Flags:     []cli.Flag{dirFlag(&dir)},
		Action: func(ctx context.Context, c *cli.Command) error {
			message, err := requireArg(c, "message")
			if err != nil {
				return err
			}
			return localUseCase(func(uc *usecase.UseCase) error {
				commit, err := uc.CommitWorkspace(ctx, dir, message)
				if err != nil {
					return err
				}
				printCommit(c.Root().Writer, commit)
				return nil
			})
		},
	}
}

func pushCommand() *cli.Command {
	var (
		dir     string
		storage config.Storage
	)
	return &cli.Command{
		Name:  "push",
		Usage: "Upload local commits to the storage bucket",
		Flags: slice.Flatten([]cli.Flag{dirFlag(&dir)}, storage.Flags()),
		Action: func(ctx context.Context, c *cli.Command) error {
			return remoteUseCase(ctx, &storage, func(uc *usecase.UseCase) error {
				commits, err := uc.PushWorkspace(ctx, dir)
				if err != nil {
					return err
				}
				fmt.Fprintf(c.Root().Writer, "pushed %d commits\n", len(commits))
				return nil
			})
		},
	}
}

func pullCommand() *cli.Command {
	var (
		dir     string
		storage config.Storage
	)
	return &cli.Command{
		Name:  "pull",
		Usage: "Download commits from the storage bucket",
		Flags: slice.Flatten([]cli.Flag{dirFlag(&dir)}, storage.Flags()),
		Action: func(ctx context.Context, c *cli.Command) error {
			return remoteUseCase(ctx, &storage, func(uc *usecase.UseCase) error {
				commits, err := uc.PullWorkspace(ctx, dir)
				if err != nil {
					return err
				}
				for _, commit := range commits {
					printCommit(c.Root().Writer, commit)
				}
				fmt.Fprintf(c.Root().Writer, "pulled %d commits\n", len(commits))
				return nil
			})
		},
	}
}

func revertCommand() *cli.Command {
	var dir string
	return &cli.Command{
		Name:      "revert",
		Usage:     "Overwrite working files with the files of a commit",
		ArgsUsage: "<commitID>",
		Flags:     []cli.Flag{dirFlag(&dir)},
		Action: func(ctx context.Context, c *cli.Command) error {
			id, err := requireArg(c, "commit ID")
			if err != nil {
				return err
			}
			return localUseCase(func(uc *usecase.UseCase) error {
				commit, err := uc.RevertWorkspace(ctx, dir, types.CommitID(id))
				if err != nil {
					return err
				}
				fmt.Fprintf(c.Root().Writer, "reverted to %s\n", commit.ID)
				return nil
			})
		},
	}
}

func logCommand() *cli.Command {
	var dir string
	return &cli.Command{
		Name:  "log",
		Usage: "List local commits, oldest first",
		Flags: []cli.Flag{dirFlag(&dir)},
		Action: func(ctx context.Context, c *cli.Command) error {
			return localUseCase(func(uc *usecase.UseCase) error {
				commits, err := uc.ListCommits(ctx, dir)
				if err != nil {
					return err
				}
				for _, commit := range commits {
					printCommit(c.Root().Writer, commit)
				}
				return nil
			})
		},
	}
}
