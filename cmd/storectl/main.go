// storectl operates directly on the dataset and backup directories: it
// lists, restores, and prunes backups, resets the dataset, and mints
// admin tokens.
// It is meant to run on the host that owns the data directory, with the
// server stopped or tolerating the write (the store's backup-before-write
// discipline applies here too).
package main

import (
	"fmt"
	"log"
	"log/slog"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/wingshot-club/wingshot-bot/config"
	"github.com/wingshot-club/wingshot-bot/internal/adminauth"
	"github.com/wingshot-club/wingshot-bot/internal/observability"
	"github.com/wingshot-club/wingshot-bot/internal/store"
)

func main() {
	cliApp := &cli.App{
		Name:  "storectl",
		Usage: "manage the contest dataset and its backups",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "config",
				Value: "config.yaml",
				Usage: "path to the configuration file",
			},
		},
		Commands: []*cli.Command{
			newBackupsCommand(),
			{
				Name:  "reset",
				Usage: "restore the default dataset (current state is backed up first)",
				Action: func(c *cli.Context) error {
					s, err := openStore(c)
					if err != nil {
						return err
					}
					if err := s.Reset(c.Context); err != nil {
						return err
					}
					fmt.Println("dataset reset to defaults")
					return nil
				},
			},
			{
				Name:  "token",
				Usage: "mint an admin bearer token",
				Action: func(c *cli.Context) error {
					cfg, err := loadConfig(c)
					if err != nil {
						return err
					}
					token, err := adminauth.MintToken(cfg.Admin.JWTSecret, cfg.Admin.TokenTTL)
					if err != nil {
						return err
					}
					fmt.Println(token)
					return nil
				},
			},
		},
	}

	if err := cliApp.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func newBackupsCommand() *cli.Command {
	return &cli.Command{
		Name:  "backups",
		Usage: "backup snapshot management",
		Subcommands: []*cli.Command{
			{
				Name:  "list",
				Usage: "list backups, newest first",
				Action: func(c *cli.Context) error {
					s, err := openStore(c)
					if err != nil {
						return err
					}
					backups, err := s.Backups(c.Context)
					if err != nil {
						return err
					}
					if len(backups) == 0 {
						fmt.Println("no backups")
						return nil
					}
					for _, b := range backups {
						fmt.Printf("%s\t%d bytes\t%s\n", b.Name, b.Size, b.CreatedAt.Format("2006-01-02 15:04:05"))
					}
					return nil
				},
			},
			{
				Name:      "restore",
				Usage:     "restore a named backup over the primary dataset",
				ArgsUsage: "NAME",
				Action: func(c *cli.Context) error {
					if c.NArg() != 1 {
						return fmt.Errorf("expected exactly one backup name")
					}
					s, err := openStore(c)
					if err != nil {
						return err
					}
					name := c.Args().First()
					if err := s.RestoreBackup(c.Context, name); err != nil {
						return err
					}
					fmt.Printf("restored %s\n", name)
					return nil
				},
			},
			{
				Name:  "prune",
				Usage: "delete snapshots beyond the configured retention limit",
				Action: func(c *cli.Context) error {
					s, err := openStore(c)
					if err != nil {
						return err
					}
					pruned, err := s.PruneBackups(c.Context)
					if err != nil {
						return err
					}
					fmt.Printf("pruned %d backups\n", pruned)
					return nil
				},
			},
		},
	}
}

func loadConfig(c *cli.Context) (*config.Config, error) {
	return config.LoadConfig(c.String("config"))
}

func openStore(c *cli.Context) (*store.Store, error) {
	cfg, err := loadConfig(c)
	if err != nil {
		return nil, err
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	return store.New(store.Config{
		Path:       cfg.Store.Path,
		BackupDir:  cfg.Store.BackupDir,
		MaxBackups: cfg.Store.MaxBackups,
	}, logger, observability.NewNoop()), nil
}
