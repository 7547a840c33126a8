package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/urfave/cli/v2"

	"github.com/tanglekit/blockcodec/pkg/block"
	"github.com/tanglekit/blockcodec/pkg/db"
	"github.com/tanglekit/blockcodec/pkg/storage"
	"github.com/tanglekit/blockcodec/pkg/wire"
)

const outputsDir = "outputs"

// openStore is replaced in tests.
var openStore = openOutputStore

func openOutputStore(env *environment) (*storage.OutputStore, func() error, error) {
	var (
		database *db.DB
		err      error
	)
	if env.config.Storage.InMemory {
		database, err = db.NewInMemoryDB()
	} else {
		path := filepath.Join(env.config.System.DataPath, outputsDir)
		if err := os.MkdirAll(path, 0o755); err != nil {
			return nil, nil, err
		}
		env.logger.Debugf("Opening output store at %s", path)
		database, err = db.NewDB(path)
	}
	if err != nil {
		return nil, nil, err
	}
	return storage.NewOutputStore(database, env.decoder, env.logger), database.Close, nil
}

func withStore(action func(c *cli.Context, env *environment, store *storage.OutputStore) error) cli.ActionFunc {
	return func(c *cli.Context) error {
		env, err := loadEnvironment(c)
		if err != nil {
			return err
		}
		store, closer, err := openStore(env)
		if err != nil {
			return err
		}
		err = action(c, env, store)
		if closeErr := closer(); err == nil {
			err = closeErr
		}
		return err
	}
}

func printRecord(c *cli.Context, data block.OutputData) error {
	out, err := wire.Marshal(block.EncodeOutputData(data))
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(c.App.Writer, string(out))
	return err
}

func outputIDArg(c *cli.Context) (block.OutputID, error) {
	if c.Args().Len() != 1 {
		return block.OutputID{}, errors.New("expected exactly one output id")
	}
	return block.ParseOutputID(c.Args().First())
}

func storeCommand() *cli.Command {
	return &cli.Command{
		Name:  "store",
		Usage: "Manage stored output data records",
		Subcommands: []*cli.Command{
			{
				Name:      "put",
				Usage:     "Store an output data record",
				ArgsUsage: "[file]",
				Action: withStore(func(c *cli.Context, env *environment, store *storage.OutputStore) error {
					data, err := readInput(c)
					if err != nil {
						return err
					}
					tree, err := wire.Parse(data)
					if err != nil {
						return err
					}
					record, err := env.decoder.DecodeOutputData(tree)
					if err != nil {
						return err
					}
					if networkID := uint64(env.config.Network.NetworkID); record.NetworkID != networkID {
						env.logger.Warningf("Output %s belongs to network %d, configured network is %d", record.OutputID, record.NetworkID, networkID)
					}
					if err := store.Put(record); err != nil {
						return err
					}
					_, err = fmt.Fprintln(c.App.Writer, record.OutputID)
					return err
				}),
			},
			{
				Name:      "get",
				Usage:     "Print a stored record",
				ArgsUsage: "<outputId>",
				Action: withStore(func(c *cli.Context, env *environment, store *storage.OutputStore) error {
					id, err := outputIDArg(c)
					if err != nil {
						return err
					}
					record, exist, err := store.Get(id)
					if err != nil {
						return err
					}
					if !exist {
						return fmt.Errorf("%w: %s", storage.ErrOutputNotFound, id)
					}
					return printRecord(c, record)
				}),
			},
			{
				Name:  "list",
				Usage: "Print every stored record",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "unspent", Usage: "Only print records which are not spent"},
					&cli.BoolFlag{Name: "ids", Usage: "Only print output ids"},
				},
				Action: withStore(func(c *cli.Context, env *environment, store *storage.OutputStore) error {
					if c.Bool("ids") {
						if c.Bool("unspent") {
							return errors.New("--ids and --unspent cannot be combined")
						}
						ids, err := store.IDs()
						if err != nil {
							return err
						}
						for _, id := range ids {
							if _, err := fmt.Fprintln(c.App.Writer, id); err != nil {
								return err
							}
						}
						return nil
					}
					list := store.List
					if c.Bool("unspent") {
						list = store.Unspent
					}
					records, err := list(c.Context)
					if err != nil {
						return err
					}
					for _, record := range records {
						if err := printRecord(c, record); err != nil {
							return err
						}
					}
					return nil
				}),
			},
			{
				Name:      "delete",
				Usage:     "Delete a stored record",
				ArgsUsage: "<outputId>",
				Action: withStore(func(c *cli.Context, env *environment, store *storage.OutputStore) error {
					id, err := outputIDArg(c)
					if err != nil {
						return err
					}
					exist, err := store.Has(id)
					if err != nil {
						return err
					}
					if !exist {
						return fmt.Errorf("%w: %s", storage.ErrOutputNotFound, id)
					}
					return store.Delete(id)
				}),
			},
		},
	}
}
