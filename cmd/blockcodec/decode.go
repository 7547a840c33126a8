package main

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/tanglekit/blockcodec/pkg/block"
	"github.com/tanglekit/blockcodec/pkg/wire"
)

const outputDataFamily = "OutputData"

func decodeCommand() *cli.Command {
	return &cli.Command{
		Name:      "decode",
		Usage:     "Decode a wire tree and print its canonical form",
		ArgsUsage: "[file]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "family",
				Aliases:  []string{"f"},
				Usage:    "Family of the tree, or OutputData for a stored record",
				Required: true,
			},
			&cli.BoolFlag{
				Name:  "strict",
				Usage: "Reject fields which are not declared",
			},
			&cli.BoolFlag{
				Name:  "indent",
				Usage: "Indent the printed tree",
			},
		},
		Action: func(c *cli.Context) error {
			env, err := loadEnvironment(c)
			if err != nil {
				return err
			}
			defer env.logger.Sync() //nolint:errcheck // stderr sync fails on terminals
			decoder := env.decoder
			if c.Bool("strict") {
				opts, err := env.config.Codec.DecoderOptions()
				if err != nil {
					return err
				}
				decoder = block.NewDecoder(append(opts, block.WithUnknownFields(block.RejectUnknownFields))...)
			}
			data, err := readInput(c)
			if err != nil {
				return err
			}
			tree, err := wire.Parse(data)
			if err != nil {
				return err
			}
			canonical, err := canonicalTree(decoder, tree, c.String("family"))
			if err != nil {
				return err
			}
			var out []byte
			if c.Bool("indent") {
				out, err = wire.MarshalIndent(canonical, "", "  ")
			} else {
				out, err = wire.Marshal(canonical)
			}
			if err != nil {
				return err
			}
			env.logger.Debugf("Decoded %s tree of %d bytes", c.String("family"), len(data))
			_, err = fmt.Fprintln(c.App.Writer, string(out))
			return err
		},
	}
}

func canonicalTree(decoder *block.Decoder, tree wire.Value, familyName string) (wire.Value, error) {
	if familyName == outputDataFamily {
		data, err := decoder.DecodeOutputData(tree)
		if err != nil {
			return nil, err
		}
		return block.EncodeOutputData(data), nil
	}
	family, err := block.ParseFamily(familyName)
	if err != nil {
		return nil, err
	}
	v, err := decoder.Decode(tree, family)
	if err != nil {
		return nil, err
	}
	return block.Encode(v), nil
}
