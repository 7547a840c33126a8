package main

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/tanglekit/blockcodec/pkg/block"
	"github.com/tanglekit/blockcodec/pkg/codec"
	"github.com/tanglekit/blockcodec/pkg/crypto"
)

type addressInfo struct {
	Chain      string    `json:"chain"`
	PublicKey  codec.Hex `json:"publicKey"`
	PubKeyHash codec.Hex `json:"pubKeyHash"`
	Address    string    `json:"address"`
}

func addressCommand() *cli.Command {
	return &cli.Command{
		Name:  "address",
		Usage: "Derive the ed25519 address of a Bip44 chain",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "mnemonic",
				Aliases: []string{"m"},
				Usage:   "BIP-39 recovery phrase",
				EnvVars: []string{"BLOCKCODEC_MNEMONIC"},
			},
			&cli.BoolFlag{
				Name:  "generate",
				Usage: "Generate a new recovery phrase and print it first",
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Print the derived key as JSON",
			},
			&cli.UintFlag{Name: "account", Usage: "Account segment of the chain"},
			&cli.UintFlag{Name: "change", Usage: "Change segment of the chain"},
			&cli.UintFlag{Name: "index", Usage: "Address index segment of the chain"},
		},
		Action: func(c *cli.Context) error {
			env, err := loadEnvironment(c)
			if err != nil {
				return err
			}
			mnemonic := c.String("mnemonic")
			if c.Bool("generate") {
				mnemonic, err = crypto.NewMnemonic()
				if err != nil {
					return err
				}
				fmt.Fprintf(c.App.Writer, "mnemonic: %s\n", mnemonic)
			}
			if mnemonic == "" {
				return errors.New("mnemonic is required, set --mnemonic or --generate")
			}
			chain := block.NewBip44(uint32(c.Uint("account")), uint32(c.Uint("change")), uint32(c.Uint("index")))
			pk, err := crypto.DerivePublicKey(mnemonic, chain)
			if err != nil {
				return err
			}
			bech32, err := block.AddressToBech32(env.config.Network.HRP, pk.Address())
			if err != nil {
				return err
			}
			env.logger.Debugf("Derived address for chain %s", chain)
			if c.Bool("json") {
				pubKeyHash := pk.Address().PubKeyHash()
				out, err := json.Marshal(addressInfo{
					Chain:      chain.String(),
					PublicKey:  pk.Bytes(),
					PubKeyHash: pubKeyHash[:],
					Address:    bech32,
				})
				if err != nil {
					return err
				}
				_, err = fmt.Fprintln(c.App.Writer, string(out))
				return err
			}
			fmt.Fprintf(c.App.Writer, "chain: %s\npublicKey: %s\naddress: %s\n", chain, pk, bech32)
			return nil
		},
	}
}
