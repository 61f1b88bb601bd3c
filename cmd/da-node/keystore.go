package main

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"

	"github.com/axiomesh/axiom-da-node/pkg/crypto"
	"github.com/axiomesh/axiom-da-node/pkg/repo"
)

var signerSeedFlagVar string

func signerSeedFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:        "seed",
		Usage:       "Signer ed25519 seed(hex string), if not specified, generate a new one",
		Destination: &signerSeedFlagVar,
		EnvVars:     []string{"AXIOM_DA_SIGNER_SEED"},
		Required:    false,
	}
}

var keystoreCMD = &cli.Command{
	Name:  "keystore",
	Usage: "The signer key manage commands",
	Subcommands: []*cli.Command{
		{
			Name:   "generate",
			Usage:  "Generate the signer key",
			Action: generateKeystore,
			Flags: []cli.Flag{
				signerSeedFlag(),
				&cli.BoolFlag{
					Name:  "force",
					Usage: "Overwrite an existing signer key",
				},
			},
		},
		{
			Name:   "show",
			Usage:  "Show the signer verifying key, the line to put in a whitelist",
			Action: showKeystore,
		},
	},
}

func generateKeystore(ctx *cli.Context) error {
	p, err := getRootPath(ctx)
	if err != nil {
		return err
	}
	r := repo.Default(p)
	if cfg, err := repo.LoadConfig(p); err == nil {
		r.Config = cfg
	}
	path := r.SignerKeyPath()
	if repo.FileExist(path) && !ctx.Bool("force") {
		return errors.Errorf("signer key %s already exists, use --force to overwrite", path)
	}

	var key *crypto.Ed25519PrivateKey
	if signerSeedFlagVar != "" {
		key, err = crypto.Ed25519PrivateKeyFromSeed(common.FromHex(signerSeedFlagVar))
	} else {
		key, err = crypto.GenerateEd25519PrivateKey()
	}
	if err != nil {
		return err
	}
	if err := crypto.WriteKeyFile(path, key); err != nil {
		return err
	}
	fmt.Printf("signer key generated in %s\n", path)
	fmt.Printf("verifying-key: %s\n", key.PublicKey().String())
	return nil
}

func showKeystore(ctx *cli.Context) error {
	r, err := loadExistingRepo(ctx)
	if err != nil || r == nil {
		return err
	}
	key, err := crypto.ReadKeyFile(r.SignerKeyPath())
	if err != nil {
		return err
	}
	fmt.Println(key.PublicKey().String())
	return nil
}
