package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/urfave/cli/v2"

	"github.com/axiomesh/axiom-da-node/pkg/crypto"
	"github.com/axiomesh/axiom-da-node/pkg/repo"
)

var configCMD = &cli.Command{
	Name:  "config",
	Usage: "The config manage commands",
	Subcommands: []*cli.Command{
		{
			Name:   "generate",
			Usage:  "Generate default config and signer key(if not exist)",
			Action: generate,
		},
		{
			Name:   "show",
			Usage:  "Show the complete config processed by the environment variable",
			Action: show,
		},
		{
			Name:   "node-info",
			Usage:  "Show node info",
			Action: nodeInfo,
		},
	},
}

func generate(ctx *cli.Context) error {
	p, err := getRootPath(ctx)
	if err != nil {
		return err
	}
	if repo.FileExist(filepath.Join(p, repo.CfgFileName)) {
		fmt.Println("repo already exists")
		return nil
	}

	if !repo.FileExist(p) {
		if err := os.MkdirAll(p, 0755); err != nil {
			return err
		}
	}

	r := repo.Default(p)
	if err := r.Flush(); err != nil {
		return err
	}
	if _, err := crypto.LoadOrGenerateKeyFile(r.SignerKeyPath()); err != nil {
		return err
	}
	fmt.Printf("config successfully generated in %s\n", p)
	return nil
}

func show(ctx *cli.Context) error {
	r, err := loadExistingRepo(ctx)
	if err != nil || r == nil {
		return err
	}
	str, err := repo.MarshalConfig(r.Config)
	if err != nil {
		return err
	}
	fmt.Println(str)
	return nil
}

func nodeInfo(ctx *cli.Context) error {
	r, err := loadExistingRepo(ctx)
	if err != nil || r == nil {
		return err
	}
	r.PrintNodeInfo(func(c string) {
		fmt.Println(c)
	})
	if repo.FileExist(r.SignerKeyPath()) {
		key, err := crypto.ReadKeyFile(r.SignerKeyPath())
		if err != nil {
			return err
		}
		fmt.Printf("verifying-key: %s\n", key.PublicKey().String())
	}
	return nil
}

func loadExistingRepo(ctx *cli.Context) (*repo.Repo, error) {
	p, err := getRootPath(ctx)
	if err != nil {
		return nil, err
	}
	if !repo.FileExist(filepath.Join(p, repo.CfgFileName)) {
		fmt.Println("repo not exist")
		return nil, nil
	}
	return repo.Load(p)
}
