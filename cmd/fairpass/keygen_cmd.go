package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/roshannn-07/fairpass/internal/infra/crypto"
)

type keygenOutput struct {
	PrivateKey string `json:"private_key"`
	PublicKey  string `json:"public_key"`
	KeyID      string `json:"key_id"`
}

func runKeygen(args []string) int {
	fs := flag.NewFlagSet("keygen", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	var privatePath string
	var publicPath string
	fs.StringVar(&privatePath, "out-private", "", "write the hex seed to this file instead of stdout")
	fs.StringVar(&publicPath, "out-public", "", "write the hex public key to this file")

	if err := fs.Parse(args); err != nil {
		return 1
	}

	seed, pub, err := crypto.GenerateEd25519()
	if err != nil {
		fmt.Fprintf(os.Stderr, "generate key: %v\n", err)
		return 1
	}
	verifier, err := crypto.NewVerifier(pub)
	if err != nil {
		fmt.Fprintf(os.Stderr, "derive key id: %v\n", err)
		return 1
	}

	out := keygenOutput{PublicKey: pub, KeyID: verifier.KeyID()}
	if privatePath != "" {
		if err := os.WriteFile(privatePath, []byte(seed+"\n"), 0o600); err != nil {
			fmt.Fprintf(os.Stderr, "write private key: %v\n", err)
			return 1
		}
	} else {
		out.PrivateKey = seed
	}
	if publicPath != "" {
		if err := os.WriteFile(publicPath, []byte(pub+"\n"), 0o644); err != nil {
			fmt.Fprintf(os.Stderr, "write public key: %v\n", err)
			return 1
		}
	}

	payload, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "encode output: %v\n", err)
		return 1
	}
	if err := writeOutput("", payload); err != nil {
		fmt.Fprintf(os.Stderr, "write output: %v\n", err)
		return 1
	}
	return 0
}
