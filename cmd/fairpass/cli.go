package main

import (
	"fmt"
	"os"
	"path/filepath"
)

func run(args []string) int {
	if len(args) < 2 {
		usage(args)
		return 1
	}

	switch args[1] {
	case "keygen":
		return runKeygen(args[2:])
	case "claim":
		if len(args) >= 3 {
			switch args[2] {
			case "sign":
				return runClaimSign(args[3:])
			case "verify":
				return runClaimVerify(args[3:])
			}
		}
	case "qr":
		if len(args) >= 3 {
			switch args[2] {
			case "encode":
				return runQREncode(args[3:])
			case "decode":
				return runQRDecode(args[3:])
			}
		}
	}

	usage(args)
	return 1
}

func usage(args []string) {
	name := "fairpass"
	if len(args) > 0 && args[0] != "" {
		name = filepath.Base(args[0])
	}
	fmt.Fprintf(os.Stderr, "usage:\n")
	fmt.Fprintf(os.Stderr, "  %s keygen [--out-private <file>] [--out-public <file>]\n", name)
	fmt.Fprintf(os.Stderr, "  %s claim sign (--key <material>|--key-file <file>) --asset-id <id> --holder <address> --event-id <id> [--string-event-id] [--event-name <name>] [--issued-at <rfc3339>] [--out <file>]\n", name)
	fmt.Fprintf(os.Stderr, "  %s claim verify (--pubkey <material>|--pubkey-file <file>) [--in <envelope.json>]\n", name)
	fmt.Fprintf(os.Stderr, "  %s qr encode --in <envelope.json> --out <ticket.png> [--size <px>]\n", name)
	fmt.Fprintf(os.Stderr, "  %s qr decode --in <image> [--out <envelope.json>]\n", name)
}
