package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/roshannn-07/fairpass/internal/infra/codec"
	"github.com/roshannn-07/fairpass/internal/infra/qr"
)

func runQREncode(args []string) int {
	fs := flag.NewFlagSet("qr encode", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	var inPath string
	var outPath string
	var size int
	fs.StringVar(&inPath, "in", "", "envelope path (default stdin)")
	fs.StringVar(&outPath, "out", "", "output PNG path")
	fs.IntVar(&size, "size", 0, "image size in pixels")

	if err := fs.Parse(args); err != nil {
		return 1
	}
	if outPath == "" {
		fmt.Fprintln(os.Stderr, "qr encode requires --out")
		return 1
	}

	data, err := readInput(inPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "read envelope: %v\n", err)
		return 1
	}
	signed, err := codec.DecodeEnvelope(data)
	if err != nil {
		fmt.Fprintf(os.Stderr, "decode envelope: %v\n", err)
		return 1
	}
	envelope, err := codec.EncodeEnvelope(signed)
	if err != nil {
		fmt.Fprintf(os.Stderr, "encode envelope: %v\n", err)
		return 1
	}
	png, err := qr.Encoder{Size: size}.Render(envelope)
	if err != nil {
		fmt.Fprintf(os.Stderr, "render qr: %v\n", err)
		return 1
	}
	if err := os.WriteFile(outPath, png, 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "write png: %v\n", err)
		return 1
	}
	return 0
}

func runQRDecode(args []string) int {
	fs := flag.NewFlagSet("qr decode", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	var inPath string
	var outPath string
	fs.StringVar(&inPath, "in", "", "PNG or JPEG image path")
	fs.StringVar(&outPath, "out", "", "output envelope path (default stdout)")

	if err := fs.Parse(args); err != nil {
		return 1
	}
	if inPath == "" {
		fmt.Fprintln(os.Stderr, "qr decode requires --in")
		return 1
	}

	data, err := os.ReadFile(inPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "read image: %v\n", err)
		return 1
	}
	signed, err := qr.DecodeImage(data)
	if err != nil {
		fmt.Fprintf(os.Stderr, "decode qr: %v\n", err)
		return 1
	}
	envelope, err := codec.EncodeEnvelope(signed)
	if err != nil {
		fmt.Fprintf(os.Stderr, "encode envelope: %v\n", err)
		return 1
	}
	if err := writeOutput(outPath, envelope); err != nil {
		fmt.Fprintf(os.Stderr, "write output: %v\n", err)
		return 1
	}
	return 0
}
