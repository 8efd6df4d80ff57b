package main

import (
	"fmt"
	"io"
	"os"
	"strings"
)

func writeOutput(path string, payload []byte) error {
	if path == "" {
		if _, err := os.Stdout.Write(payload); err != nil {
			return err
		}
		_, err := fmt.Fprintln(os.Stdout)
		return err
	}
	return os.WriteFile(path, payload, 0o644)
}

// readInput reads path, or stdin when path is empty or "-".
func readInput(path string) ([]byte, error) {
	if path == "" || path == "-" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(path)
}

// keyMaterial resolves a key given inline or by file. Exactly one must be set.
func keyMaterial(inline, path, name string) (string, error) {
	switch {
	case inline != "" && path != "":
		return "", fmt.Errorf("use only one of --%s or --%s-file", name, name)
	case inline != "":
		return inline, nil
	case path != "":
		raw, err := os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("read %s file: %w", name, err)
		}
		return strings.TrimSpace(string(raw)), nil
	default:
		return "", fmt.Errorf("--%s or --%s-file is required", name, name)
	}
}
