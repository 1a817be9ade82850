package main

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/spf13/cobra"
)

const secretBytes = 64

func setupCommand() *cobra.Command {
	var path string
	cmd := &cobra.Command{
		Use:   "setup",
		Short: "Generate a local env file with a fresh JWT secret",
		RunE: func(cmd *cobra.Command, _ []string) error {
			written, err := writeEnvFile(path, rand.Reader)
			if err != nil {
				return err
			}
			if !written {
				fmt.Fprintf(cmd.OutOrStdout(), "%s already exists, leaving it untouched\n", path)
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s with a new JWT_SECRET\n", path)
			return nil
		},
	}
	cmd.Flags().StringVar(&path, "file", ".env.local", "env file to create")
	return cmd
}

// writeEnvFile creates path with a random JWT_SECRET. An existing file is
// never overwritten; written is false in that case.
func writeEnvFile(path string, random io.Reader) (written bool, err error) {
	buf := make([]byte, secretBytes)
	if _, err := io.ReadFull(random, buf); err != nil {
		return false, fmt.Errorf("generate secret: %w", err)
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			return false, nil
		}
		return false, fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	if _, err := fmt.Fprintf(f, "JWT_SECRET=%s\n", hex.EncodeToString(buf)); err != nil {
		return false, fmt.Errorf("write %s: %w", path, err)
	}
	return true, nil
}
