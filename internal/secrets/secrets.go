// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package secrets resolves storage credentials from the process environment
// and from a directory of plain-text files. Each file in the directory is one
// secret: the filename is the key name and the trimmed contents are the value.
//
// Supported key files: adls-sas-token.
package secrets

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const (
	// EnvSAS is the environment variable carrying the SAS token,
	// matching the runbook convention.
	EnvSAS = "ADLS_SAS"

	// SASFile is the secrets-directory file holding the SAS token.
	SASFile = "adls-sas-token"
)

// Load reads all files in dir and returns a map of filename to trimmed contents.
// A missing directory or missing files are not errors; Load returns an empty map.
// Unreadable files produce a warning on stderr but do not abort.
func Load(dir string) (map[string]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("reading secrets directory %s: %w", dir, err)
	}

	secrets := make(map[string]string)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}

		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: could not read secret %s: %v\n", name, err)
			continue
		}

		value := strings.TrimSpace(string(data))
		if value != "" {
			secrets[name] = value
		}
	}

	return secrets, nil
}

// SASToken resolves the SAS token: the ADLS_SAS environment variable wins,
// then the adls-sas-token file under dir. Returns "" when neither is set;
// whether that is fatal depends on the selected mode, so the caller decides.
func SASToken(dir string) (string, error) {
	if v := strings.TrimSpace(os.Getenv(EnvSAS)); v != "" {
		return v, nil
	}
	loaded, err := Load(dir)
	if err != nil {
		return "", err
	}
	return loaded[SASFile], nil
}
