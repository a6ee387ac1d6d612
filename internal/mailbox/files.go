package mailbox

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/acavemancodes/Snistplacements/internal/types"
)

// LoadFile reads emails from one file:
//   - .eml: a single RFC 5322 message
//   - .json: one {"subject","body"} object or an array of them
//   - anything else: plain text, the first line taken as the subject
func LoadFile(path string) ([]types.Email, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".eml":
		email, err := ParseMessage(bytes.NewReader(b))
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
		if email.ID == "" {
			email.ID = filepath.Base(path)
		}
		return []types.Email{email}, nil
	case ".json":
		emails, err := decodeJSON(b)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
		return emails, nil
	default:
		subject, body, _ := strings.Cut(string(b), "\n")
		return []types.Email{{ID: filepath.Base(path), Subject: strings.TrimSpace(subject), BodyText: body}}, nil
	}
}

func decodeJSON(b []byte) ([]types.Email, error) {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '[' {
		var emails []types.Email
		if err := json.Unmarshal(b, &emails); err != nil {
			return nil, err
		}
		return emails, nil
	}
	var email types.Email
	if err := json.Unmarshal(b, &email); err != nil {
		return nil, err
	}
	return []types.Email{email}, nil
}

// LoadFiles reads every path in order. Directories contribute their .eml,
// .json and .txt files sorted by name.
func LoadFiles(paths ...string) ([]types.Email, error) {
	var emails []types.Email
	for _, p := range paths {
		files, err := expand(p)
		if err != nil {
			return nil, err
		}
		for _, f := range files {
			batch, err := LoadFile(f)
			if err != nil {
				return nil, err
			}
			emails = append(emails, batch...)
		}
	}
	return emails, nil
}

func expand(path string) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	if !info.IsDir() {
		return []string{path}, nil
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, fmt.Errorf("read dir %s: %w", path, err)
	}
	var files []string
	for _, e := range entries {
		switch strings.ToLower(filepath.Ext(e.Name())) {
		case ".eml", ".json", ".txt":
			if !e.IsDir() {
				files = append(files, filepath.Join(path, e.Name()))
			}
		}
	}
	sort.Strings(files)
	return files, nil
}

// DirSource serves the mail files found under Dir on every Fetch.
type DirSource struct {
	Dir string
}

func (d DirSource) Fetch(ctx context.Context) ([]types.Email, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return LoadFiles(d.Dir)
}
