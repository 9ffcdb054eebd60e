// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/telekom/netping/internal/logger"
	"gopkg.in/yaml.v3"
)

// TargetsFile is the document a targets file holds.
type TargetsFile struct {
	// Targets are host names or addresses to probe
	Targets []string `yaml:"targets"`
}

// FileLoader reads the list of targets from a local file.
type FileLoader struct {
	path string
	fsys fs.FS
}

// NewFileLoader returns a loader for the targets file at path.
func NewFileLoader(path string) *FileLoader {
	return &FileLoader{
		path: path,
		fsys: os.DirFS(filepath.Dir(path)),
	}
}

// Load returns the targets listed in the file. Blank entries are dropped.
func (f *FileLoader) Load(ctx context.Context) (targets []string, err error) {
	log := logger.FromContext(ctx).With("path", f.path)

	file, err := f.fsys.Open(filepath.Base(f.path))
	if err != nil {
		log.Error("Failed to open targets file", "error", err)
		return nil, fmt.Errorf("failed to open targets file: %w", err)
	}
	defer func() {
		cerr := file.Close()
		if cerr != nil {
			log.Error("Failed to close targets file", "error", cerr)
		}
		err = errors.Join(cerr, err)
	}()

	if info, sErr := file.Stat(); sErr == nil && info.IsDir() {
		log.Error("Targets file is a directory")
		return nil, fmt.Errorf("targets file %s is a directory", f.path)
	}

	b, err := io.ReadAll(file)
	if err != nil {
		log.Error("Failed to read targets file", "error", err)
		return nil, fmt.Errorf("failed to read targets file: %w", err)
	}

	var doc TargetsFile
	if err := yaml.Unmarshal(b, &doc); err != nil {
		log.Error("Failed to parse targets file", "error", err)
		return nil, fmt.Errorf("failed to parse targets file: %w", err)
	}

	for _, t := range doc.Targets {
		if t = strings.TrimSpace(t); t != "" {
			targets = append(targets, t)
		}
	}
	log.Debug("Loaded targets from file", "count", len(targets))
	return targets, nil
}
