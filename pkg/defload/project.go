// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package defload

import (
	"errors"
	"os"
	"path/filepath"
)

const (
	// ProjectFileName is the project file looked up by FindProject.
	ProjectFileName = "argparse.toml"

	// EnvFile overrides the project file lookup with an explicit path.
	EnvFile = "ARGPARSE_FILE"
)

// Project is a loaded project file.
type Project struct {
	Path string
	Dir  string
	File *File
}

// FindProjectFromCwd is FindProject starting at the working directory.
func FindProjectFromCwd() (*Project, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	return FindProject(cwd)
}

// FindProject loads the project file named by $ARGPARSE_FILE, or else the
// nearest argparse.toml in startDir or one of its parents. It returns nil
// and no error when there is none.
func FindProject(startDir string) (*Project, error) {
	path := os.Getenv(EnvFile)
	if path == "" {
		var err error
		path, err = findProjectPath(startDir)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return nil, nil
			}
			return nil, err
		}
	}
	f, err := LoadFile(path)
	if err != nil {
		return nil, err
	}
	return &Project{Path: path, Dir: filepath.Dir(path), File: f}, nil
}

func findProjectPath(startDir string) (string, error) {
	dir := filepath.Clean(startDir)
	for {
		path := filepath.Join(dir, ProjectFileName)
		if _, err := os.Stat(path); err == nil {
			return path, nil
		} else if !os.IsNotExist(err) {
			return "", err
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", os.ErrNotExist
}
