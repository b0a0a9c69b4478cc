// Copyright 2017-2018 Gridpub, Inc.
// This software is released under an MIT/X11 open source license.

// Package file provides an object store backed by a local directory.
// Keys map to file paths under the root; a key like "demo/temp/0.0"
// reads the file root/demo/temp/0.0.
package file

import (
	"context"
	"io/ioutil"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gridpub/gridpub/storage"
)

type fileStore struct {
	root string
}

// New creates a store rooted at the given directory.  The directory
// must already exist.
func New(root string) (storage.Store, error) {
	root, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(root)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, &os.PathError{Op: "open", Path: root, Err: os.ErrInvalid}
	}
	return &fileStore{root: root}, nil
}

func (s *fileStore) Type() string { return "file" }

// resolve maps a key to an absolute path, refusing keys that would
// escape the root.
func (s *fileStore) resolve(key string) (string, error) {
	key = storage.NormalizeKey(key)
	path := filepath.Join(s.root, filepath.FromSlash(key))
	if path != s.root && !strings.HasPrefix(path, s.root+string(os.PathSeparator)) {
		return "", storage.ErrKeyNotFound{Key: key}
	}
	return path, nil
}

func (s *fileStore) Get(ctx context.Context, key string) ([]byte, error) {
	path, err := s.resolve(key)
	if err != nil {
		return nil, err
	}
	data, err := ioutil.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, storage.ErrKeyNotFound{Key: storage.NormalizeKey(key)}
	}
	return data, err
}

func (s *fileStore) List(ctx context.Context, prefix string) ([]string, error) {
	base, err := s.resolve(prefix)
	if err != nil {
		return nil, err
	}
	keys := []string{}
	err = filepath.Walk(base, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			if os.IsNotExist(err) {
				return nil
			}
			return err
		}
		if info.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(s.root, path)
		if err != nil {
			return err
		}
		keys = append(keys, filepath.ToSlash(rel))
		return nil
	})
	if os.IsNotExist(err) {
		err = nil
	}
	if err != nil {
		return nil, err
	}
	sort.Strings(keys)
	return keys, nil
}

func (s *fileStore) Put(ctx context.Context, key string, data []byte) error {
	path, err := s.resolve(key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return ioutil.WriteFile(path, data, 0644)
}
