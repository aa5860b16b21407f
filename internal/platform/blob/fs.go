// Copyright (c) 2026 GeoGedcom. All rights reserved.
// Author: keldaan-ag

package blob

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"io"
	"io/fs"
	"mime"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
)

// DefaultRoot is used when no output directory is configured.
const DefaultRoot = "./out"

// FilesystemStore maps keys to files under a root directory. Writes go to a
// temporary file first and are renamed into place, so readers never see a
// partial object.
type FilesystemStore struct {
	root string
}

// NewFilesystem returns a store rooted at root, creating the directory if needed.
func NewFilesystem(root string) (*FilesystemStore, error) {
	if root == "" {
		root = DefaultRoot
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, err
	}
	return &FilesystemStore{root: root}, nil
}

func (store *FilesystemStore) Driver() Driver { return DriverFilesystem }

func (store *FilesystemStore) pathFor(key string) (string, string, error) {
	key, err := CleanKey(key)
	if err != nil {
		return "", "", err
	}
	return key, filepath.Join(store.root, filepath.FromSlash(key)), nil
}

func (store *FilesystemStore) Put(ctx context.Context, key string, reader io.Reader, options PutOptions) (Info, error) {
	key, dataPath, err := store.pathFor(key)
	if err != nil {
		return Info{}, err
	}
	if err := os.MkdirAll(filepath.Dir(dataPath), 0o755); err != nil {
		return Info{}, err
	}

	// 1. Stream to a temp file, hashing on the way
	tmp, err := os.CreateTemp(filepath.Dir(dataPath), ".tmp-*")
	if err != nil {
		return Info{}, err
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	hash := sha256.New()
	size, err := io.Copy(io.MultiWriter(tmp, hash), reader)
	if err != nil {
		_ = tmp.Close()
		return Info{}, err
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return Info{}, err
	}
	if err := tmp.Close(); err != nil {
		return Info{}, err
	}

	// 2. Move into place
	if err := os.Rename(tmp.Name(), dataPath); err != nil {
		return Info{}, err
	}

	stat, err := os.Stat(dataPath)
	if err != nil {
		return Info{}, err
	}

	return Info{
		Key:          key,
		Size:         size,
		ContentType:  contentTypeOf(key, options.ContentType),
		ETag:         hex.EncodeToString(hash.Sum(nil)),
		LastModified: stat.ModTime().UTC(),
	}, nil
}

func (store *FilesystemStore) Get(ctx context.Context, key string) (Info, io.ReadCloser, error) {
	key, dataPath, err := store.pathFor(key)
	if err != nil {
		return Info{}, nil, err
	}

	file, err := os.Open(dataPath)
	if errors.Is(err, fs.ErrNotExist) {
		return Info{}, nil, ErrNotFound
	}
	if err != nil {
		return Info{}, nil, err
	}

	stat, err := file.Stat()
	if err != nil {
		_ = file.Close()
		return Info{}, nil, err
	}
	// A prefix is not an object.
	if stat.IsDir() {
		_ = file.Close()
		return Info{}, nil, ErrNotFound
	}

	return Info{
		Key:          key,
		Size:         stat.Size(),
		ContentType:  contentTypeOf(key, ""),
		LastModified: stat.ModTime().UTC(),
	}, file, nil
}

func (store *FilesystemStore) List(ctx context.Context, prefix string) ([]Info, error) {
	infos := []Info{}

	err := filepath.WalkDir(store.root, func(current string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if entry.IsDir() || strings.HasPrefix(entry.Name(), ".tmp-") {
			return nil
		}

		relative, err := filepath.Rel(store.root, current)
		if err != nil {
			return err
		}
		key := filepath.ToSlash(relative)
		if !strings.HasPrefix(key, prefix) {
			return nil
		}

		stat, err := entry.Info()
		if err != nil {
			return err
		}
		infos = append(infos, Info{
			Key:          key,
			Size:         stat.Size(),
			ContentType:  contentTypeOf(key, ""),
			LastModified: stat.ModTime().UTC(),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(infos, func(i, j int) bool { return infos[i].Key < infos[j].Key })
	return infos, nil
}

// contentTypeOf falls back to the extension when no type was given.
func contentTypeOf(key, given string) string {
	if given != "" {
		return given
	}
	switch path.Ext(key) {
	case ".geojson":
		return "application/geo+json"
	case ".json":
		return "application/json"
	}
	return mime.TypeByExtension(path.Ext(key))
}
