// Copyright (c) 2026 GeoGedcom. All rights reserved.
// Author: keldaan-ag

package blob

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"sort"
	"strings"
	"sync"
	"time"
)

type memoryObject struct {
	info Info
	data []byte
}

// MemoryStore keeps objects in process memory. It is safe for concurrent use.
type MemoryStore struct {
	mu      sync.RWMutex
	objects map[string]memoryObject
}

// NewMemory returns an empty in-memory store.
func NewMemory() *MemoryStore {
	return &MemoryStore{objects: map[string]memoryObject{}}
}

func (store *MemoryStore) Driver() Driver { return DriverMemory }

func (store *MemoryStore) Put(ctx context.Context, key string, reader io.Reader, options PutOptions) (Info, error) {
	key, err := CleanKey(key)
	if err != nil {
		return Info{}, err
	}

	data, err := io.ReadAll(reader)
	if err != nil {
		return Info{}, err
	}

	sum := sha256.Sum256(data)
	info := Info{
		Key:          key,
		Size:         int64(len(data)),
		ContentType:  options.ContentType,
		ETag:         hex.EncodeToString(sum[:]),
		LastModified: time.Now().UTC(),
	}

	store.mu.Lock()
	store.objects[key] = memoryObject{info: info, data: data}
	store.mu.Unlock()

	return info, nil
}

func (store *MemoryStore) Get(ctx context.Context, key string) (Info, io.ReadCloser, error) {
	key, err := CleanKey(key)
	if err != nil {
		return Info{}, nil, err
	}

	store.mu.RLock()
	object, found := store.objects[key]
	store.mu.RUnlock()

	if !found {
		return Info{}, nil, ErrNotFound
	}
	return object.info, io.NopCloser(bytes.NewReader(object.data)), nil
}

func (store *MemoryStore) List(ctx context.Context, prefix string) ([]Info, error) {
	store.mu.RLock()
	defer store.mu.RUnlock()

	infos := []Info{}
	for key, object := range store.objects {
		if strings.HasPrefix(key, prefix) {
			infos = append(infos, object.info)
		}
	}

	sort.Slice(infos, func(i, j int) bool { return infos[i].Key < infos[j].Key })
	return infos, nil
}
