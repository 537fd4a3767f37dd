// Copyright 2019 Google LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package file provides the filesystem access the scene and gizmo readers
// go through, including a "/memfs/" hijack backed by an in-memory
// filesystem so scene/gizmo fixtures can be exercised in tests without
// touching disk.
package file

import (
	"context"
	"io/ioutil"
	"strings"
	"sync"

	"github.com/golang/leveldb/db"
	"github.com/golang/leveldb/memfs"
)

var (
	once  sync.Once
	memFS db.FileSystem
)

func memfsInstance() db.FileSystem {
	once.Do(func() {
		memFS = memfs.New()
	})
	return memFS
}

// ReadFile reads the contents of the file into memory. Paths under
// "/memfs/" are served from the in-memory filesystem instead of disk.
func ReadFile(ctx context.Context, filename string) ([]byte, error) {
	if strings.HasPrefix(filename, "/memfs/") {
		fs := memfsInstance()
		fi, err := fs.Stat(filename)
		if err != nil {
			return nil, err
		}
		f, err := fs.Open(filename)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		buf := make([]byte, int(fi.Size()))
		n, err := f.Read(buf)
		if err != nil {
			return nil, err
		}
		return buf[:n], nil
	}
	return ioutil.ReadFile(filename)
}

// WriteFile writes contents into filename, routing "/memfs/" paths to the
// in-memory filesystem. Used only by tests to seed gizmo/live-group
// fixtures; the parser itself never writes scene files (spec.md's
// Non-goals exclude round-tripping).
func WriteFile(ctx context.Context, filename string, contents []byte) error {
	if strings.HasPrefix(filename, "/memfs/") {
		fs := memfsInstance()
		if err := fs.MkdirAll(parentDir(filename), 0770); err != nil {
			return err
		}
		f, err := fs.Create(filename)
		if err != nil {
			return err
		}
		defer f.Close()
		_, err = f.Write(contents)
		return err
	}
	return ioutil.WriteFile(filename, contents, 0644)
}

func parentDir(filename string) string {
	idx := strings.LastIndexByte(filename, '/')
	if idx <= 0 {
		return "/"
	}
	return filename[:idx]
}
