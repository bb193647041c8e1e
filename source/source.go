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

// Package source loads grammar definitions and parse fixtures. Paths
// prefixed "/memfs/" are served from an in-memory filesystem instead of
// the real one, so table-driven tests can address fixtures without
// touching disk; every other path goes to the real filesystem. This is
// the teacher's compat/file package (the same "/memfs/" hijacking over
// github.com/golang/leveldb's db/memfs packages), generalized from raw
// file I/O to the two things this toolkit actually loads: grammar source
// text and named input fixtures.
package source

import (
	"context"
	"fmt"
	"io/ioutil"
	"os"
	"path"
	"strings"
	"sync"

	log "github.com/golang/glog"

	"github.com/golang/leveldb/db"
	"github.com/golang/leveldb/memfs"
)

var (
	once  sync.Once
	memFS db.FileSystem
)

func fs() db.FileSystem {
	once.Do(func() {
		memFS = memfs.New()
	})
	return memFS
}

// ReadGrammar reads a grammar definition's source text from filename,
// which may be a "/memfs/..." path or a real filesystem path.
func ReadGrammar(ctx context.Context, filename string) (string, error) {
	b, err := ReadFile(ctx, filename)
	if err != nil {
		return "", fmt.Errorf("source: reading grammar %q: %w", filename, err)
	}
	return string(b), nil
}

// ReadFixture reads one named parse-input fixture from filename.
func ReadFixture(ctx context.Context, filename string) (string, error) {
	b, err := ReadFile(ctx, filename)
	if err != nil {
		return "", fmt.Errorf("source: reading fixture %q: %w", filename, err)
	}
	return string(b), nil
}

// WriteFixture writes contents to filename, creating any "/memfs/..."
// directories as needed. Used by tests that stage fixtures on the fly.
func WriteFixture(ctx context.Context, filename, contents string) error {
	return WriteFile(ctx, filename, []byte(contents))
}

// ReadFile reads the contents of filename into memory, hijacking
// "/memfs/..." paths to the in-memory filesystem.
func ReadFile(ctx context.Context, filename string) ([]byte, error) {
	if strings.HasPrefix(filename, "/memfs/") {
		log.V(5).Infof("reading /memfs/ path %s", filename)
		fi, err := fs().Stat(filename)
		if err != nil {
			return nil, err
		}
		f, err := fs().Open(filename)
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

// WriteFile writes contents into filename, hijacking "/memfs/..." paths
// to the in-memory filesystem.
func WriteFile(ctx context.Context, filename string, contents []byte) error {
	if strings.HasPrefix(filename, "/memfs/") {
		log.V(5).Infof("writing /memfs/ path %s", filename)
		if err := fs().MkdirAll(path.Dir(filename), 0770); err != nil {
			return err
		}
		f, err := fs().Create(filename)
		if err != nil {
			return err
		}
		defer f.Close()
		_, err = f.Write(contents)
		return err
	}
	return ioutil.WriteFile(filename, contents, 0664)
}

// Stat reports file metadata for filename, hijacking "/memfs/..." paths
// to the in-memory filesystem.
func Stat(ctx context.Context, filename string) (os.FileInfo, error) {
	if strings.HasPrefix(filename, "/memfs/") {
		return fs().Stat(filename)
	}
	return os.Stat(filename)
}
