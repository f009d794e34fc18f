// Copyright 2025 Sylos contributors
// SPDX-License-Identifier: LGPL-2.1-or-later

package versioning

import (
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/Project-Sylos/Sylos-Versioning/pkg/content"
	"github.com/Project-Sylos/Sylos-Versioning/pkg/logging"
	"github.com/Project-Sylos/Sylos-Versioning/pkg/store"
)

func openStore(t *testing.T) *store.Store {
	t.Helper()
	st, err := store.Open(store.Options{Path: filepath.Join(t.TempDir(), "content.db")})
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	return st
}

// seed imports a JSON tree at path and commits it.
func seed(t *testing.T, st *store.Store, path, tree string) {
	t.Helper()
	s := st.NewSession()
	n, err := s.EnsurePath(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := store.Import(n, []byte(tree)); err != nil {
		t.Fatalf("import %s: %v", path, err)
	}
	if err := s.Commit(); err != nil {
		t.Fatal(err)
	}
}

func node(t *testing.T, s content.Session, path string) content.Node {
	t.Helper()
	n, err := s.Node(path)
	if err != nil {
		t.Fatalf("node %s: %v", path, err)
	}
	return n
}

func prop(t *testing.T, n content.Node, name string) (content.Value, bool) {
	t.Helper()
	v, ok, err := n.Property(name)
	if err != nil {
		t.Fatalf("property %s of %s: %v", name, n.Path(), err)
	}
	return v, ok
}

// warnings captures warning messages and forwards everything to the test log.
type warnings struct {
	logging.Logger
	mu   *sync.Mutex
	msgs *[]string
}

func newWarnings(t *testing.T) warnings {
	return warnings{Logger: &logging.Test{TB: t}, mu: new(sync.Mutex), msgs: new([]string)}
}

func (w warnings) Warn(m string, kv ...interface{}) {
	w.mu.Lock()
	*w.msgs = append(*w.msgs, logging.Line("", m, kv))
	w.mu.Unlock()
	w.Logger.Warn(m, kv...)
}

func (w warnings) With(kv ...interface{}) logging.Logger {
	return warnings{Logger: w.Logger.With(kv...), mu: w.mu, msgs: w.msgs}
}

func (w warnings) count(substr string) int {
	w.mu.Lock()
	defer w.mu.Unlock()
	n := 0
	for _, m := range *w.msgs {
		if strings.Contains(m, substr) {
			n++
		}
	}
	return n
}
