// Copyright 2025 Sylos contributors
// SPDX-License-Identifier: LGPL-2.1-or-later

package store

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/Project-Sylos/Sylos-Versioning/pkg/bolt"
	"github.com/Project-Sylos/Sylos-Versioning/pkg/content"
	"github.com/Project-Sylos/Sylos-Versioning/pkg/logging"
	bbolt "go.etcd.io/bbolt"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(Options{Path: filepath.Join(t.TempDir(), "content.db")})
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func mustNode(t *testing.T, s content.Session, path string) content.Node {
	t.Helper()
	n, err := s.Node(path)
	if err != nil {
		t.Fatalf("node %s: %v", path, err)
	}
	return n
}

func TestSessionReadYourWrites(t *testing.T) {
	st := openTestStore(t)
	s := st.NewSession()

	root, err := s.RootNode()
	if err != nil {
		t.Fatal(err)
	}
	if root.Path() != "/" || root.PrimaryType() != content.TypeRoot {
		t.Fatalf("root = %s %s", root.Path(), root.PrimaryType())
	}
	if _, err := root.AddNode("content", ""); err != nil {
		t.Fatal(err)
	}
	page, err := root.AddNode("content/page", "")
	if err != nil {
		t.Fatal(err)
	}
	if err := page.SetProperty("title", content.StringValue("Hello")); err != nil {
		t.Fatal(err)
	}
	if page.Path() != "/content/page" || page.PrimaryType() != content.TypeUnstructured {
		t.Errorf("page = %s %s", page.Path(), page.PrimaryType())
	}

	// Visible in the same session, invisible to others until commit
	got := mustNode(t, s, "/content/page")
	if v, ok, _ := got.Property("title"); !ok || v.String() != "Hello" {
		t.Errorf("title = %v %v", v, ok)
	}
	other := st.NewSession()
	if _, err := other.Node("/content/page"); !errors.Is(err, content.ErrPathNotFound) {
		t.Errorf("other session before commit: %v", err)
	}

	if !s.HasPendingChanges() {
		t.Fatal("expected pending changes")
	}
	if err := s.Commit(); err != nil {
		t.Fatal(err)
	}
	if s.HasPendingChanges() {
		t.Error("pending changes after commit")
	}
	got = mustNode(t, other, "/content/page")
	if v, _, _ := got.Property("title"); v.String() != "Hello" {
		t.Errorf("committed title = %v", v)
	}
}

func TestAddNodeErrors(t *testing.T) {
	st := openTestStore(t)
	s := st.NewSession()
	root, _ := s.RootNode()
	if _, err := root.AddNode("a", ""); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		rel  string
		want error
	}{
		{"a", content.ErrItemExists},
		{"missing/child", content.ErrPathNotFound},
		{"", content.ErrInvalidPath},
		{"/abs", content.ErrInvalidPath},
		{"bad[1]", content.ErrInvalidPath},
	}
	for _, test := range tests {
		_, err := root.AddNode(test.rel, "")
		if !errors.Is(err, test.want) {
			t.Errorf("AddNode(%q) = %v, want %v", test.rel, err, test.want)
		}
	}
	if err := root.Remove(); !errors.Is(err, content.ErrInvalidPath) {
		t.Errorf("remove root: %v", err)
	}
}

func TestChildrenKeepOrder(t *testing.T) {
	st := openTestStore(t)
	s := st.NewSession()
	root, _ := s.RootNode()
	names := []string{"zeta", "alpha", "mid"}
	for _, name := range names {
		if _, err := root.AddNode(name, ""); err != nil {
			t.Fatal(err)
		}
	}
	if err := s.Commit(); err != nil {
		t.Fatal(err)
	}

	fresh := st.NewSession()
	root, _ = fresh.RootNode()
	children, err := root.Children()
	if err != nil {
		t.Fatal(err)
	}
	var got []string
	for _, c := range children {
		got = append(got, c.Name())
	}
	if strings.Join(got, ",") != strings.Join(names, ",") {
		t.Errorf("children = %v, want %v", got, names)
	}
}

func TestMoveAndRemove(t *testing.T) {
	st := openTestStore(t)
	s := st.NewSession()
	root, _ := s.RootNode()
	for _, p := range []string{"a", "a/b", "a/b/c", "d"} {
		if _, err := root.AddNode(p, ""); err != nil {
			t.Fatal(err)
		}
	}
	if err := s.Commit(); err != nil {
		t.Fatal(err)
	}

	if err := s.Move("/a/b", "/d/moved"); err != nil {
		t.Fatal(err)
	}
	if err := s.Move("/a", "/a/x"); !errors.Is(err, content.ErrInvalidPath) {
		t.Errorf("move beneath itself: %v", err)
	}
	if err := s.Move("/missing", "/x"); !errors.Is(err, content.ErrPathNotFound) {
		t.Errorf("move missing: %v", err)
	}
	if err := s.Move("/d", "/a"); !errors.Is(err, content.ErrItemExists) {
		t.Errorf("move onto existing: %v", err)
	}
	if err := s.Commit(); err != nil {
		t.Fatal(err)
	}

	fresh := st.NewSession()
	if ok, _ := mustNode(t, fresh, "/a").HasNode("b"); ok {
		t.Error("/a/b still present")
	}
	c := mustNode(t, fresh, "/d/moved/c")
	if c.Path() != "/d/moved/c" {
		t.Errorf("moved path = %s", c.Path())
	}

	if err := mustNode(t, fresh, "/d").Remove(); err != nil {
		t.Fatal(err)
	}
	if err := fresh.Commit(); err != nil {
		t.Fatal(err)
	}
	stats, err := CountSubtree(mustNode(t, st.NewSession(), "/"))
	if err != nil {
		t.Fatal(err)
	}
	if stats.TotalNodes != 2 {
		t.Errorf("nodes after remove = %d, want 2", stats.TotalNodes)
	}
}

func TestRefresh(t *testing.T) {
	st := openTestStore(t)
	a := st.NewSession()
	root, _ := a.RootNode()
	n, _ := root.AddNode("n", "")
	n.SetProperty("v", content.LongValue(1))
	if err := a.Commit(); err != nil {
		t.Fatal(err)
	}

	b := st.NewSession()
	mustNode(t, b, "/n").SetProperty("v", content.LongValue(2))
	if err := b.Commit(); err != nil {
		t.Fatal(err)
	}

	// a still caches v=1 until it refreshes
	if v, _, _ := mustNode(t, a, "/n").Property("v"); v.Long() != 1 {
		t.Errorf("cached v = %v", v)
	}
	other, _ := root.AddNode("pending", "")
	if err := a.Refresh(true); err != nil {
		t.Fatal(err)
	}
	if v, _, _ := mustNode(t, a, "/n").Property("v"); v.Long() != 2 {
		t.Errorf("refreshed v = %v", v)
	}
	if other.Path() != "/pending" {
		t.Error("pending node lost by Refresh(true)")
	}
	a.Discard()
	if a.HasPendingChanges() {
		t.Error("pending changes after Discard")
	}
}

func TestLocks(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	st, err := Open(Options{Path: filepath.Join(t.TempDir(), "locks.db"), Clock: func() time.Time { return now }})
	if err != nil {
		t.Fatal(err)
	}
	defer st.Close()

	setup := st.NewSession()
	root, _ := setup.RootNode()
	inst, _ := root.AddNode("inst", "")
	root.AddNode("inst/child", "")
	root.AddNode("plain", "")
	if err := setup.Commit(); err != nil {
		t.Fatal(err)
	}

	a, b := st.NewSession(), st.NewSession()
	if _, err := a.LockManager().Lock("/inst", content.LockOptions{}); !errors.Is(err, content.ErrNotLockable) {
		t.Fatalf("lock without mixin: %v", err)
	}
	if err := inst.AddMixin(content.MixinLockable); err != nil {
		t.Fatal(err)
	}
	if err := setup.Commit(); err != nil {
		t.Fatal(err)
	}

	lock, err := a.LockManager().Lock("/inst", content.LockOptions{Deep: true, Timeout: time.Minute, OwnerInfo: "test"})
	if err != nil {
		t.Fatal(err)
	}
	if lock.Token == "" || !lock.ExpiresAt.Equal(now.Add(time.Minute)) {
		t.Errorf("lock = %+v", lock)
	}
	if _, err := b.LockManager().Lock("/inst", content.LockOptions{}); !errors.Is(err, content.ErrLocked) {
		t.Errorf("second lock: %v", err)
	}
	if locked, _ := b.LockManager().IsLocked("/inst/child"); !locked {
		t.Error("deep lock does not cover child")
	}
	if err := b.LockManager().Unlock("/inst"); !errors.Is(err, content.ErrLockedByOther) {
		t.Errorf("foreign unlock: %v", err)
	}

	// Writes to locked nodes are refused for other sessions
	mustNode(t, b, "/inst/child").SetProperty("x", content.StringValue("y"))
	if err := b.Commit(); !errors.Is(err, content.ErrLockedByOther) {
		t.Errorf("commit under foreign lock: %v", err)
	}
	if !b.HasPendingChanges() {
		t.Error("failed commit dropped pending changes")
	}
	mustNode(t, a, "/inst/child").SetProperty("x", content.StringValue("a"))
	if err := a.Commit(); err != nil {
		t.Errorf("commit by holder: %v", err)
	}

	// Expired locks count as absent
	now = now.Add(2 * time.Minute)
	if locked, _ := b.LockManager().IsLocked("/inst"); locked {
		t.Error("expired lock still held")
	}
	if _, err := b.LockManager().Lock("/inst", content.LockOptions{SessionScoped: true, Timeout: content.NoTimeout}); err != nil {
		t.Fatal(err)
	}
	if err := a.LockManager().Unlock("/inst"); !errors.Is(err, content.ErrLockedByOther) {
		t.Errorf("unlock of replaced lock: %v", err)
	}
	if err := b.Logout(); err != nil {
		t.Fatal(err)
	}
	if locked, _ := a.LockManager().IsLocked("/inst"); locked {
		t.Error("session-scoped lock survived logout")
	}
	if err := a.LockManager().Unlock("/inst"); !errors.Is(err, content.ErrNotLocked) {
		t.Errorf("unlock of free node: %v", err)
	}
}

func TestImportExport(t *testing.T) {
	st := openTestStore(t)
	s := st.NewSession()
	at, err := s.EnsurePath("/apps/site")
	if err != nil {
		t.Fatal(err)
	}
	doc := `{
		"jcr:primaryType": "nt:unstructured",
		"jcr:mixinTypes": ["mix:lockable"],
		"title": "Site",
		"count": 3,
		"ratio": 0.5,
		"tags": ["a", "b"],
		"enabled": true,
		"zchild": {"jcr:primaryType": "cq:Page", "x": "1"},
		"achild": {}
	}`
	if err := Import(at, []byte(doc)); err != nil {
		t.Fatal(err)
	}
	if err := s.Commit(); err != nil {
		t.Fatal(err)
	}

	site := mustNode(t, st.NewSession(), "/apps/site")
	tests := []struct {
		name string
		want content.Value
	}{
		{"title", content.StringValue("Site")},
		{"count", content.LongValue(3)},
		{"ratio", content.DoubleValue(0.5)},
		{"tags", content.StringArrayValue([]string{"a", "b"})},
		{"enabled", content.BooleanValue(true)},
	}
	for _, test := range tests {
		v, ok, err := site.Property(test.name)
		if err != nil || !ok || !v.Equal(test.want) {
			t.Errorf("%s = %v %v %v, want %v", test.name, v, ok, err, test.want)
		}
	}
	if ok, _ := site.IsNodeType(content.MixinLockable); !ok {
		t.Error("mixin not imported")
	}
	z, err := site.Node("zchild")
	if err != nil || z.PrimaryType() != "cq:Page" {
		t.Errorf("zchild = %v %v", z, err)
	}

	out, err := Export(site)
	if err != nil {
		t.Fatal(err)
	}
	text := string(out)
	if strings.Index(text, `"zchild"`) > strings.Index(text, `"achild"`) {
		t.Errorf("export lost child order:\n%s", text)
	}
	if !strings.Contains(text, `"mix:lockable"`) || !strings.Contains(text, `"count": 3`) {
		t.Errorf("export = %s", text)
	}

	if err := Import(at, []byte(`[1]`)); err == nil {
		t.Error("expected error for non-object tree")
	}
}

func TestResourcesLogsStats(t *testing.T) {
	st := openTestStore(t)
	if err := st.PutResource("/apps/c/updates/2.json", []byte(`[]`)); err != nil {
		t.Fatal(err)
	}
	data, ok, err := st.Load("/apps/c/updates/2.json")
	if err != nil || !ok || string(data) != "[]" {
		t.Errorf("load = %q %v %v", data, ok, err)
	}
	if _, ok, err := st.Load("/apps/c/updates/3.json"); ok || err != nil {
		t.Errorf("missing load = %v %v", ok, err)
	}
	if err := st.PutResource("relative", nil); !errors.Is(err, content.ErrInvalidPath) {
		t.Errorf("relative resource: %v", err)
	}
	paths, _ := st.ListResources("/apps/c/")
	if len(paths) != 1 {
		t.Errorf("resources = %v", paths)
	}

	log := st.Logger("migrator", logging.Discard{}).With("path", "/content/a")
	log.Warn("deferred", "reason", "locked")
	log.Debug("not persisted")
	entries, err := st.QueryLogs("warning", 0)
	if err != nil || len(entries) != 1 {
		t.Fatalf("warnings = %v %v", entries, err)
	}
	if e := entries[0]; e.Entity != "migrator" || e.EntityID != "/content/a" || !strings.HasPrefix(e.Message, "deferred") {
		t.Errorf("entry = %+v", e)
	}
	if all, _ := st.QueryLogs("", 0); len(all) != 1 {
		t.Errorf("all logs = %d", len(all))
	}

	st.IncrementStat("migrations/applied")
	st.IncrementStat("migrations/applied")
	if n, _ := st.Stat("migrations/applied"); n != 2 {
		t.Errorf("stat = %d", n)
	}
}

func TestLocksAndCheck(t *testing.T) {
	st := openTestStore(t)
	s := st.NewSession()
	root, _ := s.RootNode()
	a, _ := root.AddNode("a", "")
	a.AddMixin(content.MixinLockable)
	root.AddNode("b", "")
	if err := s.Commit(); err != nil {
		t.Fatal(err)
	}
	if _, err := s.LockManager().Lock("/a", content.LockOptions{OwnerInfo: "me"}); err != nil {
		t.Fatal(err)
	}
	if err := s.Move("/a", "/b/a"); err != nil {
		t.Fatal(err)
	}
	if err := s.Commit(); err != nil {
		t.Fatal(err)
	}

	locks, err := st.Locks()
	if err != nil || len(locks) != 1 {
		t.Fatalf("locks = %v %v", locks, err)
	}
	if locks[0].Path != "/b/a" || locks[0].Owner != "me" || locks[0].Expired {
		t.Errorf("lock = %+v", locks[0])
	}

	report, err := st.Check(false)
	if err != nil {
		t.Fatal(err)
	}
	if report.Nodes != 3 || len(report.Orphans) != 0 {
		t.Errorf("report = %+v", report)
	}

	lost := &bolt.NodeRecord{ID: bolt.GenerateNodeID(), ParentID: "gone", Name: "lost", PrimaryType: content.TypeUnstructured}
	err = st.DB().Update(func(tx *bbolt.Tx) error { return bolt.PutNodeRecordInTx(tx, lost) })
	if err != nil {
		t.Fatal(err)
	}
	report, err = st.Check(true)
	if err != nil {
		t.Fatal(err)
	}
	if len(report.Orphans) != 1 || report.Orphans[0].Name != "lost" || report.Repaired != 1 {
		t.Errorf("repair report = %+v", report)
	}
	if report.Orphans[0].Created.IsZero() {
		t.Error("orphan creation time not decoded")
	}
	if report, _ = st.Check(false); report.Nodes != 3 {
		t.Errorf("nodes after repair = %d", report.Nodes)
	}
}
