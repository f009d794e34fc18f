// Copyright 2025 Sylos contributors
// SPDX-License-Identifier: LGPL-2.1-or-later

package versioning

import (
	"testing"

	"github.com/Project-Sylos/Sylos-Versioning/pkg/content"
	"github.com/Project-Sylos/Sylos-Versioning/pkg/store"
)

const templateTree = `{
	"version": 2,
	"title": "T",
	"flag": true,
	"panel": {"order": "1", "inner": {"tags": ["x", "y"]}},
	"footer": {}
}`

func TestMergeFillsMissing(t *testing.T) {
	st := openStore(t)
	seed(t, st, "/tpl", templateTree)
	seed(t, st, "/inst", `{"title": "mine", "panel": {"extra": "keep"}}`)
	s := st.NewSession()

	res, err := Merge(node(t, s, "/tpl"), node(t, s, "/inst"), newWarnings(t))
	if err != nil {
		t.Fatal(err)
	}
	inst := node(t, s, "/inst")
	if v, _ := prop(t, inst, "title"); v.String() != "mine" {
		t.Errorf("title overwritten: %v", v)
	}
	if v, _ := prop(t, inst, "flag"); v.Type() != content.TypeBoolean || !v.Bool() {
		t.Errorf("flag = %v %s", v, v.Type())
	}
	panel := node(t, s, "/inst/panel")
	if v, _ := prop(t, panel, "order"); v.String() != "1" {
		t.Errorf("order = %v", v)
	}
	if v, _ := prop(t, panel, "extra"); v.String() != "keep" {
		t.Errorf("extra = %v", v)
	}
	if v, _ := prop(t, node(t, s, "/inst/panel/inner"), "tags"); !v.Equal(content.StringArrayValue([]string{"x", "y"})) {
		t.Errorf("tags = %v", v)
	}
	node(t, s, "/inst/footer")

	// version, flag, order, tags; inner and footer
	if res.Properties != 4 || res.Nodes != 2 {
		t.Errorf("result = %+v", res)
	}
}

func TestMergeIdempotent(t *testing.T) {
	st := openStore(t)
	seed(t, st, "/tpl", templateTree)
	seed(t, st, "/inst", `{}`)
	s := st.NewSession()

	if _, err := Merge(node(t, s, "/tpl"), node(t, s, "/inst"), newWarnings(t)); err != nil {
		t.Fatal(err)
	}
	if err := s.Commit(); err != nil {
		t.Fatal(err)
	}
	first, err := store.Export(node(t, s, "/inst"))
	if err != nil {
		t.Fatal(err)
	}

	res, err := Merge(node(t, s, "/tpl"), node(t, s, "/inst"), newWarnings(t))
	if err != nil {
		t.Fatal(err)
	}
	if res != (MergeResult{}) || s.HasPendingChanges() {
		t.Errorf("second merge changed the tree: %+v", res)
	}
	second, _ := store.Export(node(t, s, "/inst"))
	if string(first) != string(second) {
		t.Errorf("trees differ:\n%s\n%s", first, second)
	}

	tpl, _ := store.Export(node(t, s, "/tpl"))
	tplStats, _ := store.CountSubtree(node(t, s, "/tpl"))
	instStats, _ := store.CountSubtree(node(t, s, "/inst"))
	if tplStats != instStats {
		t.Errorf("template %+v instance %+v\n%s\n%s", tplStats, instStats, tpl, first)
	}
}
