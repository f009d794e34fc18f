// Copyright 2025 Sylos contributors
// SPDX-License-Identifier: LGPL-2.1-or-later

package versioning

import (
	"sort"

	"github.com/Project-Sylos/Sylos-Versioning/pkg/content"
	"github.com/Project-Sylos/Sylos-Versioning/pkg/logging"
)

// TemplateNode is the read side of a tree merge.
type TemplateNode interface {
	Name() string
	Properties() (map[string]content.Value, error)
	Children() ([]content.Node, error)
}

// MergeResult counts what a merge added.
type MergeResult struct {
	Properties int
	Nodes      int
}

// Merge copies every property and descendant of template that target lacks.
// Existing target properties and nodes are never changed, so merging twice
// against the same template changes nothing the second time. Properties are
// visited in name order and children in stored order.
func Merge(template TemplateNode, target content.Node, log logging.Logger) (MergeResult, error) {
	if log == nil {
		log = logging.Root
	}
	var res MergeResult
	err := merge(template, target, log, &res)
	return res, err
}

func merge(template TemplateNode, target content.Node, log logging.Logger, res *MergeResult) error {
	props, err := template.Properties()
	if err != nil {
		return err
	}
	names := make([]string, 0, len(props))
	for name := range props {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		has, err := target.HasProperty(name)
		if err != nil {
			return err
		}
		if has {
			continue
		}
		if err := target.SetProperty(name, props[name]); err != nil {
			return err
		}
		res.Properties++
		log.Debug("added missing property", "path", target.Path(), "property", name)
	}

	children, err := template.Children()
	if err != nil {
		return err
	}
	for _, child := range children {
		name := child.Name()
		has, err := target.HasNode(name)
		if err != nil {
			return err
		}
		var next content.Node
		if has {
			next, err = target.Node(name)
		} else {
			next, err = target.AddNode(name, "")
			if err == nil {
				res.Nodes++
				log.Debug("added missing node", "path", next.Path())
			}
		}
		if err != nil {
			return err
		}
		if err := merge(child, next, log, res); err != nil {
			return err
		}
	}
	return nil
}
