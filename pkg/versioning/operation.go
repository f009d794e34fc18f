// Copyright 2025 Sylos contributors
// SPDX-License-Identifier: LGPL-2.1-or-later

package versioning

import "github.com/Project-Sylos/Sylos-Versioning/pkg/content"

// Kind names an update operation, as found in the "operation" field of a script entry.
type Kind string

const (
	KindIfExists         Kind = "ifExists"
	KindIfPropertyExists Kind = "ifPropertyExists"
	KindIfPropertyEquals Kind = "ifPropertyEquals"
	KindAddNode          Kind = "addNode"
	KindMoveNode         Kind = "moveNode"
	KindCopyProperty     Kind = "copyProperty"
	KindSetProperties    Kind = "setProperties"
	KindRemoveNode       Kind = "removeNode"
	KindRemoveProperty   Kind = "removeProperty"
)

// Operation is one decoded entry of an update script. The concrete types
// below are the only implementations; the interpreter switches over them.
type Operation interface {
	Kind() Kind
}

// Assignment is one property of a setProperties or addNode operation.
type Assignment struct {
	Name  string
	Value content.Value
}

// IfExists runs Then when the child At exists, Else otherwise.
type IfExists struct {
	At   string
	Then []Operation
	Else []Operation
}

// IfPropertyExists runs Then when Property exists on the child At, or on
// the current node when At is empty.
type IfPropertyExists struct {
	At       string
	Property string
	Then     []Operation
	Else     []Operation
}

// IfPropertyEquals runs Then when the string property Property equals Val.
type IfPropertyEquals struct {
	At       string
	Property string
	Val      string
	Then     []Operation
	Else     []Operation
}

type AddNode struct {
	At          string
	PrimaryType string
	Properties  []Assignment // nil when the script gave no properties
}

// MoveNode renames or moves the child From to To, both relative to the current node.
type MoveNode struct {
	From      string
	To        string
	Overwrite bool
}

type CopyProperty struct {
	FromNode     string
	FromProperty string
	ToNode       string
	ToProperty   string
}

type SetProperties struct {
	At         string
	Properties []Assignment
}

type RemoveNode struct {
	At string
}

type RemoveProperty struct {
	At       string
	Property string
}

// Unrecognized stands for an operation this version does not know. It is
// skipped so that newer scripts still run.
type Unrecognized struct {
	Name string
}

func (IfExists) Kind() Kind         { return KindIfExists }
func (IfPropertyExists) Kind() Kind { return KindIfPropertyExists }
func (IfPropertyEquals) Kind() Kind { return KindIfPropertyEquals }
func (AddNode) Kind() Kind          { return KindAddNode }
func (MoveNode) Kind() Kind         { return KindMoveNode }
func (CopyProperty) Kind() Kind     { return KindCopyProperty }
func (SetProperties) Kind() Kind    { return KindSetProperties }
func (RemoveNode) Kind() Kind       { return KindRemoveNode }
func (RemoveProperty) Kind() Kind   { return KindRemoveProperty }
func (u Unrecognized) Kind() Kind   { return Kind(u.Name) }

// Script is the decoded update script for one version.
type Script struct {
	Version int64
	Path    string
	Updates []Operation
}
