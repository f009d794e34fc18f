// Copyright 2025 Sylos contributors
// SPDX-License-Identifier: LGPL-2.1-or-later

package versioning

import (
	"errors"
	"fmt"

	"github.com/Project-Sylos/Sylos-Versioning/pkg/content"
	"github.com/Project-Sylos/Sylos-Versioning/pkg/logging"
)

// Interpreter applies update operations to one node for one migration run.
// The cursor stays on Node for the whole run; branches do not move it.
// Structural anomalies such as missing nodes are handled as control flow
// and logged; only store failures and unsupported comparisons are returned.
type Interpreter struct {
	Node    content.Node
	Session content.Session
	// Version of the script being run, for error and log context.
	Version int64
	Log     logging.Logger
}

// NewInterpreter returns an interpreter bound to n and its session.
func NewInterpreter(n content.Node, version int64, log logging.Logger) *Interpreter {
	if log == nil {
		log = logging.Root
	}
	return &Interpreter{Node: n, Session: n.Session(), Version: version, Log: log}
}

// Run applies ops in order. The first fatal error stops the run and is
// returned as a *StepError naming the innermost failing operation.
func (in *Interpreter) Run(ops []Operation) error {
	for i, op := range ops {
		if err := in.Apply(op); err != nil {
			var se *StepError
			if errors.As(err, &se) {
				return err
			}
			return &StepError{Version: in.Version, Index: i, Kind: op.Kind(), Err: err}
		}
	}
	return nil
}

// Apply executes a single operation.
func (in *Interpreter) Apply(op Operation) error {
	switch op := op.(type) {
	case IfExists:
		ok, err := in.Node.HasNode(op.At)
		if err != nil {
			return err
		}
		return in.branch(ok, op.Then, op.Else)

	case IfPropertyExists:
		target, found, err := in.target(op.At)
		if err != nil || !found {
			return in.orElse(err, op.Else)
		}
		ok, err := target.HasProperty(op.Property)
		if err != nil {
			return err
		}
		return in.branch(ok, op.Then, op.Else)

	case IfPropertyEquals:
		target, found, err := in.target(op.At)
		if err != nil || !found {
			return in.orElse(err, op.Else)
		}
		v, ok, err := target.Property(op.Property)
		if err != nil {
			return err
		}
		if ok && v.Type() != content.TypeString {
			return fmt.Errorf("%w: %s of %s is %s", ErrUnsupportedType, op.Property, target.Path(), v.Type())
		}
		return in.branch(ok && v.String() == op.Val, op.Then, op.Else)

	case AddNode:
		exists, err := in.Node.HasNode(op.At)
		if err != nil {
			return err
		}
		if exists {
			in.skip(op, "node already exists", "at", op.At)
			return nil
		}
		n, err := in.Node.AddNode(op.At, op.PrimaryType)
		if errors.Is(err, content.ErrPathNotFound) {
			in.skip(op, "parent node missing", "at", op.At)
			return nil
		}
		if err != nil {
			return err
		}
		return in.assign(n, op.Properties)

	case MoveNode:
		return in.move(op)

	case CopyProperty:
		from, found, err := in.target(op.FromNode)
		if err != nil {
			return err
		}
		if !found {
			in.skip(op, "source node missing", "fromNode", op.FromNode)
			return nil
		}
		to, found, err := in.target(op.ToNode)
		if err != nil {
			return err
		}
		if !found {
			in.skip(op, "destination node missing", "toNode", op.ToNode)
			return nil
		}
		v, ok, err := from.Property(op.FromProperty)
		if err != nil || !ok {
			return err
		}
		return to.SetProperty(op.ToProperty, v)

	case SetProperties:
		target, found, err := in.target(op.At)
		if err != nil {
			return err
		}
		if !found {
			in.skip(op, "node missing", "at", op.At)
			return nil
		}
		return in.assign(target, op.Properties)

	case RemoveNode:
		exists, err := in.Node.HasNode(op.At)
		if err != nil || !exists {
			return err
		}
		n, err := in.Node.Node(op.At)
		if err != nil {
			return err
		}
		return n.Remove()

	case RemoveProperty:
		target, found, err := in.target(op.At)
		if err != nil {
			return err
		}
		if !found {
			in.skip(op, "node missing", "at", op.At)
			return nil
		}
		return target.RemoveProperty(op.Property)

	case Unrecognized:
		in.skip(op, "unknown operation")
		return nil
	}
	return fmt.Errorf("unhandled operation %T", op)
}

func (in *Interpreter) move(op MoveNode) error {
	exists, err := in.Node.HasNode(op.From)
	if err != nil {
		return err
	}
	if !exists {
		in.skip(op, "source node missing", "from", op.From)
		return nil
	}

	base := in.Node.Path()
	from, to := content.Join(base, op.From), content.Join(base, op.To)
	switch {
	case from == to:
		in.skip(op, "destination is the source", "to", to)
		return nil
	case content.IsDescendant(from, to):
		in.skip(op, "destination contains the source", "to", to)
		return nil
	case content.IsDescendant(to, from):
		in.skip(op, "destination inside the source", "to", to)
		return nil
	}
	taken, err := in.Node.HasNode(op.To)
	if err != nil {
		return err
	}
	if taken {
		if !op.Overwrite {
			in.skip(op, "destination exists", "to", to)
			return nil
		}
		dest, err := in.Node.Node(op.To)
		if err != nil {
			return err
		}
		if err := dest.Remove(); err != nil {
			return err
		}
	}

	err = in.Session.Move(from, to)
	if errors.Is(err, content.ErrPathNotFound) {
		in.skip(op, "destination parent missing", "to", to)
		return nil
	}
	return err
}

// target resolves at below the cursor; an empty at is the cursor itself.
func (in *Interpreter) target(at string) (content.Node, bool, error) {
	if at == "" {
		return in.Node, true, nil
	}
	ok, err := in.Node.HasNode(at)
	if err != nil || !ok {
		return nil, false, err
	}
	n, err := in.Node.Node(at)
	return n, err == nil, err
}

func (in *Interpreter) assign(n content.Node, props []Assignment) error {
	for _, a := range props {
		if err := n.SetProperty(a.Name, a.Value); err != nil {
			return fmt.Errorf("set %s on %s: %w", a.Name, n.Path(), err)
		}
	}
	return nil
}

func (in *Interpreter) branch(cond bool, then, els []Operation) error {
	if cond {
		return in.Run(then)
	}
	return in.Run(els)
}

func (in *Interpreter) orElse(err error, els []Operation) error {
	if err != nil {
		return err
	}
	return in.Run(els)
}

func (in *Interpreter) skip(op Operation, reason string, kv ...interface{}) {
	kv = append([]interface{}{"op", op.Kind(), "version", in.Version, "path", in.Node.Path()}, kv...)
	in.Log.Warn("skipped update operation: "+reason, kv...)
}
