// Copyright 2025 Sylos contributors
// SPDX-License-Identifier: LGPL-2.1-or-later

// Package logging provides the key/value logger used across Sylos.
// The variadic arguments of every method are key value pairs; keys must be
// strings and values should have a meaningful string representation.
package logging

import (
	"fmt"
	"log"
	"strings"
)

// Root is the logger used when a component is not given one.
var Root Logger = &Default{}

type Logger interface {
	Debug(msg string, kv ...interface{})
	Info(msg string, kv ...interface{})
	Warn(msg string, kv ...interface{})
	Error(msg string, kv ...interface{})
	With(kv ...interface{}) Logger
}

// Default writes through the standard library logger.
type Default struct {
	Tags []interface{}
	// Verbose enables debug output.
	Verbose bool
}

func (l *Default) Debug(m string, kv ...interface{}) {
	if l.Verbose {
		log.Print(Line("DEB ", m, kv, l.Tags))
	}
}
func (l *Default) Info(m string, kv ...interface{})  { log.Print(Line("INF ", m, kv, l.Tags)) }
func (l *Default) Warn(m string, kv ...interface{})  { log.Print(Line("WRN ", m, kv, l.Tags)) }
func (l *Default) Error(m string, kv ...interface{}) { log.Print(Line("ERR ", m, kv, l.Tags)) }
func (l *Default) With(kv ...interface{}) Logger {
	return &Default{Tags: withTags(l.Tags, kv), Verbose: l.Verbose}
}

// Discard drops everything.
type Discard struct{}

func (Discard) Debug(string, ...interface{}) {}
func (Discard) Info(string, ...interface{})  {}
func (Discard) Warn(string, ...interface{})  {}
func (Discard) Error(string, ...interface{}) {}
func (d Discard) With(...interface{}) Logger { return d }

// Tee forwards every entry to all loggers.
type Tee []Logger

func (t Tee) Debug(m string, kv ...interface{}) {
	for _, l := range t {
		l.Debug(m, kv...)
	}
}
func (t Tee) Info(m string, kv ...interface{}) {
	for _, l := range t {
		l.Info(m, kv...)
	}
}
func (t Tee) Warn(m string, kv ...interface{}) {
	for _, l := range t {
		l.Warn(m, kv...)
	}
}
func (t Tee) Error(m string, kv ...interface{}) {
	for _, l := range t {
		l.Error(m, kv...)
	}
}
func (t Tee) With(kv ...interface{}) Logger {
	res := make(Tee, len(t))
	for i, l := range t {
		res[i] = l.With(kv...)
	}
	return res
}

// Line formats a level prefix, a message and any number of key value lists
// into a single line: "WRN msg key=val key=val".
func Line(lvl, msg string, all ...[]interface{}) string {
	var b strings.Builder
	b.WriteString(lvl)
	b.WriteString(msg)
	for _, kv := range all {
		for i, v := range kv {
			if i%2 == 0 {
				b.WriteByte(' ')
			} else {
				b.WriteByte('=')
			}
			b.WriteString(fmt.Sprint(v))
		}
	}
	return b.String()
}

// Lookup returns the value of the first key found in the key value lists.
func Lookup(key string, all ...[]interface{}) (interface{}, bool) {
	for _, kv := range all {
		for i := 0; i+1 < len(kv); i += 2 {
			if k, ok := kv[i].(string); ok && k == key {
				return kv[i+1], true
			}
		}
	}
	return nil, false
}

func withTags(tags, kv []interface{}) []interface{} {
	t := make([]interface{}, 0, len(tags)+len(kv))
	t = append(t, tags...)
	return append(t, kv...)
}
