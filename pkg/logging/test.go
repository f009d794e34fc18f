// Copyright 2025 Sylos contributors
// SPDX-License-Identifier: LGPL-2.1-or-later

package logging

type TB interface {
	Errorf(string, ...interface{})
	Logf(string, ...interface{})
	Helper()
}

// Test is a logger using the testing package T or B types for logging.
// Only Error fails the test; warnings are expected output of many code paths.
type Test struct {
	TB
	Tags []interface{}
}

func (l *Test) Debug(m string, kv ...interface{}) { l.Helper(); l.Logf("%s", Line("DEB ", m, kv, l.Tags)) }
func (l *Test) Info(m string, kv ...interface{})  { l.Helper(); l.Logf("%s", Line("INF ", m, kv, l.Tags)) }
func (l *Test) Warn(m string, kv ...interface{})  { l.Helper(); l.Logf("%s", Line("WRN ", m, kv, l.Tags)) }
func (l *Test) Error(m string, kv ...interface{}) { l.Helper(); l.Errorf("%s", Line("ERR ", m, kv, l.Tags)) }
func (l *Test) With(kv ...interface{}) Logger     { return &Test{l.TB, withTags(l.Tags, kv)} }
