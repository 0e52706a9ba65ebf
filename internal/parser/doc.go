// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
//
// Package parser evaluates a single build file and returns the rule records
// it declares.
//
// For every file the Parser posts a Started event, parses the source, opens a
// fresh evaluation session, binds one rule function per registered rule type
// into the namespace and executes the program. The records captured by the
// rule functions are returned in invocation order. A Finished event is posted
// on every path, carrying the records captured so far, so observers can tell
// an empty build file from one that failed half way.
//
// Parsers hold no per-file state. One Parser may be shared by goroutines
// parsing different files; each call gets its own session and collection.
package parser
