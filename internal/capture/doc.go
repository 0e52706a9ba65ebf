// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
//
// Package capture turns rule invocations in a build file into records.
//
// Before a build file runs, Bind installs one Rule per registered rule type
// into a Namespace. Every Rule is the same generic capture routine,
// parameterized by the rule type, its schema, the file's base path and the
// collection records are appended to. When the build file calls a rule
// function the evaluator converts the call's keyword arguments into
// Arguments and hands them to Rule.Invoke, which validates them and commits
// exactly one record, or none if anything is wrong.
package capture
