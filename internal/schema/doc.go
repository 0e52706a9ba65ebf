// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
//
// Package schema describes the attribute contract of a rule type and
// validates captured attributes against it.
//
// A Schema is the rule-side half of the contract: it lists every attribute a
// rule type accepts, under its normalized (lowerCamel) name, together with the
// spelling used in build files (snake_case), whether it is required, and the
// value type it is expected to hold. The build-file side is the set of keyword
// arguments passed to a rule function. The Validate function checks presence
// only; value shapes are the coercion layer's business.
package schema
