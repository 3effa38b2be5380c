//go:build mage

// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package main

import "github.com/magefile/mage/sh"

const binLint = "golangci-lint"

// lintPackages leaves out magefiles, which mage compiles separately.
var lintPackages = []string{"./cmd/...", "./internal/...", "./pkg/...", "./tests/..."}

// Lint runs golangci-lint over the sprintplan packages.
func Lint() error {
	return sh.RunV(binLint, append([]string{"run"}, lintPackages...)...)
}

// Vet runs go vet over the same packages.
func Vet() error {
	return sh.RunV(binGo, append([]string{"vet"}, lintPackages...)...)
}
