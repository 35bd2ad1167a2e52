// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package recorder

import "github.com/samber/oops"

// Error codes returned by the Recorder.
const (
	CodeNotInitialized = "NOT_INITIALIZED"
	CodeNilDependency  = "NIL_DEPENDENCY"
)

// ErrNotInitialized is returned by hooks called before Init.
func ErrNotInitialized(hook string) error {
	return oops.Code(CodeNotInitialized).
		With("hook", hook).
		Errorf("recorder not initialized")
}

func errNilDependency(name string) error {
	return oops.Code(CodeNilDependency).
		With("dependency", name).
		Errorf("%s is required", name)
}
