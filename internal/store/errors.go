// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package store

import "github.com/samber/oops"

// CodeDataPersist marks a failed document write.
const CodeDataPersist = "DATA_PERSIST_ERROR"

// ErrPersist wraps a failed write of the named document.
func ErrPersist(document string, cause error) error {
	return oops.Code(CodeDataPersist).
		With("document", document).
		Wrapf(cause, "failed to persist %s", document)
}
