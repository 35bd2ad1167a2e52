// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package config

import (
	"github.com/samber/oops"

	"github.com/holomush/chatcmdlog/pkg/errutil"
)

// Error codes for configuration problems.
const (
	CodeConfigParse = "CONFIG_PARSE_ERROR"
	CodeConfigValue = "CONFIG_VALUE_ERROR"
)

// Reasons attached to CONFIG_VALUE_ERROR repairs.
const (
	ReasonBlank        = "blank"
	ReasonInvalid      = "invalid"
	ReasonDuplicate    = "duplicate"
	ReasonEmpty        = "empty"
	ReasonNonCanonical = "non_canonical"
)

// ErrConfigParse reports an absent or malformed configuration document.
func ErrConfigParse(document string, cause error) error {
	builder := oops.Code(CodeConfigParse).With("document", document)
	if cause != nil {
		return builder.Wrapf(cause, "cannot parse configuration")
	}
	return builder.Errorf("cannot parse configuration")
}

// ErrConfigValue reports a field that was repaired during normalization.
func ErrConfigValue(field, value, reason string) error {
	return oops.Code(CodeConfigValue).
		With("field", field).
		With("value", value).
		With("reason", reason).
		Errorf("%s value %q repaired (%s)", field, value, reason)
}

// IsInvalidLogMode reports whether err is the repair of an unrecognized log
// mode, the one repair operators are warned about.
func IsInvalidLogMode(err error) bool {
	if errutil.Code(err) != CodeConfigValue {
		return false
	}
	oopsErr, _ := oops.AsOops(err)
	ctx := oopsErr.Context()
	return ctx["field"] == FieldLogMode && ctx["reason"] == ReasonInvalid
}

// valueOf returns the offending value recorded on a CONFIG_VALUE_ERROR.
func valueOf(err error) any {
	oopsErr, ok := oops.AsOops(err)
	if !ok {
		return nil
	}
	return oopsErr.Context()["value"]
}
