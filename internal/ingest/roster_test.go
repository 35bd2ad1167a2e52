// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package ingest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/holomush/chatcmdlog/internal/classifier"
	"github.com/holomush/chatcmdlog/internal/recorder"
)

var _ recorder.PrivilegeResolver = (*Roster)(nil)

func TestRoster(t *testing.T) {
	ctx := context.Background()
	r := NewRoster()

	_, ok := r.Privilege(ctx, 1)
	assert.False(t, ok)

	r.Connect(1, "Rook", classifier.PrivilegeModerator)
	r.Connect(2, "Wren", classifier.PrivilegeRegular)
	assert.Equal(t, 2, r.Len())

	level, ok := r.Privilege(ctx, 1)
	assert.True(t, ok)
	assert.Equal(t, classifier.PrivilegeModerator, level)

	name, ok := r.Name(2)
	assert.True(t, ok)
	assert.Equal(t, "Wren", name)

	r.Connect(1, "Rook", classifier.PrivilegeOwner)
	level, _ = r.Privilege(ctx, 1)
	assert.Equal(t, classifier.PrivilegeOwner, level)

	r.Disconnect(1)
	r.Disconnect(99)
	_, ok = r.Privilege(ctx, 1)
	assert.False(t, ok)
	assert.Equal(t, 1, r.Len())
}
