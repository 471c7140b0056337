// SPDX-FileCopyrightText: 2026 btctl Authors
//
// SPDX-License-Identifier: GPL-3.0-or-later

package bluetooth

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/xerrors"
)

func selectionFixture() *Selection {
	return NewSelection(ScanSnapshot{
		{Address: "11:11:11:11:11:11", Alias: "One"},
		{Address: "22:22:22:22:22:22", Alias: "Two"},
		{Address: "33:33:33:33:33:33"},
	})
}

func TestSelectionRender(t *testing.T) {
	var buf bytes.Buffer
	err := selectionFixture().Render(&buf, []Column{ColumnAlias})
	require.NoError(t, err)
	assert.Equal(t,
		"IDX  ALIAS\n"+
			"(0)  One\n"+
			"(1)  Two\n"+
			"(2)  33-33-33-33-33-33\n",
		buf.String())
}

func TestSelectionResolve(t *testing.T) {
	sel := selectionFixture()

	addresses, err := sel.Resolve("0,2\n")
	require.NoError(t, err)
	assert.Equal(t, []string{"11:11:11:11:11:11", "33:33:33:33:33:33"}, addresses)

	// duplicates collapse, first position wins
	addresses, err = sel.Resolve("1, 1, 0")
	require.NoError(t, err)
	assert.Equal(t, []string{"22:22:22:22:22:22", "11:11:11:11:11:11"}, addresses)
}

func TestSelectionResolveInvalid(t *testing.T) {
	sel := selectionFixture()

	_, err := sel.Resolve("3")
	assert.True(t, xerrors.Is(err, ErrInvalidSelection))
	_, err = sel.Resolve("-1")
	assert.True(t, xerrors.Is(err, ErrInvalidSelection))
	_, err = sel.Resolve("one")
	assert.True(t, xerrors.Is(err, ErrInvalidSelection))
	_, err = sel.Resolve("")
	assert.True(t, xerrors.Is(err, ErrInvalidSelection))
	// one bad index spoils the whole input
	_, err = sel.Resolve("0,9")
	assert.True(t, xerrors.Is(err, ErrInvalidSelection))
}

func TestSelectionResolveRescan(t *testing.T) {
	_, err := selectionFixture().Resolve("r\n")
	assert.True(t, xerrors.Is(err, errRescanRequested))
}

func TestApplyNameFilter(t *testing.T) {
	snapshot := ScanSnapshot{
		{Address: "11:11:11:11:11:11", Alias: "JBL Flip"},
		{Address: "22:22:22:22:22:22", Alias: "Keyboard"},
		{Address: "33:33:33:33:33:33"},
	}

	filtered := ApplyNameFilter(snapshot, "JBL")
	require.Len(t, filtered, 1)
	assert.Equal(t, "JBL Flip", filtered[0].Alias)

	// case sensitive
	assert.Empty(t, ApplyNameFilter(snapshot, "jbl"))

	// matches the fallback alias too
	assert.Len(t, ApplyNameFilter(snapshot, "33-33"), 1)

	// empty filter passes everything through
	assert.Len(t, ApplyNameFilter(snapshot, ""), 3)
}

func TestResolveAliases(t *testing.T) {
	snapshot := ScanSnapshot{
		{Address: "11:11:11:11:11:11", Alias: "One"},
		{Address: "22:22:22:22:22:22"},
	}

	matches := ResolveAliases(snapshot, []string{"One", "Missing", "22-22-22-22-22-22"})
	require.Len(t, matches, 3)
	assert.True(t, matches[0].Found)
	assert.Equal(t, "11:11:11:11:11:11", matches[0].Address)
	assert.False(t, matches[1].Found)
	assert.Equal(t, "Missing", matches[1].Alias)
	assert.True(t, matches[2].Found)
	assert.Equal(t, "22:22:22:22:22:22", matches[2].Address)
}

func TestResolveAliasesDuplicateAlias(t *testing.T) {
	snapshot := ScanSnapshot{
		{Address: "11:11:11:11:11:11", Alias: "Same"},
		{Address: "22:22:22:22:22:22", Alias: "Same"},
	}
	matches := ResolveAliases(snapshot, []string{"Same"})
	require.Len(t, matches, 1)
	assert.Equal(t, "11:11:11:11:11:11", matches[0].Address)
}
