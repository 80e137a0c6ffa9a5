/*
   DiskScope - Amiga disk inspector
   Copyright (c) 2021, Alexander Vollschwitz

   This file is part of DiskScope.

   DiskScope is free software: you can redistribute it and/or modify
   it under the terms of the GNU General Public License as published by
   the Free Software Foundation, either version 3 of the License, or
   (at your option) any later version.

   DiskScope is distributed in the hope that it will be useful,
   but WITHOUT ANY WARRANTY; without even the implied warranty of
   MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
   GNU General Public License for more details.

   You should have received a copy of the GNU General Public License
   along with DiskScope. If not, see <http://www.gnu.org/licenses/>.
*/

package run

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xelalexv/diskscope/pkg/mfm"
)

func TestRenderBits(t *testing.T) {

	var buf bytes.Buffer
	require.NoError(t, renderBits(&buf, "0101110001", 4, false))
	assert.Equal(t, "0101\n1100\n01\n", buf.String())

	buf.Reset()
	require.NoError(t, renderBits(&buf, "0101", 0, false))
	assert.Equal(t, "0101\n", buf.String())

	buf.Reset()
	require.NoError(t, renderBits(&buf, mfm.NoDataText, 8, true))
	assert.Equal(t, mfm.NoDataText+"\n", buf.String())
}

func TestRenderBitsHighlightsSync(t *testing.T) {

	bits := "1111" + mfm.SyncBits + mfm.SyncBits + "1111"

	var buf bytes.Buffer
	require.NoError(t, renderBits(&buf, bits, 0, true))
	assert.Equal(t, "1111"+colorSync+mfm.SyncBits+mfm.SyncBits+colorReset+
		"1111\n", buf.String())

	// highlighting is interrupted at line breaks
	buf.Reset()
	require.NoError(t, renderBits(&buf, bits, 20, true))
	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasSuffix(lines[0], colorReset))
	assert.True(t, strings.HasPrefix(lines[1], colorSync))
}
