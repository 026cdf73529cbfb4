package pagination

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildCursorPageInfoTrimsLookahead(t *testing.T) {
	rows := []int{30, 20, 10}

	page, info := BuildCursorPageInfo(rows, 2, strconv.Itoa)
	require.Len(t, page, 2)
	assert.True(t, info.HasMore)

	cursor, err := DecodeCursor(info.NextPageToken)
	require.NoError(t, err)
	assert.Equal(t, "20", cursor.ID)

	page, info = BuildCursorPageInfo(rows, 5, strconv.Itoa)
	assert.Len(t, page, 3)
	assert.False(t, info.HasMore)
	assert.Empty(t, info.NextPageToken)
}

func TestDecodeCursorRejectsGarbage(t *testing.T) {
	_, err := DecodeCursor("%%%")
	assert.Error(t, err)
}
