package monitor

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWalkBlockRangeAdvancesThroughAllBatches(t *testing.T) {
	var batches [][2]int64
	cursor, err := walkBlockRange(0, 1499, 500, 0, func(from, to int64) error {
		batches = append(batches, [2]int64{from, to})
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, int64(1500), cursor)
	assert.Equal(t, [][2]int64{{0, 499}, {500, 999}, {1000, 1499}}, batches)
}

func TestWalkBlockRangeStopsCursorAtFailedBatch(t *testing.T) {
	var batches [][2]int64
	cursor, err := walkBlockRange(0, 1499, 500, 0, func(from, to int64) error {
		batches = append(batches, [2]int64{from, to})
		if from == 500 {
			return errors.New("node unavailable")
		}
		return nil
	})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "blocks 500-999")

	// 游标停在失败批次之前，后续区间不被越过
	assert.Equal(t, int64(500), cursor)
	assert.Equal(t, [][2]int64{{0, 499}, {500, 999}}, batches)

	// 下一轮从失败处重试
	retried := false
	cursor, err = walkBlockRange(cursor, 1499, 500, 0, func(from, to int64) error {
		if from == 500 {
			retried = true
		}
		return nil
	})
	require.NoError(t, err)
	assert.True(t, retried)
	assert.Equal(t, int64(1500), cursor)
}

func TestWalkBlockRangeClampsFinalBatch(t *testing.T) {
	var batches [][2]int64
	cursor, err := walkBlockRange(100, 350, 200, 0, func(from, to int64) error {
		batches = append(batches, [2]int64{from, to})
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, int64(351), cursor)
	assert.Equal(t, [][2]int64{{100, 299}, {300, 350}}, batches)
}
