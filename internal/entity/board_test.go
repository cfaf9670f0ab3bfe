package entity

import (
	"testing"

	"github.com/rocketscienceinc/tictactoe-solo/internal/apperror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBoard_Apply(t *testing.T) {
	t.Run("Sets only the target cell", func(t *testing.T) {
		// Given: an empty board
		board := Board{}

		// When: player X plays cell 4
		err := board.Apply(4, PlayerX)

		// Then: only cell 4 holds X
		require.NoError(t, err)
		expected := Board{EmptyCell, EmptyCell, EmptyCell, EmptyCell, PlayerX, EmptyCell, EmptyCell, EmptyCell, EmptyCell}
		require.Equal(t, expected, board)
	})

	t.Run("Error on cell already occupied", func(t *testing.T) {
		// Given: a board where cell 0 holds X
		board := Board{PlayerX}

		// When: player O tries the same cell
		err := board.Apply(0, PlayerO)

		// Then: ErrInvalidMove is returned and the board is unchanged
		require.ErrorIs(t, err, apperror.ErrInvalidMove)
		assert.Equal(t, Board{PlayerX}, board)
	})

	t.Run("Error on out of range cells", func(t *testing.T) {
		for _, index := range []int{-1, 9, 20} {
			// Given: an empty board
			board := Board{}

			// When: an out of range index is played
			err := board.Apply(index, PlayerX)

			// Then: ErrInvalidMove is returned and the board stays empty
			require.ErrorIs(t, err, apperror.ErrInvalidMove)
			assert.Equal(t, Board{}, board)
		}
	})

	t.Run("Error on empty mark", func(t *testing.T) {
		board := Board{}

		err := board.Apply(3, EmptyCell)

		require.ErrorIs(t, err, apperror.ErrInvalidMove)
	})
}

func TestBoard_PlaceAndClear(t *testing.T) {
	// Given: a board with a few marks
	board := Board{PlayerX, PlayerO, EmptyCell, EmptyCell, PlayerX}
	before := board

	// When: a tentative mark is placed and cleared
	board.Place(2, PlayerO)
	assert.Equal(t, PlayerO, board[2])
	board.Clear(2)

	// Then: the board is back to its previous contents
	assert.Equal(t, before, board)
}

func TestBoard_IsFull(t *testing.T) {
	full := Board{PlayerX, PlayerO, PlayerX, PlayerO, PlayerX, PlayerO, PlayerO, PlayerX, PlayerO}
	assert.True(t, full.IsFull())

	almost := full
	almost[8] = EmptyCell
	assert.False(t, almost.IsFull())

	empty := Board{}
	assert.False(t, empty.IsFull())
}

func TestBoard_EmptyCells(t *testing.T) {
	board := Board{PlayerX, EmptyCell, PlayerO, EmptyCell, PlayerX, PlayerO, EmptyCell, PlayerX, PlayerO}

	assert.Equal(t, []int{1, 3, 6}, board.EmptyCells())
}

func TestBoard_Reset(t *testing.T) {
	board := Board{PlayerX, PlayerO, PlayerX}

	board.Reset()

	assert.Equal(t, Board{}, board)
	assert.Len(t, board.EmptyCells(), BoardSize)
}

func TestCell_Text(t *testing.T) {
	t.Run("Round trips known marks", func(t *testing.T) {
		for _, cell := range []Cell{EmptyCell, PlayerX, PlayerO} {
			text, err := cell.MarshalText()
			require.NoError(t, err)

			var decoded Cell
			require.NoError(t, decoded.UnmarshalText(text))
			assert.Equal(t, cell, decoded)
		}
	})

	t.Run("Rejects unknown marks", func(t *testing.T) {
		var cell Cell
		require.Error(t, cell.UnmarshalText([]byte("Z")))
	})

	t.Run("Opponent", func(t *testing.T) {
		assert.Equal(t, PlayerO, PlayerX.Opponent())
		assert.Equal(t, PlayerX, PlayerO.Opponent())
		assert.Equal(t, EmptyCell, EmptyCell.Opponent())
	})
}
