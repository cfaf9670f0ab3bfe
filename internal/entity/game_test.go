package entity

import (
	"encoding/json"
	"testing"

	"github.com/rocketscienceinc/tictactoe-solo/internal/apperror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMode(t *testing.T) {
	t.Run("Known modes", func(t *testing.T) {
		mode, err := ParseMode("pvc")
		require.NoError(t, err)
		assert.Equal(t, ModePvC, mode)

		mode, err = ParseMode("pvp")
		require.NoError(t, err)
		assert.Equal(t, ModePvP, mode)
	})

	t.Run("Unknown mode", func(t *testing.T) {
		_, err := ParseMode("online")

		require.ErrorIs(t, err, apperror.ErrUnknownMode)
	})
}

func TestParseDifficulty(t *testing.T) {
	for _, value := range []string{"easy", "medium", "hard"} {
		difficulty, err := ParseDifficulty(value)
		require.NoError(t, err)
		assert.Equal(t, Difficulty(value), difficulty)
	}

	_, err := ParseDifficulty("impossible")
	require.ErrorIs(t, err, apperror.ErrUnknownDifficulty)
}

func TestScore_Record(t *testing.T) {
	// Given: an empty score
	score := Score{}
	line := Line{0, 1, 2}

	// When: recording several outcomes
	score.Record(Status{State: StatusWon, Winner: PlayerX, Line: &line})
	score.Record(Status{State: StatusWon, Winner: PlayerX, Line: &line})
	score.Record(Status{State: StatusWon, Winner: PlayerO, Line: &line})
	score.Record(Status{State: StatusDrawn})
	score.Record(Status{State: StatusInProgress})

	// Then: each bucket is counted
	assert.Equal(t, Score{X: 2, O: 1, Tie: 1}, score)

	// When: the score is reset
	score.Reset()

	// Then: all buckets are zero
	assert.Equal(t, Score{}, score)
}

func TestPlayersFor(t *testing.T) {
	assert.Equal(t, []Player{{Mark: PlayerX}, {Mark: PlayerO}}, PlayersFor(ModePvP))

	players := PlayersFor(ModePvC)
	assert.False(t, players[0].IsBot())
	assert.True(t, players[1].IsBot())
	assert.Equal(t, BotMark, players[1].Mark)
}

func TestSnapshot_JSON(t *testing.T) {
	// Given: a snapshot of a finished round
	line := Line{0, 4, 8}
	snapshot := Snapshot{
		SessionID:  "123",
		Board:      Board{PlayerX, PlayerO, EmptyCell, EmptyCell, PlayerX, PlayerO, EmptyCell, EmptyCell, PlayerX},
		Turn:       PlayerX,
		Mode:       ModePvC,
		Difficulty: DifficultyHard,
		Score:      Score{X: 1},
		Status:     Status{State: StatusWon, Winner: PlayerX, Line: &line},
		Players:    PlayersFor(ModePvC),
		Message:    "Player X Wins!",
	}

	// When: encoding it
	data, err := json.Marshal(snapshot)
	require.NoError(t, err)

	// Then: the board is encoded as marks
	assert.Contains(t, string(data), `"board":["X","O","","","X","O","","","X"]`)
	assert.Contains(t, string(data), `"line":[0,4,8]`)

	// Then: decoding gives back the same snapshot
	var decoded Snapshot
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, snapshot, decoded)
}
