package entity

const (
	HumanMark = PlayerX
	BotMark   = PlayerO

	// StartingMark - opens every round.
	StartingMark = PlayerX
)

type Player struct {
	Mark Cell `json:"mark"`
	Bot  bool `json:"bot,omitempty"`
}

func (that Player) IsBot() bool {
	return that.Bot
}

// PlayersFor - returns who controls each mark in the given mode.
func PlayersFor(mode Mode) []Player {
	return []Player{
		{Mark: PlayerX},
		{Mark: PlayerO, Bot: mode == ModePvC},
	}
}
