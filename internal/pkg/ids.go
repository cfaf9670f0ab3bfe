package pkg

import "github.com/google/uuid"

// GenerateSessionID - generates a unique identifier for a game session.
func GenerateSessionID() string {
	return uuid.NewString()
}

func IsSessionID(value string) bool {
	_, err := uuid.Parse(value)
	return err == nil
}
