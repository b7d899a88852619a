package utils

import (
	"log"

	"github.com/google/uuid"
)

// GenerateID returns a new random document ID.
func GenerateID() string {
	id, err := uuid.NewRandom()
	if err != nil {
		log.Printf("Warning: falling back to time-based UUID: %v", err)
		return uuid.Must(uuid.NewUUID()).String()
	}
	return id.String()
}

// ValidID reports whether s parses as a UUID.
func ValidID(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}
