package utils

import (
	"strings"

	"github.com/google/uuid"
)

// GenerateMatchID creates a short, human-readable match ID:
// {mapName}-{8charHexUUID}, e.g. "fighting-spirit-a3f8e2b1".
// Spaces in the map name become hyphens and the name is lowercased.
func GenerateMatchID(mapName string) string {
	name := strings.ToLower(strings.Join(strings.Fields(mapName), "-"))
	if name == "" {
		name = "match"
	}
	return name + "-" + generateShortUUID()
}

func generateShortUUID() string {
	return strings.ReplaceAll(uuid.New().String(), "-", "")[:8]
}
