package utils

import (
	"strings"

	"github.com/google/uuid"
	gonanoid "github.com/matoous/go-nanoid"
)

const idAlphabet = "0123456789abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"

// RandText returns a random alphanumeric string of length n.
func RandText(n int) string {
	id, err := gonanoid.Generate(idAlphabet, n)
	if err == nil {
		return id
	}
	fallback := strings.ReplaceAll(uuid.NewString(), "-", "")
	for len(fallback) < n {
		fallback += strings.ReplaceAll(uuid.NewString(), "-", "")
	}
	return fallback[:n]
}
