// Package user resolves who is running the CLI.
package user

import (
	"os"
	"os/user"
	"strings"

	"github.com/thenoetrevino/projecthub/internal/models"
)

// GetCurrentUsername returns the current system username.
// It tries user.Current(), then $USER, then "unknown".
func GetCurrentUsername() string {
	currentUser, err := user.Current()
	if err != nil {
		username := os.Getenv("USER")
		if username == "" {
			return "unknown"
		}
		return username
	}
	return currentUser.Username
}

// Caller is the identity local CLI commands act as: the given user ID when
// non-empty, else the system username.
func Caller(as string) models.Caller {
	if id := strings.TrimSpace(as); id != "" {
		return models.Caller{UserID: id, Username: id}
	}
	name := GetCurrentUsername()
	return models.Caller{UserID: name, Username: name}
}
