package discord

import (
	"errors"

	"github.com/bwmarrin/discordgo"
)

// restStatus returns the HTTP status of a discordgo REST error, or 0.
func restStatus(err error) int {
	var restErr *discordgo.RESTError
	if !errors.As(err, &restErr) || restErr.Response == nil {
		return 0
	}
	return restErr.Response.StatusCode
}

// restCode returns the Discord JSON error code of a REST error, or 0.
func restCode(err error) int {
	var restErr *discordgo.RESTError
	if !errors.As(err, &restErr) || restErr.Message == nil {
		return 0
	}
	return restErr.Message.Code
}
