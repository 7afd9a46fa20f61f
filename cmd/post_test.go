package cmd

import (
	"errors"
	"testing"

	"instavibe/shared"

	"github.com/stretchr/testify/assert"
)

func TestNotifyPostedUsesSubmittedUsername(t *testing.T) {
	var titles, messages []string
	notify := func(title, message string) error {
		titles = append(titles, title)
		messages = append(messages, message)
		return nil
	}

	onSuccess := notifyPosted("  alice ", notify)
	onSuccess(&shared.CreatePostResponse{Success: true})
	onSuccess(&shared.CreatePostResponse{Success: true, Post: shared.Post{Username: "someone_else"}})

	assert.Equal(t, []string{"instavibe", "instavibe"}, titles)
	assert.Equal(t, []string{"Your post by alice is live", "Your post by alice is live"}, messages)
}

func TestNotifyPostedIgnoresNotifierErrors(t *testing.T) {
	onSuccess := notifyPosted("alice", func(string, string) error { return errors.New("no dbus") })
	assert.NotPanics(t, func() { onSuccess(&shared.CreatePostResponse{Success: true}) })
}
