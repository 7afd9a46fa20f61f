package feedtui

import (
	"context"
	"fmt"
	"log"

	"instavibe/camera"
	"instavibe/lib"
	"instavibe/types"

	tea "github.com/charmbracelet/bubbletea"
)

type Options struct {
	Client  types.ApiClient
	Device  camera.Device
	Quality float64
	Variant lib.ComposerVariant
	Aliases lib.UsernameAliases
}

// StartFeedUI runs the interactive feed until the user quits. The camera is always
// released on the way out, whichever way the program ends.
func StartFeedUI(ctx context.Context, opts Options) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	trigger := lib.NewRefreshTrigger()
	feed := lib.NewFeed(opts.Client, opts.Aliases)
	defer feed.Close()

	capture := camera.NewCapture(opts.Device)
	defer capture.Close()

	composer := lib.NewComposer(opts.Client, lib.ComposerOptions{
		Variant: opts.Variant,
		Quality: opts.Quality,
		Trigger: trigger,
	})
	composer.AttachCapture(capture)

	go feed.Watch(ctx, trigger)

	initial := initialModel(ctx, feed, composer, capture)
	ui := tea.NewProgram(initial, tea.WithAltScreen(), tea.WithMouseCellMotion(), tea.WithContext(ctx))

	m, err := ui.Run()
	if err != nil {
		return fmt.Errorf("error running feed UI: %v", err)
	}

	if mod, ok := m.(*feedUIModel); ok {
		mod.cleanup()
		if mod.status != "" {
			log.Printf("feed UI exited with status: %s", mod.status)
		}
	}

	return nil
}
