package notify

import (
	"context"

	"github.com/gen2brain/beeep"
)

// Desktop shows notifications through the operating system's notification area.
type Desktop struct {
	show func(n Notification) error
}

func NewDesktop() *Desktop {
	return &Desktop{show: showDesktop}
}

func (d *Desktop) Name() string {
	return "desktop"
}

// Send plays the default sound once when n.Sound is set. It returns when ctx
// is done even if the platform call has not.
func (d *Desktop) Send(ctx context.Context, n Notification) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	done := make(chan error, 1)
	go func() {
		done <- d.show(n)
	}()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func showDesktop(n Notification) error {
	if n.Sound {
		return beeep.Alert(n.Title, n.Body, n.Icon)
	}
	return beeep.Notify(n.Title, n.Body, n.Icon)
}
