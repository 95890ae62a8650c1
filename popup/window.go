package popup

import (
	"context"

	"github.com/kbukum/socialauth/redirect"
)

// Features are the window features requested for a login window.
const Features = "titlebar=0,toolbar=0,status=0,menubar=0,resizable=0,height=700,width=1200"

// Window is an open login window.
type Window interface {
	// Closed reports whether the window is gone.
	Closed() bool
	// Close closes the window. Closing twice is harmless.
	Close() error
}

// Opener creates login windows.
type Opener interface {
	Open(ctx context.Context, url, features string) (Window, error)
}

// MessageSource delivers envelopes posted back by login windows.
type MessageSource interface {
	// Subscribe returns a channel of envelopes and a function that
	// releases the subscription and closes the channel.
	Subscribe() (<-chan redirect.Envelope, func())
}
