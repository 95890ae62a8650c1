// Package redirectpage runs on the page the provider redirects back to.
// It turns the page location into an envelope and posts it to the
// waiting login attempt.
package redirectpage

import (
	"context"
	"errors"
	"net/url"

	"github.com/kbukum/socialauth/logger"
	"github.com/kbukum/socialauth/redirect"
)

// AnyOrigin lets a post reach an opener of any origin. The envelope
// carries only the provider's public redirect response.
const AnyOrigin = "*"

// ErrOriginMismatch is returned when a post is addressed to another origin.
var ErrOriginMismatch = errors.New("redirectpage: target origin mismatch")

// Poster delivers an envelope to the window that opened the login page.
type Poster interface {
	Post(ctx context.Context, env redirect.Envelope, targetOrigin string) error
}

// PosterFunc adapts a function to Poster.
type PosterFunc func(ctx context.Context, env redirect.Envelope, targetOrigin string) error

// Post calls f.
func (f PosterFunc) Post(ctx context.Context, env redirect.Envelope, targetOrigin string) error {
	return f(ctx, env, targetOrigin)
}

// Handle parses location and posts the resulting envelope to poster.
// An empty targetOrigin means AnyOrigin. Failures are logged at debug
// level and otherwise swallowed: once the post fails there is nothing
// else the page can do. log may be nil.
func Handle(ctx context.Context, location string, poster Poster, targetOrigin string, log *logger.Logger) {
	log = logger.OrNop(log).WithComponent("redirectpage")
	if poster == nil {
		log.Debug("No opener to post to")
		return
	}
	if targetOrigin == "" {
		targetOrigin = AnyOrigin
	}

	env, err := redirect.NewEnvelope(location)
	if err != nil {
		log.Debug("Unparsable redirect location", map[string]interface{}{
			logger.FieldError: err.Error(),
		})
		return
	}
	if err := poster.Post(ctx, env, targetOrigin); err != nil {
		log.Debug("Posting redirect response failed", map[string]interface{}{
			logger.FieldError: err.Error(),
			"target_origin":   targetOrigin,
		})
		return
	}
	log.Debug("Redirect response posted", map[string]interface{}{
		logger.FieldStatus: string(env.Status),
		"target_origin":    targetOrigin,
	})
}

// OriginPoster delivers only posts addressed to its own origin or to
// AnyOrigin.
type OriginPoster struct {
	origin string
	next   Poster
}

// NewOriginPoster wraps next with an origin check. origin is normalized
// to scheme://host[:port].
func NewOriginPoster(origin string, next Poster) *OriginPoster {
	return &OriginPoster{origin: Origin(origin), next: next}
}

// Post forwards env when targetOrigin matches.
func (p *OriginPoster) Post(ctx context.Context, env redirect.Envelope, targetOrigin string) error {
	if targetOrigin != AnyOrigin && Origin(targetOrigin) != p.origin {
		return ErrOriginMismatch
	}
	return p.next.Post(ctx, env, targetOrigin)
}

// Origin returns the scheme://host[:port] part of rawURL, or rawURL
// unchanged when it has no scheme or host.
func Origin(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return rawURL
	}
	return u.Scheme + "://" + u.Host
}
