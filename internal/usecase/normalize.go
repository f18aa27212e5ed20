package usecase

import (
	"context"
	"log/slog"
	"regexp"
	"strings"

	"sourcehound/internal/domain"
)

// postLinkRe matches t.me post links (optional scheme and www prefix),
// capturing the channel name and the numeric post ID.
var postLinkRe = regexp.MustCompile(`^(?:https?://)?(?:www\.)?t\.me/([A-Za-z0-9_]+)/(\d+)/?$`)

// Normalizer turns heterogeneous user input (text, caption, post link) into
// a non-empty query string.
type Normalizer struct {
	fetcher domain.PostFetcher // optional, may be nil
	logger  *slog.Logger
}

// NewNormalizer creates a Normalizer. fetcher may be nil when the transport
// cannot resolve post links at all.
func NewNormalizer(fetcher domain.PostFetcher, logger *slog.Logger) *Normalizer {
	return &Normalizer{fetcher: fetcher, logger: logger}
}

// Normalize derives the query string from raw text, falling back to the
// caption when the text is empty. Returns domain.ErrEmptyInput when both are
// blank after trimming.
//
// When the input is a recognized post link, content extraction is attempted
// through the fetcher; any failure there (including "unsupported") silently
// falls back to the link text itself. That path is never an error.
func (n *Normalizer) Normalize(ctx context.Context, rawText, caption string) (string, error) {
	text := strings.TrimSpace(rawText)
	if text == "" {
		text = strings.TrimSpace(caption)
	}
	if text == "" {
		return "", domain.NewDomainError("Normalizer.Normalize", domain.ErrEmptyInput, "")
	}

	if m := postLinkRe.FindStringSubmatch(text); m != nil && n.fetcher != nil {
		content, err := n.fetcher.FetchPost(ctx, m[1], m[2])
		if err != nil {
			n.logger.Debug("post content extraction failed, using link text",
				"channel", m[1], "post_id", m[2], "error", err)
		} else if trimmed := strings.TrimSpace(content); trimmed != "" {
			return trimmed, nil
		}
	}

	return text, nil
}
