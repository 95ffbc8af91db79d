package media

import (
	"errors"
	"fmt"

	"github.com/atotto/clipboard"
	"github.com/pders01/pixwall/internal/provider"
	"github.com/pders01/pixwall/internal/validation"
)

// MsgLinkCopied is shown after a link lands on the clipboard.
const MsgLinkCopied = "Link Copied to Clipboard"

var ErrClipboardUnavailable = errors.New("clipboard is not available")

// Sharer copies image links to the system clipboard.
type Sharer struct {
	write     func(string) error
	validator *validation.URLValidator
}

func NewSharer() *Sharer {
	return &Sharer{
		write: func(s string) error {
			if clipboard.Unsupported {
				return ErrClipboardUnavailable
			}
			return clipboard.WriteAll(s)
		},
		validator: validation.NewPermissiveURLValidator(),
	}
}

// Share copies the link for rec and returns it.
func (s *Sharer) Share(rec provider.ImageRecord) (string, error) {
	link := SourceURL(rec)
	if link == "" {
		link = rec.PageURL
	}
	if _, err := s.validator.Validate(link); err != nil {
		return "", fmt.Errorf("invalid image link: %w", err)
	}
	if err := s.write(link); err != nil {
		return "", fmt.Errorf("copying link: %w", err)
	}
	return link, nil
}
