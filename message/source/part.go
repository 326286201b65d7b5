package source

import (
	"github.com/zostay/pantomime/message"
)

func init() {
	message.RegisterRFC822Loader(func(p *message.Part) (*message.Message, error) {
		s, err := NewPartSource(p)
		if err != nil {
			return nil, err
		}
		return s.Load()
	})
}

// NewPartSource returns a Stream over the message held in the body of a
// message/rfc822 part. The body is decoded from its transfer encoding and
// read through a window, since it can only be read forward. The nested
// message is read-only.
func NewPartSource(p *message.Part, opts ...Option) (*Stream, error) {
	single := p.Single()
	if single == nil {
		return nil, message.ErrNotSingle
	}

	return NewWindow(single.Body, opts...), nil
}
