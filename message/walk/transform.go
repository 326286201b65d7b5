package walk

import (
	"errors"
	"fmt"

	"github.com/zostay/pantomime/message"
)

// ErrTopLevel is the cause of the BadTransformationError returned when a
// Transformer asks to drop the part AndTransform() was called upon.
var ErrTopLevel = errors.New("top-level part cannot be dropped")

// BadTransformationError is used when transformation needs to fail with an
// error.
type BadTransformationError struct {
	Cause   error
	Message string
}

// Error returns the error message describing the bad transformation.
func (b *BadTransformationError) Error() string {
	return fmt.Sprintf("%s: %v", b.Message, b.Cause)
}

// Unwrap returns the error that caused the bad transformation.
func (b *BadTransformationError) Unwrap() error {
	return b.Cause
}

// Transformer is a callback that can be passed to the AndTransform() function
// to change a message and its sub-parts in place.
//
// The Transformer is given the part and its ancestry, as with Processor. It
// may edit the part through its overlay methods. Returning ErrSkip drops the
// part from its parent. Any other error ends the transformation.
type Transformer func(part *message.Part, parents []*message.Part) error

// AndTransform walks the tree depth first, parents before children, and lets
// the Transformer edit or drop each part. Changes only touch the in-memory
// overlay, so the source stays as it was until the message is saved. A
// multipart left with no sub-parts by the transformation is dropped as well.
func AndTransform(transformer Transformer, part *message.Part) error {
	err := andTransform(transformer, part, make([]*message.Part, 0, 10))
	if errors.Is(err, ErrSkip) {
		return &BadTransformationError{ErrTopLevel, "Transformer error"}
	}
	return err
}

func andTransform(
	transformer Transformer,
	part *message.Part,
	parents []*message.Part,
) error {
	if err := transformer(part, parents); err != nil {
		return err
	}

	if !part.IsMultipart() {
		return nil
	}

	m := part.Multi()
	subs, err := m.SubParts()
	if err != nil {
		return err
	}

	if len(subs) == 0 {
		return nil
	}

	parents = append(parents, part)
	dropped := 0
	for i, sub := range subs {
		err := andTransform(transformer, sub, parents)
		if errors.Is(err, ErrSkip) {
			if err := m.RemoveSubPart(i - dropped); err != nil {
				return err
			}
			dropped++
			continue
		} else if err != nil {
			return err
		}
	}

	if dropped == len(subs) {
		return ErrSkip
	}

	return nil
}
