package walk

import (
	"errors"

	"github.com/zostay/pantomime/message"
)

// ErrSkip may be returned by a Processor to keep the walk from descending
// into the sub-parts of the part just processed. It is never returned from
// AndProcess.
var ErrSkip = errors.New("skip part")

// Processor is a callback that can be passed to the AndProcess() function to
// do any kind of generic processing of a message and its sub-parts.
//
// The Processor is given a part and the ancestry of the part. If len(parents)
// is zero, then this is the top-level part (i.e., the part AndProcess() was
// called upon, which might not be the root of the message).
//
// The Processor may return an error to cause AndProcess() to terminate
// immediately and return that error.
type Processor func(part *message.Part, parents []*message.Part) error

// AndProcess walks the part tree depth first and calls the Processor for each
// part found. Sub-parts are read from the source as the walk reaches them.
func AndProcess(processor Processor, part *message.Part) error {
	parents := make([]*message.Part, 0, 10)
	return andProcess(processor, part, parents)
}

func andProcess(
	processor Processor,
	part *message.Part,
	parents []*message.Part,
) error {
	err := processor(part, parents)
	if errors.Is(err, ErrSkip) {
		return nil
	} else if err != nil {
		return err
	}

	if !part.IsMultipart() {
		return nil
	}

	subs, err := part.Multi().SubParts()
	if err != nil {
		return err
	}

	parents = append(parents, part)
	for _, sub := range subs {
		if err := andProcess(processor, sub, parents); err != nil {
			return err
		}
	}

	return nil
}

// AndProcessSingle is like AndProcess, but only calls the Processor for the
// leaf parts.
func AndProcessSingle(processor Processor, part *message.Part) error {
	return AndProcess(
		func(part *message.Part, parents []*message.Part) error {
			if part.IsMultipart() {
				return nil
			}
			return processor(part, parents)
		}, part)
}

// AndProcessMulti is like AndProcess, but only calls the Processor for the
// multipart parts.
func AndProcessMulti(processor Processor, part *message.Part) error {
	return AndProcess(
		func(part *message.Part, parents []*message.Part) error {
			if !part.IsMultipart() {
				return nil
			}
			return processor(part, parents)
		}, part)
}
