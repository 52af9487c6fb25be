package actions

import (
	"fmt"

	"github.com/thesecretlab-dev/zkledger/consts"
	"github.com/thesecretlab-dev/zkledger/schema"
)

var _ Program = (*IncrementCounter)(nil)

// IncrementCounter reads the counter stored at the start of the account and
// writes back its successor. The instruction payload is ignored.
type IncrementCounter struct{}

func (*IncrementCounter) GetTypeID() uint8 {
	return consts.CounterID
}

func (*IncrementCounter) Name() string {
	return consts.CounterProgramName
}

func (*IncrementCounter) Execute(enc schema.Encoding, state []byte, _ []byte) ([]byte, error) {
	c, err := enc.DecodeCounter(state)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedState, err)
	}
	return enc.EncodeCounter(c.Next())
}
