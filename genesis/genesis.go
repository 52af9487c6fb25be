package genesis

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/ava-labs/avalanchego/ids"
	"github.com/ava-labs/avalanchego/utils/formatting"

	"github.com/thesecretlab-dev/zkledger/actions"
	"github.com/thesecretlab-dev/zkledger/consts"
	"github.com/thesecretlab-dev/zkledger/storage"
)

var (
	ErrDuplicateProgram = errors.New("duplicate program id")
	ErrDuplicateAccount = errors.New("duplicate account address")
	ErrDataTooLarge     = errors.New("account data exceeds capacity")
	ErrInvalidData      = errors.New("invalid account data")
)

// Program binds a handler kind to a program id.
type Program struct {
	ID   ids.ID `json:"id"`
	Kind string `json:"kind"`

	// EnforceOwnership overrides the kind's default when set.
	EnforceOwnership *bool `json:"enforceOwnership,omitempty"`
}

// Account is allocated at startup. Data is 0x-prefixed hex and is written at
// the start of an otherwise zeroed buffer.
type Account struct {
	Address  ids.ID `json:"address"`
	Owner    ids.ID `json:"owner"`
	Capacity int    `json:"capacity"`
	Data     string `json:"data,omitempty"`
}

func (a *Account) Bytes() ([]byte, error) {
	if a.Data == "" {
		return nil, nil
	}
	b, err := formatting.Decode(formatting.HexNC, a.Data)
	if err != nil {
		return nil, fmt.Errorf("%w: account %s: %w", ErrInvalidData, a.Address, err)
	}
	return b, nil
}

type Genesis struct {
	Programs []*Program `json:"programs"`
	Accounts []*Account `json:"accounts,omitempty"`
}

// Default registers the counter and record store under their well-known ids
// with no accounts.
func Default() *Genesis {
	return &Genesis{
		Programs: []*Program{
			{ID: consts.CounterProgramID, Kind: consts.CounterProgramName},
			{ID: consts.RecordStoreProgramID, Kind: consts.RecordStoreProgramName},
		},
	}
}

func Parse(b []byte) (*Genesis, error) {
	g := new(Genesis)
	if err := json.Unmarshal(b, g); err != nil {
		return nil, fmt.Errorf("failed to unmarshal genesis: %w", err)
	}
	if err := g.Validate(); err != nil {
		return nil, err
	}
	return g, nil
}

func Load(path string) (*Genesis, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(b)
}

func (g *Genesis) Validate() error {
	programs := make(map[ids.ID]struct{}, len(g.Programs))
	for _, p := range g.Programs {
		if p == nil {
			return errors.New("nil program entry")
		}
		if _, ok := programs[p.ID]; ok {
			return fmt.Errorf("%w: %s", ErrDuplicateProgram, p.ID)
		}
		programs[p.ID] = struct{}{}
		if _, err := actions.ProgramByName(p.Kind); err != nil {
			return err
		}
	}

	accounts := make(map[ids.ID]struct{}, len(g.Accounts))
	for _, a := range g.Accounts {
		if a == nil {
			return errors.New("nil account entry")
		}
		if _, ok := accounts[a.Address]; ok {
			return fmt.Errorf("%w: %s", ErrDuplicateAccount, a.Address)
		}
		accounts[a.Address] = struct{}{}
		if a.Capacity <= 0 || a.Capacity > storage.MaxAccountCapacity {
			return fmt.Errorf("%w: account %s capacity %d", storage.ErrInvalidCapacity, a.Address, a.Capacity)
		}
		data, err := a.Bytes()
		if err != nil {
			return err
		}
		if len(data) > a.Capacity {
			return fmt.Errorf("%w: account %s has %d bytes, capacity %d", ErrDataTooLarge, a.Address, len(data), a.Capacity)
		}
	}
	return nil
}

func (g *Genesis) Marshal() ([]byte, error) {
	return json.MarshalIndent(g, "", "  ")
}
