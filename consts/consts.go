package consts

import "github.com/ava-labs/avalanchego/ids"

const (
	Name    = "zkledger"
	Version = "v0.1.0"

	Uint16Len = 2
	Uint32Len = 4
)

var (
	ID ids.ID

	// CounterProgramID and RecordStoreProgramID are the program ids registered
	// by the default genesis.
	CounterProgramID     ids.ID
	RecordStoreProgramID ids.ID
)

func init() {
	ID = padID(Name)
	CounterProgramID = padID(Name + "/" + CounterProgramName)
	RecordStoreProgramID = padID(Name + "/" + RecordStoreProgramName)
}

func padID(s string) ids.ID {
	var id ids.ID
	copy(id[:], s)
	return id
}
