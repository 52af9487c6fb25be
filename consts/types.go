package consts

const (
	// Program TypeIDs
	CounterID     uint8 = 0
	RecordStoreID uint8 = 1
)

const (
	CounterProgramName     = "counter"
	RecordStoreProgramName = "record"
)
