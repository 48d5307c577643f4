package protocol

const (
	blockDataBits = 6
	blockDataMask = 1<<blockDataBits - 1

	// MaxRuntimeBlockID is the largest block ID that survives packing.
	MaxRuntimeBlockID = 1<<(32-blockDataBits) - 1
)

// EncodeBlockRuntimeID packs a block ID and its data value into one runtime
// ID. data is masked to 0-63; blockID must not exceed MaxRuntimeBlockID.
func EncodeBlockRuntimeID(blockID, data uint32) uint32 {
	return blockID<<blockDataBits | data&blockDataMask
}

// DecodeBlockRuntimeID is the inverse of EncodeBlockRuntimeID.
func DecodeBlockRuntimeID(id uint32) (blockID, data uint32) {
	return id >> blockDataBits, id & blockDataMask
}
