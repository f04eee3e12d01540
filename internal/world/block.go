package world

// BlockType identifies the material of a block cell.
type BlockType uint16

const (
	BlockTypeAir BlockType = iota
	BlockTypeGrass
	BlockTypeDirt
	BlockTypeStone
	BlockTypeBedrock
	BlockTypeSand
	BlockTypeGravel
	BlockTypeWood
	BlockTypeSnow
	BlockTypeWater
	BlockTypeLava
	BlockTypeGlass
	BlockTypeMetal

	numBlockTypes
)

// Decorative prop model IDs, outside the block type range so one
// Provider can serve both.
const (
	PropModelTree uint16 = 1000 + iota
	PropModelBush
)

var blockNames = [...]string{
	BlockTypeAir:     "air",
	BlockTypeGrass:   "grass",
	BlockTypeDirt:    "dirt",
	BlockTypeStone:   "stone",
	BlockTypeBedrock: "bedrock",
	BlockTypeSand:    "sand",
	BlockTypeGravel:  "gravel",
	BlockTypeWood:    "wood",
	BlockTypeSnow:    "snow",
	BlockTypeWater:   "water",
	BlockTypeLava:    "lava",
	BlockTypeGlass:   "glass",
	BlockTypeMetal:   "metal",
}

func (t BlockType) String() string {
	if int(t) < len(blockNames) {
		return blockNames[t]
	}
	return "unknown"
}

// Mineable reports whether the player may remove a block of this type.
// Only bedrock resists mining; air is not a block at all.
func (t BlockType) Mineable() bool {
	return t != BlockTypeBedrock && t != BlockTypeAir
}

// BlockTypes returns all placeable block types, for provider
// registration.
func BlockTypes() []BlockType {
	out := make([]BlockType, 0, numBlockTypes-1)
	for t := BlockTypeGrass; t < numBlockTypes; t++ {
		out = append(out, t)
	}
	return out
}
