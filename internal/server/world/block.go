package world

// Block identifies a block type. The store and the generator work with
// this closed set; raw uint8 values appear only inside the chunk buffers
// and the persistence codec.
type Block uint8

const (
	Air     Block = 0
	Stone   Block = 1
	Grass   Block = 2
	Dirt    Block = 3
	Bedrock Block = 7
)

func (b Block) String() string {
	switch b {
	case Air:
		return "air"
	case Stone:
		return "stone"
	case Grass:
		return "grass"
	case Dirt:
		return "dirt"
	case Bedrock:
		return "bedrock"
	default:
		return "unknown"
	}
}
