package jpeg

// componentCache is one component's strip of coefficient blocks, indexed
// row-major by (block_x, block_y), per spec §3 "Block cache (allocator)".
// Allocated per component (spec §9 "allocate per-component strips to
// avoid one giant allocation") rather than as a single frame-wide slab.
type componentCache struct {
	blocksWide, blocksHigh int
	blocks                 []Block
}

// blockCache materializes every coefficient block of a frame, used by
// progressive decode (where later scans refine blocks a first scan
// already wrote) and by the optimizer (which round-trips the coefficient
// stream without dequantizing). Scoped to one frame's lifetime (spec §5
// "the block cache... is released when decoding finishes").
type blockCache struct {
	components []componentCache
}

// newBlockCache allocates a cache sized per spec §9: for each component,
// ceil(W*H_i/(8*Hmax)) * ceil(H*V_i/(8*Vmax)) blocks.
func newBlockCache(frame *FrameHeader) *blockCache {
	c := &blockCache{components: make([]componentCache, len(frame.Components))}
	for i := range frame.Components {
		bw, bh := frame.ComponentBlockDims(&frame.Components[i])
		c.components[i] = componentCache{
			blocksWide: bw, blocksHigh: bh,
			blocks: make([]Block, bw*bh),
		}
	}
	return c
}

// Get returns a pointer to the cached block at (block_x, block_y) for the
// given frame component index, for in-place mutation across scans.
func (c *blockCache) Get(componentIndex, bx, by int) *Block {
	cc := &c.components[componentIndex]
	return &cc.blocks[by*cc.blocksWide+bx]
}

// Dims reports a component's block-grid dimensions.
func (c *blockCache) Dims(componentIndex int) (blocksWide, blocksHigh int) {
	cc := &c.components[componentIndex]
	return cc.blocksWide, cc.blocksHigh
}
