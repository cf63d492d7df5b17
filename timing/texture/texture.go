// Package texture models the texture sampler of the core: bound RGBA
// images in texture memory, a small read-only texel cache, and the
// latency of walking a sample's footprint through that cache.
//
// The sampling math is shared with the functional sampler so that a
// timed sample and a reference sample of the same coordinates produce
// the same packed color bit for bit.
package texture

import (
	"encoding/binary"

	"github.com/sarchlab/akita/v4/mem/mem"

	"github.com/sarchlab/milosim/emu"
)

// NumSlots is the number of texture bind points.
const NumSlots = 8

// Request asks for one filtered sample from a bound texture.
type Request struct {
	ID   string
	Slot int
	U, V float32
}

// Response carries the packed RGBA8888 sample back to the requester.
type Response struct {
	ID    string
	Color uint32
}

type boundTexture struct {
	storage *mem.Storage
	width   int
	height  int
	wrapS   bool
	wrapT   bool
	filter  bool
}

// Unit is the texture sampler. It serves one sample at a time; a
// sample's latency is the cache hit latency plus one fill per missed
// line in its footprint.
type Unit struct {
	textures [NumSlots]*boundTexture
	cache    *texCache

	inflight  *Request
	result    uint32
	remaining int
	responses []Response

	samples uint64
}

// UnitOption configures a Unit.
type UnitOption func(*Unit)

// WithCacheConfig overrides the texel cache configuration.
func WithCacheConfig(config CacheConfig) UnitOption {
	return func(u *Unit) {
		u.cache = newTexCache(config, u.fillLine)
	}
}

// NewUnit creates a texture unit with no textures bound.
func NewUnit(opts ...UnitOption) *Unit {
	u := &Unit{}
	u.cache = newTexCache(DefaultCacheConfig(), u.fillLine)
	for _, opt := range opts {
		opt(u)
	}
	return u
}

// Bind copies a texture's pixels into texture memory at the given slot
// and invalidates the cache. A nil texture unbinds the slot.
func (u *Unit) Bind(slot int, t *emu.Texture) {
	if slot < 0 || slot >= NumSlots {
		return
	}
	if t == nil || len(t.Pixels) == 0 {
		u.textures[slot] = nil
		u.cache.Reset()
		return
	}

	storage := mem.NewStorage(uint64(len(t.Pixels)) * 4)
	buf := make([]byte, 4)
	for i, p := range t.Pixels {
		binary.LittleEndian.PutUint32(buf, p)
		_ = storage.Write(uint64(i)*4, buf)
	}

	u.textures[slot] = &boundTexture{
		storage: storage,
		width:   t.Width,
		height:  t.Height,
		wrapS:   t.WrapS,
		wrapT:   t.WrapT,
		filter:  t.Filter,
	}
	u.cache.Reset()
}

// TryIssue offers a sample request. It reports false while another
// sample is in flight.
func (u *Unit) TryIssue(req Request) bool {
	if u.inflight != nil {
		return false
	}
	u.samples++

	r := req
	u.inflight = &r
	u.result, u.remaining = u.sample(req)
	return true
}

// Texture addresses carry the slot in the high bits so that lines from
// different textures never alias in the cache.
func texelAddr(slot int, tex *boundTexture, x, y int) uint64 {
	offset := uint64(y*tex.width+x) * 4
	return uint64(slot)<<32 | offset
}

func (u *Unit) fillLine(blockAddr uint64, buf []byte) {
	slot := int(blockAddr >> 32)
	offset := blockAddr & 0xFFFFFFFF

	for i := range buf {
		buf[i] = 0
	}
	tex := u.textures[slot]
	if tex == nil {
		return
	}

	data, err := tex.storage.Read(offset, uint64(len(buf)))
	if err != nil {
		// The line straddles the end of the image. Fill what exists.
		size := uint64(tex.width*tex.height) * 4
		if offset < size {
			data, err = tex.storage.Read(offset, size-offset)
		}
		if err != nil {
			return
		}
	}
	copy(buf, data)
}

func (u *Unit) sample(req Request) (color uint32, latency int) {
	latency = u.cache.config.HitLatency

	if req.Slot < 0 || req.Slot >= NumSlots || u.textures[req.Slot] == nil {
		return emu.MissingTextureColor, latency
	}
	tex := u.textures[req.Slot]

	fp := emu.Footprint(tex.width, tex.height, tex.wrapS, tex.wrapT, tex.filter, req.U, req.V)

	var texels [4]uint32
	seen := map[uint64]bool{}
	for i := 0; i < fp.Count; i++ {
		addr := texelAddr(req.Slot, tex, fp.X[i], fp.Y[i])
		word, hit := u.cache.ReadWord(addr)
		texels[i] = word

		// Bilinear footprints often touch one line twice. The second
		// touch of the same texel in one sample is free.
		if !hit && !seen[addr] {
			latency += u.cache.config.FillLatency
		}
		seen[addr] = true
	}

	return emu.FilterTexels(fp, texels), latency
}

// Tick advances the in-flight sample by one cycle.
func (u *Unit) Tick() {
	if u.inflight == nil {
		return
	}
	u.remaining--
	if u.remaining > 0 {
		return
	}
	u.responses = append(u.responses, Response{ID: u.inflight.ID, Color: u.result})
	u.inflight = nil
}

// PopResponse removes and returns the oldest completed sample.
func (u *Unit) PopResponse() (Response, bool) {
	if len(u.responses) == 0 {
		return Response{}, false
	}
	rsp := u.responses[0]
	u.responses = u.responses[1:]
	return rsp, true
}

// Busy reports whether a sample is in flight.
func (u *Unit) Busy() bool {
	return u.inflight != nil
}

// Stats returns the sample, cache hit, and cache miss counts.
func (u *Unit) Stats() (samples, hits, misses uint64) {
	return u.samples, u.cache.hits, u.cache.misses
}
