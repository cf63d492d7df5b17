// Package memsys models the global memory port of the SIMT core: a
// request/response channel pair over a fixed-latency memory controller.
//
// Requests carry a tag so that responses arriving in any order can be
// matched back to the issuing lane. A tag must not be reused until its
// response has been consumed; callers generate tags with xid so this
// holds by construction.
package memsys

import (
	"encoding/binary"

	"github.com/sarchlab/akita/v4/mem/mem"
)

// Request is one word-sized global memory access.
type Request struct {
	ID      string
	Addr    uint64
	IsWrite bool
	Data    uint32
}

// Response completes one request. Writes are acknowledged with zero
// data; out-of-bounds loads complete with zero data.
type Response struct {
	ID   string
	Data uint32
}

// Controller is a fixed-latency global memory controller backed by an
// akita storage. It accepts at most width new requests per cycle; an
// accept failure means the requester must retry next cycle.
type Controller struct {
	storage *mem.Storage
	size    uint64
	latency int
	width   int

	accepted  int
	inflight  []*txn
	responses []Response

	reads  uint64
	writes uint64
}

type txn struct {
	req       Request
	remaining int
}

// ControllerOption configures a Controller.
type ControllerOption func(*Controller)

// WithWidth sets how many new requests the controller accepts per cycle.
func WithWidth(width int) ControllerOption {
	return func(c *Controller) {
		c.width = width
	}
}

// NewController creates a controller over size bytes of storage with the
// given access latency in cycles.
func NewController(size uint64, latency int, opts ...ControllerOption) *Controller {
	c := &Controller{
		storage: mem.NewStorage(size),
		size:    size,
		latency: latency,
		width:   1,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// TryIssue offers a request to the controller. It reports false when
// the controller is not ready this cycle.
func (c *Controller) TryIssue(req Request) bool {
	if c.accepted >= c.width {
		return false
	}
	c.accepted++

	remaining := c.latency
	if remaining < 1 {
		remaining = 1
	}
	c.inflight = append(c.inflight, &txn{req: req, remaining: remaining})
	return true
}

// Tick advances all in-flight transactions by one cycle and moves
// completed ones to the response queue.
func (c *Controller) Tick() {
	c.accepted = 0

	kept := c.inflight[:0]
	for _, t := range c.inflight {
		t.remaining--
		if t.remaining > 0 {
			kept = append(kept, t)
			continue
		}
		c.complete(t.req)
	}
	c.inflight = kept
}

func (c *Controller) complete(req Request) {
	rsp := Response{ID: req.ID}

	if req.IsWrite {
		c.writes++
		// Out-of-bounds stores are dropped but still acknowledged.
		if req.Addr+4 <= c.size {
			buf := make([]byte, 4)
			binary.LittleEndian.PutUint32(buf, req.Data)
			_ = c.storage.Write(req.Addr, buf)
		}
	} else {
		c.reads++
		// Out-of-bounds loads return a defined zero.
		if req.Addr+4 <= c.size {
			buf, err := c.storage.Read(req.Addr, 4)
			if err == nil {
				rsp.Data = binary.LittleEndian.Uint32(buf)
			}
		}
	}

	c.responses = append(c.responses, rsp)
}

// PopResponse removes and returns the oldest completed response.
func (c *Controller) PopResponse() (Response, bool) {
	if len(c.responses) == 0 {
		return Response{}, false
	}
	rsp := c.responses[0]
	c.responses = c.responses[1:]
	return rsp, true
}

// Pending returns the number of in-flight transactions.
func (c *Controller) Pending() int {
	return len(c.inflight)
}

// Counts returns the number of completed reads and writes.
func (c *Controller) Counts() (reads, writes uint64) {
	return c.reads, c.writes
}

// WriteWord stores a word directly, bypassing timing. Used to set up
// memory contents before a dispatch.
func (c *Controller) WriteWord(addr uint64, value uint32) {
	if addr+4 > c.size {
		return
	}
	buf := make([]byte, 4)
	binary.LittleEndian.PutUint32(buf, value)
	_ = c.storage.Write(addr, buf)
}

// ReadWord loads a word directly, bypassing timing. Used to inspect
// memory after a dispatch completes.
func (c *Controller) ReadWord(addr uint64) uint32 {
	if addr+4 > c.size {
		return 0
	}
	buf, err := c.storage.Read(addr, 4)
	if err != nil {
		return 0
	}
	return binary.LittleEndian.Uint32(buf)
}
