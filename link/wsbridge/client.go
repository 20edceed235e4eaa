package wsbridge

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net"
	"time"

	"github.com/gobwas/ws"
	"github.com/gobwas/ws/wsutil"

	"rtcfix/link"
)

const driverName = "ws"

// Timeout bounds one request/response exchange so a stalled bridge cannot hold a tick.
var Timeout = link.ExchangeTimeout

type request struct {
	Op     string `json:"op"`
	Offset int    `json:"offset,omitempty"`
	Data   []byte `json:"data,omitempty"`
}

type response struct {
	ResponseBits uint8  `json:"response"`
	ClientBits   uint8  `json:"client"`
	ProbeCount   uint8  `json:"probes"`
	Ack          bool   `json:"ack"`
	Error        string `json:"error,omitempty"`
}

// Client is a link.Port carried over a websocket to a bridge for an emulated or remote peer.
type Client struct {
	urlstr string

	ws      net.Conn
	r       *wsutil.Reader
	w       *wsutil.Writer
	encoder *json.Encoder
}

func Dial(urlstr string) (*Client, error) {
	c := &Client{urlstr: urlstr}
	if err := c.dial(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Client) dial() (err error) {
	log.Printf("wsbridge: dial %s\n", c.urlstr)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	c.ws, _, _, err = ws.Dial(ctx, c.urlstr)
	if err != nil {
		return fmt.Errorf("wsbridge: dial: %w", err)
	}

	c.r = wsutil.NewClientSideReader(c.ws)
	c.w = wsutil.NewWriter(c.ws, ws.StateClientSide, ws.OpText)
	c.encoder = json.NewEncoder(c.w)
	return nil
}

func (c *Client) Close() (err error) {
	if c.ws == nil {
		return nil
	}
	log.Printf("wsbridge: close websocket\n")
	err = c.ws.Close()

	c.ws = nil
	c.r = nil
	c.w = nil
	c.encoder = nil
	return
}

func (c *Client) roundTrip(req request) (rsp response, err error) {
	if c.ws == nil {
		return rsp, &link.TransportError{Driver: driverName, Op: req.Op, Err: net.ErrClosed}
	}

	// a late response would desynchronize the stream, so a timeout ends the session too
	fail := func(err error) (response, error) {
		c.Close()
		return response{}, &link.TransportError{Driver: driverName, Op: req.Op, Err: err}
	}

	if err = c.ws.SetDeadline(time.Now().Add(Timeout)); err != nil {
		return fail(err)
	}

	if err = c.encoder.Encode(req); err != nil {
		return fail(err)
	}
	if err = c.w.Flush(); err != nil {
		return fail(err)
	}

	hdr, err := c.r.NextFrame()
	if err != nil {
		return fail(err)
	}
	if hdr.OpCode == ws.OpClose {
		return fail(io.EOF)
	}

	b, err := io.ReadAll(c.r)
	if err != nil {
		return fail(err)
	}
	if err = json.Unmarshal(b, &rsp); err != nil {
		return fail(fmt.Errorf("decode response: %w", err))
	}
	if rsp.Error != "" {
		return rsp, &link.TransportError{Driver: driverName, Op: req.Op, Err: errors.New(rsp.Error)}
	}
	return rsp, nil
}

func (c *Client) Probe() (link.Probe, error) {
	rsp, err := c.roundTrip(request{Op: "probe"})
	if err != nil {
		return link.Probe{}, err
	}
	return link.Probe{
		ResponseBits: rsp.ResponseBits,
		ClientBits:   rsp.ClientBits,
		ProbeCount:   rsp.ProbeCount,
	}, nil
}

func (c *Client) SendChunk(buf []byte, offset int) (bool, error) {
	rsp, err := c.roundTrip(request{Op: "chunk", Offset: offset, Data: buf})
	if err != nil {
		return false, err
	}
	return rsp.Ack, nil
}

type Driver struct{}

func (d *Driver) DisplayName() string {
	return "Websocket bridge"
}

func (d *Driver) Open(address string) (link.Port, error) {
	c, err := Dial(address)
	if err != nil {
		return nil, err
	}
	return c, nil
}

func init() {
	link.Register(driverName, &Driver{})
}
