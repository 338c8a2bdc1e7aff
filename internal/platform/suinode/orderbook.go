package suinode

import (
	"context"
	"encoding/base64"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"

	"github.com/nereuslabs/nereusd/internal/domain"
)

// optionNone is the gateway's encoding for an absent Move Option argument;
// present values are passed plain.
const optionNone = "none"

// GetBids returns resting bid orders for a market, best first, via the
// get_bids view function. side filters to one outcome token when non-nil.
// cursor continues a previous page; the returned cursor is nil on the last
// page.
func (c *Client) GetBids(ctx context.Context, marketID string, side *domain.TokenSide, cursor []byte, limit int) ([]domain.BookOrder, []byte, error) {
	return c.fetchOrders(ctx, "get_bids", marketID, side, cursor, limit)
}

// GetAsks returns resting ask orders for a market, best first, via the
// get_asks view function. Parameters behave as in GetBids.
func (c *Client) GetAsks(ctx context.Context, marketID string, side *domain.TokenSide, cursor []byte, limit int) ([]domain.BookOrder, []byte, error) {
	return c.fetchOrders(ctx, "get_asks", marketID, side, cursor, limit)
}

func (c *Client) fetchOrders(ctx context.Context, fn, marketID string, side *domain.TokenSide, cursor []byte, limit int) ([]domain.BookOrder, []byte, error) {
	sideArg := optionNone
	if side != nil {
		sideArg = strconv.Itoa(int(*side))
	}
	cursorArg := optionNone
	if len(cursor) > 0 {
		cursorArg = base64.StdEncoding.EncodeToString(cursor)
	}

	req := inspectRequest{
		Sender:    inspectSender,
		Target:    c.marketPackage + "::market::" + fn,
		Arguments: []string{marketID, sideArg, cursorArg, strconv.Itoa(limit)},
	}

	resp, err := c.doInspect(ctx, req)
	if err != nil {
		return nil, nil, fmt.Errorf("suinode: %s %s: %w", fn, marketID, err)
	}

	// The view returns (vector<Order>, Option<vector<u8>>).
	if len(resp.Results) == 0 || len(resp.Results[0].ReturnValues) < 2 {
		return nil, nil, fmt.Errorf("suinode: %s %s: expected 2 return values: %w", fn, marketID, domain.ErrNotFound)
	}
	rvs := resp.Results[0].ReturnValues

	if !strings.HasPrefix(rvs[0][1], "vector<") {
		return nil, nil, fmt.Errorf("suinode: %s %s: unexpected return type %q", fn, marketID, rvs[0][1])
	}

	orders, err := decodeOrders(rvs[0][0])
	if err != nil {
		return nil, nil, fmt.Errorf("suinode: %s %s: %w", fn, marketID, err)
	}
	next, err := decodeOptionBytes(rvs[1][0])
	if err != nil {
		return nil, nil, fmt.Errorf("suinode: %s %s: cursor: %w", fn, marketID, err)
	}

	return orders, next, nil
}

// decodeOrders parses a base64 BCS vector<Order>: a ULEB128 count followed by
// fixed-size Order records.
func decodeOrders(b64 string) ([]domain.BookOrder, error) {
	raw, err := base64.StdEncoding.DecodeString(b64)
	if err != nil {
		return nil, fmt.Errorf("decode orders: %w", err)
	}

	r := &bcsReader{buf: raw}
	n, err := r.uleb128()
	if err != nil {
		return nil, fmt.Errorf("orders length: %w", err)
	}

	orders := make([]domain.BookOrder, 0, n)
	for i := uint64(0); i < n; i++ {
		o, err := r.order()
		if err != nil {
			return nil, fmt.Errorf("order %d: %w", i, err)
		}
		orders = append(orders, o)
	}
	if r.remaining() != 0 {
		return nil, fmt.Errorf("orders: %d trailing bytes", r.remaining())
	}
	return orders, nil
}

// decodeOptionBytes parses a base64 BCS Option<vector<u8>>: a presence tag
// byte, then a ULEB128 length and the bytes.
func decodeOptionBytes(b64 string) ([]byte, error) {
	raw, err := base64.StdEncoding.DecodeString(b64)
	if err != nil {
		return nil, fmt.Errorf("decode option: %w", err)
	}

	r := &bcsReader{buf: raw}
	tag, err := r.u8()
	if err != nil {
		return nil, err
	}
	switch tag {
	case 0:
		return nil, nil
	case 1:
		n, err := r.uleb128()
		if err != nil {
			return nil, err
		}
		return r.take(int(n))
	default:
		return nil, fmt.Errorf("option tag %d", tag)
	}
}

// bcsReader is a cursor over raw BCS bytes. BCS is little-endian with
// ULEB128 collection lengths and no field tags.
type bcsReader struct {
	buf []byte
	pos int
}

func (r *bcsReader) remaining() int {
	return len(r.buf) - r.pos
}

func (r *bcsReader) take(n int) ([]byte, error) {
	if r.remaining() < n {
		return nil, fmt.Errorf("need %d bytes, have %d", n, r.remaining())
	}
	b := r.buf[r.pos : r.pos+n]
	r.pos += n
	return b, nil
}

func (r *bcsReader) u8() (uint8, error) {
	b, err := r.take(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (r *bcsReader) u64() (uint64, error) {
	b, err := r.take(8)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(b), nil
}

func (r *bcsReader) uleb128() (uint64, error) {
	var out uint64
	var shift uint
	for {
		b, err := r.u8()
		if err != nil {
			return 0, err
		}
		out |= uint64(b&0x7f) << shift
		if b&0x80 == 0 {
			return out, nil
		}
		shift += 7
		if shift > 63 {
			return 0, fmt.Errorf("uleb128 overflow")
		}
	}
}

// address reads a 32-byte Sui address and renders it 0x-prefixed.
func (r *bcsReader) address() (string, error) {
	b, err := r.take(32)
	if err != nil {
		return "", err
	}
	return "0x" + hex.EncodeToString(b), nil
}

// order reads one Order record in contract field order.
func (r *bcsReader) order() (domain.BookOrder, error) {
	var o domain.BookOrder
	var err error

	if o.Maker, err = r.address(); err != nil {
		return o, fmt.Errorf("maker: %w", err)
	}
	if o.MakerAmount, err = r.u64(); err != nil {
		return o, fmt.Errorf("maker_amount: %w", err)
	}
	if o.TakerAmount, err = r.u64(); err != nil {
		return o, fmt.Errorf("taker_amount: %w", err)
	}

	role, err := r.u8()
	if err != nil {
		return o, fmt.Errorf("maker_role: %w", err)
	}
	o.MakerRole = domain.Role(role)

	token, err := r.u8()
	if err != nil {
		return o, fmt.Errorf("token_id: %w", err)
	}
	o.TokenID = domain.TokenSide(token)

	if o.Expiration, err = r.u64(); err != nil {
		return o, fmt.Errorf("expiration: %w", err)
	}
	if o.Salt, err = r.u64(); err != nil {
		return o, fmt.Errorf("salt: %w", err)
	}

	return o, nil
}
