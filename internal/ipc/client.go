package ipc

import (
	"net"
	"net/rpc"
	"net/rpc/jsonrpc"
	"time"
)

// Client provides RPC access to the session daemon.
type Client struct {
	conn   net.Conn
	client *rpc.Client
}

// Dial connects to the IPC server at the given socket path.
func Dial(path string) (*Client, error) {
	conn, err := net.DialTimeout("unix", path, 2*time.Second)
	if err != nil {
		return nil, err
	}
	rpcClient := rpc.NewClientWithCodec(jsonrpc.NewClientCodec(conn))
	return &Client{conn: conn, client: rpcClient}, nil
}

// Close closes the underlying connection.
func (c *Client) Close() error {
	if c.client != nil {
		_ = c.client.Close()
	}
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}

// Status retrieves the session status.
func (c *Client) Status() (*StatusResponse, error) {
	var resp StatusResponse
	if err := c.client.Call("Curator.Status", StatusRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// QueueList returns the queue in display order.
func (c *Client) QueueList() (*QueueListResponse, error) {
	var resp QueueListResponse
	if err := c.client.Call("Curator.QueueList", QueueListRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// QueueShow returns details for a single queue entry.
func (c *Client) QueueShow(id string) (*QueueShowResponse, error) {
	var resp QueueShowResponse
	if err := c.client.Call("Curator.QueueShow", QueueShowRequest{ID: id}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Refresh re-fetches the queue from the backend.
func (c *Client) Refresh() (*RefreshResponse, error) {
	var resp RefreshResponse
	if err := c.client.Call("Curator.Refresh", RefreshRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// SetNote records an operator note for an item.
func (c *Client) SetNote(id, text string) error {
	var resp SetNoteResponse
	return c.client.Call("Curator.SetNote", SetNoteRequest{ID: id, Text: text}, &resp)
}

// SetReply replaces the draft text of a ready item.
func (c *Client) SetReply(id, text string) error {
	var resp SetReplyResponse
	return c.client.Call("Curator.SetReply", SetReplyRequest{ID: id, Text: text}, &resp)
}

// ToggleExpand flips detail expansion for an item and returns the new state.
func (c *Client) ToggleExpand(id string) (bool, error) {
	var resp ToggleExpandResponse
	if err := c.client.Call("Curator.ToggleExpand", ToggleExpandRequest{ID: id}, &resp); err != nil {
		return false, err
	}
	return resp.Expanded, nil
}

// Generate requests a reply draft for an item.
func (c *Client) Generate(id string) (*GenerateResponse, error) {
	var resp GenerateResponse
	if err := c.client.Call("Curator.Generate", GenerateRequest{ID: id}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Approve posts an item's draft reply.
func (c *Client) Approve(id string) error {
	var resp ApproveResponse
	return c.client.Call("Curator.Approve", ApproveRequest{ID: id}, &resp)
}

// Reject discards a suggestion.
func (c *Client) Reject(id string) error {
	var resp RejectResponse
	return c.client.Call("Curator.Reject", RejectRequest{ID: id}, &resp)
}

// PostDirect posts the operator note for an item verbatim.
func (c *Client) PostDirect(id string) error {
	var resp PostDirectResponse
	return c.client.Call("Curator.PostDirect", PostDirectRequest{ID: id}, &resp)
}
