package realtime

// Queued exposes the client's outbound queue to tests.
func (c *Client) Queued() <-chan []byte {
	return c.send
}
