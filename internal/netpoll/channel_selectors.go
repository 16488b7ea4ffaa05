package netpoll

// ChannelSelectors bundles the three independent selectors spec.md §4.D
// requires be registered against a single non-blocking SCTP socket: one
// each for read-ready, write-ready, and connect-ready. A channel owns
// exactly one of these for its lifetime.
type ChannelSelectors struct {
	Read    *Selector
	Write   *Selector
	Connect *Selector
}

// NewChannelSelectors registers all three selectors against fd.
func NewChannelSelectors(fd int) (*ChannelSelectors, error) {
	read, err := NewSelector(fd, InterestRead)
	if err != nil {
		return nil, err
	}
	write, err := NewSelector(fd, InterestWrite)
	if err != nil {
		read.Close()
		return nil, err
	}
	connect, err := NewSelector(fd, InterestConnect)
	if err != nil {
		read.Close()
		write.Close()
		return nil, err
	}
	return &ChannelSelectors{Read: read, Write: write, Connect: connect}, nil
}

// CloseAll closes all three selectors independently; a failure on one does
// not prevent the others from being closed, matching doClose's "each
// independently; failure logged, not fatal" contract.
func (c *ChannelSelectors) CloseAll() []error {
	var errs []error
	if err := c.Read.Close(); err != nil {
		errs = append(errs, err)
	}
	if err := c.Write.Close(); err != nil {
		errs = append(errs, err)
	}
	if err := c.Connect.Close(); err != nil {
		errs = append(errs, err)
	}
	return errs
}
