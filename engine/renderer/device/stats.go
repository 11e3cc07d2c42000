package device

// Stats are counters of device work. CallsIssued and CallsAvoided cover binding and fixed-function
// state changes: every request that reached the GL versus every request the binding cache dropped.
type Stats struct {
	Applies        int
	Draws          int
	CallsIssued    int
	CallsAvoided   int
	UniformUploads int

	DescriptorsCreated  int
	DescriptorsReleased int
	// LiveDescriptors is filled in by Stats from the descriptor pool.
	LiveDescriptors int
}

func (d *device) Stats() Stats {
	s := d.stats
	s.LiveDescriptors = d.registry.pool.live()
	return s
}

func (d *device) ResetStats() {
	d.stats = Stats{}
}
