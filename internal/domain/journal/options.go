package journal

const (
	DefaultListLimit = 100
	MaxListLimit     = 1000
)

// ListOptions selects a page of journal entries.
type ListOptions struct {
	AfterSeq uint64
	Limit    int
}

func (o ListOptions) normalized() ListOptions {
	if o.Limit <= 0 {
		o.Limit = DefaultListLimit
	}
	if o.Limit > MaxListLimit {
		o.Limit = MaxListLimit
	}
	return o
}
