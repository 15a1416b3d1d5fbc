package journal

import "context"

// Store persists chained entries. Append must reject an entry whose Seq does
// not directly follow the current head.
type Store interface {
	Head(ctx context.Context) (Head, error)
	Append(ctx context.Context, entry Entry) error
	List(ctx context.Context, opts ListOptions) ([]Entry, error)
}
