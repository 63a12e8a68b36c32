package delivery

import (
	"context"

	"golang.org/x/sync/singleflight"

	"github.com/prilive-com/welcomebot/tg"
)

// StickerSetGetter is the slice of the Bot API client the resolver needs.
type StickerSetGetter interface {
	GetStickerSet(ctx context.Context, name string) (*tg.StickerSet, error)
}

// StickerSetResolver resolves sticker set names with getStickerSet. Sets are
// fetched on every call; concurrent lookups of one name share a request.
type StickerSetResolver struct {
	client StickerSetGetter
	group  singleflight.Group
}

// NewStickerSetResolver creates a resolver backed by client.
func NewStickerSetResolver(client StickerSetGetter) *StickerSetResolver {
	return &StickerSetResolver{client: client}
}

// ResolveSet returns the file IDs of every sticker in the set. A shared
// lookup outlives the cancellation of whichever caller started it; each
// caller stops waiting when its own ctx is done.
func (r *StickerSetResolver) ResolveSet(ctx context.Context, name string) ([]string, error) {
	lookupCtx := context.WithoutCancel(ctx)
	ch := r.group.DoChan(name, func() (any, error) {
		set, err := r.client.GetStickerSet(lookupCtx, name)
		if err != nil {
			return nil, err
		}
		return set.FileIDs(), nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return append([]string(nil), res.Val.([]string)...), nil
	}
}
