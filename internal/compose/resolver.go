package compose

import (
	"context"

	"github.com/pantrylog/pantrylog/internal/model"
)

// resolveRef turns a reference into a durable id, creating the entity
// when needed. The same path serves user, shop, category, and product
// slots so the create-or-reference rules are enforced once.
//
// A new reference that already carries a resolved id (from an earlier
// attempt on the same draft) is not re-created; that is what makes
// retrying a partially applied compose safe.
func resolveRef[F any](ctx context.Context, ref *model.Ref[F], kind, step string, create func(context.Context, F) (int64, error)) (int64, error) {
	if ref.IsResolved() {
		return ref.ResolvedID(kind)
	}
	id, err := create(ctx, ref.Fields())
	if err != nil {
		return 0, &ResolutionError{Step: step, Err: err}
	}
	ref.Resolve(id)
	return id, nil
}
