package favorites

import (
	"context"
	"strings"
	"time"

	zlog "github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/baechuer/esemenyrendezo/internal/application/catalog"
	"github.com/baechuer/esemenyrendezo/internal/domain"
	"github.com/baechuer/esemenyrendezo/internal/metrics"
)

const defaultToggleTimeout = 10 * time.Second

// Reconciler joins the catalog with a user's save relations and owns the
// per-(user, event) toggle serialization shared by every view it creates.
type Reconciler struct {
	catalog   Catalog
	relations Relations
	locks     *keyLocks

	toggleTimeout time.Duration
}

func NewReconciler(c Catalog, rel Relations, toggleTimeout time.Duration) *Reconciler {
	if toggleTimeout <= 0 {
		toggleTimeout = defaultToggleTimeout
	}
	return &Reconciler{
		catalog:       c,
		relations:     rel,
		locks:         newKeyLocks(),
		toggleTimeout: toggleTimeout,
	}
}

// Load builds a catalog view with the saved flag per row. The catalog read and the
// relation read run concurrently; anonymous users skip the relation read.
func (r *Reconciler) Load(ctx context.Context, userID string, f catalog.ListFilter) (*View, error) {
	userID = strings.TrimSpace(userID)

	var (
		events []*domain.Event
		saved  map[string]struct{}
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		events, err = r.catalog.ListEvents(gctx, f)
		return err
	})
	if userID != "" {
		g.Go(func() error {
			var err error
			saved, err = r.relations.SavedSet(gctx, userID)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	v := newView(r, userID, KindCatalog)
	for _, e := range events {
		_, ok := saved[e.ID]
		v.add(e, ok)
	}
	return v, nil
}

// LoadSaved builds the saved-events view. Relations pointing at events that no
// longer exist are omitted and left in place.
func (r *Reconciler) LoadSaved(ctx context.Context, userID string) (*View, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, domain.ErrNotAuthenticated("login required to view saved events")
	}

	rels, err := r.relations.Relations(ctx, userID)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(rels))
	for _, rel := range rels {
		ids = append(ids, rel.EventID)
	}
	byID, err := r.catalog.EventsByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	events := make([]*domain.Event, 0, len(byID))
	dangling := 0
	for _, id := range ids {
		e, ok := byID[id]
		if !ok {
			dangling++
			zlog.Debug().Err(domain.ErrDanglingReference(userID, id)).Msg("omitting saved relation")
			continue
		}
		events = append(events, e)
	}
	metrics.RecordDanglingOmitted(dangling)
	domain.SortByStartDesc(events)

	v := newView(r, userID, KindSaved)
	for _, e := range events {
		v.add(e, true)
	}
	return v, nil
}

// set applies a desired state directly, serialized with toggles on the same key.
// onSaved runs after a successful write while the key is still held, so a toggle
// queued behind this call sees its effect.
func (r *Reconciler) set(ctx context.Context, userID, eventID string, want bool, onSaved func()) error {
	release, err := r.locks.acquire(ctx, domain.RelationKey{UserID: userID, EventID: eventID})
	if err != nil {
		return err
	}
	defer release()

	opCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), r.toggleTimeout)
	defer cancel()
	if want {
		err = r.relations.Save(opCtx, userID, eventID)
	} else {
		err = r.relations.Unsave(opCtx, userID, eventID)
	}
	if err != nil {
		return err
	}
	if onSaved != nil {
		onSaved()
	}
	return nil
}
