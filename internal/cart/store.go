package cart

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/angelmondragon/storefront-engine/pkg/authority"
	"github.com/angelmondragon/storefront-engine/pkg/config"
	pkgerrors "github.com/angelmondragon/storefront-engine/pkg/errors"
	"github.com/angelmondragon/storefront-engine/pkg/logger"
	"github.com/angelmondragon/storefront-engine/pkg/persistence"
)

// Authority is the slice of the remote cart authority the store consumes.
type Authority interface {
	ValidateItem(ctx context.Context, check authority.ItemCheck) (*authority.ItemValidation, error)
	ValidateCart(ctx context.Context, items []authority.Item) (*authority.CartValidation, error)
	SyncCart(ctx context.Context, items []authority.Item, userID string) error
	MergeCart(ctx context.Context, guestItems []authority.Item, userID string) ([]authority.Item, error)
}

// Params bundles the dependencies for NewStore.
type Params struct {
	Authority Authority
	Persist   persistence.Store[Snapshot]
	Logger    *logger.Logger
	Config    config.CartConfig
}

// Store owns the in-memory cart: line items, derived totals, and the
// bookkeeping around validation and backend sync.
//
// State is guarded by a single mutex that is never held across an
// authority round-trip. Each mutation is three atomic sections: a guarded
// read (fail fast, record generation), the remote call, and a commit that
// re-checks the target line still exists and the request was not
// superseded before applying the response. That commit check is what keeps
// out-of-order responses from resurrecting removed lines.
type Store struct {
	mu            sync.Mutex
	items         []Item
	lastValidated *time.Time
	lastSynced    *time.Time
	loading       int
	syncing       bool
	lastError     string
	gens          map[Key]uint64

	authority Authority
	persist   persistence.Store[Snapshot]
	logg      *logger.Logger
	cfg       config.CartConfig
	now       func() time.Time
}

// NewStore builds a cart store backed by the provided stack.
func NewStore(params Params) (*Store, error) {
	if params.Authority == nil {
		return nil, fmt.Errorf("cart authority required")
	}
	if params.Persist == nil {
		return nil, fmt.Errorf("cart persistence required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	cfg := params.Config
	if cfg.SyncTimeout <= 0 {
		cfg.SyncTimeout = 10 * time.Second
	}
	if cfg.TaxRate == 0 {
		cfg.TaxRate = 0.08
	}
	return &Store{
		gens:      map[Key]uint64{},
		authority: params.Authority,
		persist:   params.Persist,
		logg:      params.Logger,
		cfg:       cfg,
		now:       time.Now,
	}, nil
}

// Restore loads the persisted snapshot. A corrupt snapshot is discarded
// and the store starts empty; the shopper never sees the failure.
func (s *Store) Restore(ctx context.Context) error {
	snapshot, found, err := s.persist.Load(ctx)
	if err != nil {
		if pkgerrors.IsCode(err, pkgerrors.CodeStateCorruption) {
			s.logg.Warn(ctx, "cart snapshot corrupt, resetting")
			if clearErr := s.persist.Clear(ctx); clearErr != nil {
				s.logg.Error(ctx, "failed to clear corrupt cart snapshot", clearErr)
			}
			return nil
		}
		return err
	}
	if !found {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	// Drop any lines that violate the quantity invariant; a malformed
	// snapshot must not smuggle zero-quantity items back in.
	items := make([]Item, 0, len(snapshot.Items))
	for _, item := range snapshot.Items {
		if item.ProductID == "" || item.Quantity <= 0 {
			continue
		}
		items = append(items, item)
	}
	s.items = items
	s.lastValidated = snapshot.LastValidated
	s.lastSynced = snapshot.LastSynced
	return nil
}

// AddItem validates the candidate against the authority and inserts it.
// Adding an already-present line degrades to a quantity update with the
// summed quantity, validated once. Local state is untouched on rejection.
func (s *Store) AddItem(ctx context.Context, item Item) error {
	if item.ProductID == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	if item.Quantity <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}

	key := item.ItemKey()

	s.mu.Lock()
	if idx := s.indexLocked(key); idx >= 0 {
		requested := s.items[idx].Quantity + item.Quantity
		s.mu.Unlock()
		return s.revalidateQuantity(ctx, key, requested)
	}
	gen := s.bumpGenLocked(key)
	s.loading++
	s.mu.Unlock()

	verdict, err := s.validateItemRemote(ctx, key, item.Quantity)

	s.mu.Lock()
	s.loading--
	if err != nil {
		s.mu.Unlock()
		return err
	}
	if s.gens[key] != gen {
		// Superseded while in flight; the later operation wins.
		s.mu.Unlock()
		return nil
	}
	if verdict.MaxQuantity <= 0 {
		s.mu.Unlock()
		return pkgerrors.New(pkgerrors.CodeValidation, "item is out of stock").WithDetails(map[string]any{
			"product_id": key.ProductID,
		})
	}
	if idx := s.indexLocked(key); idx >= 0 {
		// A concurrent add landed first; fold under the authoritative cap.
		s.items[idx].Quantity = minInt(s.items[idx].Quantity+item.Quantity, verdict.MaxQuantity)
		s.items[idx].StockStatus = verdict.StockStatus
		s.items[idx].MaxQuantity = verdict.MaxQuantity
	} else {
		committed := item
		committed.Quantity = minInt(item.Quantity, verdict.MaxQuantity)
		committed.StockStatus = verdict.StockStatus
		committed.MaxQuantity = verdict.MaxQuantity
		s.items = append(s.items, committed)
	}
	s.persistLocked(ctx)
	s.mu.Unlock()

	s.backgroundSync()
	return nil
}

// UpdateQuantity replaces a line's quantity after authority validation,
// preserving its position. A non-positive quantity means removal and never
// reaches the authority.
func (s *Store) UpdateQuantity(ctx context.Context, productID string, quantity int, variantID string) error {
	if quantity <= 0 {
		return s.RemoveItem(ctx, productID, variantID)
	}
	return s.revalidateQuantity(ctx, Key{ProductID: productID, VariantID: variantID}, quantity)
}

func (s *Store) revalidateQuantity(ctx context.Context, key Key, requested int) error {
	s.mu.Lock()
	if s.indexLocked(key) < 0 {
		s.mu.Unlock()
		return pkgerrors.New(pkgerrors.CodeNotFound, "item not in cart")
	}
	gen := s.bumpGenLocked(key)
	s.loading++
	s.mu.Unlock()

	verdict, err := s.validateItemRemote(ctx, key, requested)

	s.mu.Lock()
	s.loading--
	if err != nil {
		s.mu.Unlock()
		return err
	}
	if s.gens[key] != gen {
		s.mu.Unlock()
		return nil
	}
	idx := s.indexLocked(key)
	if idx < 0 {
		// Removed while the validation was in flight; discard the response.
		s.mu.Unlock()
		return nil
	}
	if verdict.MaxQuantity <= 0 {
		s.mu.Unlock()
		return pkgerrors.New(pkgerrors.CodeValidation, "item is out of stock").WithDetails(map[string]any{
			"product_id": key.ProductID,
		})
	}
	s.items[idx].Quantity = minInt(requested, verdict.MaxQuantity)
	s.items[idx].StockStatus = verdict.StockStatus
	s.items[idx].MaxQuantity = verdict.MaxQuantity
	s.persistLocked(ctx)
	s.mu.Unlock()

	s.backgroundSync()
	return nil
}

// RemoveItem drops a line locally with no authority round-trip. Removing
// an absent key is a no-op.
func (s *Store) RemoveItem(ctx context.Context, productID, variantID string) error {
	key := Key{ProductID: productID, VariantID: variantID}

	s.mu.Lock()
	idx := s.indexLocked(key)
	if idx < 0 {
		s.mu.Unlock()
		return nil
	}
	s.items = append(s.items[:idx], s.items[idx+1:]...)
	// Invalidate any validation still in flight for this key.
	s.bumpGenLocked(key)
	s.persistLocked(ctx)
	s.mu.Unlock()

	s.backgroundSync()
	return nil
}

// ValidateCart submits the full item list, clamps lines the authority
// flagged with a suggested quantity, and returns the raw result for the
// UI. Flagged lines without a positive suggestion are left untouched; what
// to do with them is the caller's decision.
func (s *Store) ValidateCart(ctx context.Context) (*authority.CartValidation, error) {
	s.mu.Lock()
	payload := s.wireItemsLocked()
	s.loading++
	s.mu.Unlock()

	cctx, cancel := context.WithTimeout(ctx, s.cfg.SyncTimeout)
	result, err := s.authority.ValidateCart(cctx, payload)
	cancel()

	s.mu.Lock()
	s.loading--
	if err != nil {
		s.mu.Unlock()
		return nil, err
	}
	for _, issue := range result.Errors {
		if issue.SuggestedQuantity == nil || *issue.SuggestedQuantity <= 0 {
			continue
		}
		idx := s.indexLocked(Key{ProductID: issue.ProductID, VariantID: issue.VariantID})
		if idx < 0 {
			continue
		}
		if s.items[idx].Quantity > *issue.SuggestedQuantity {
			s.items[idx].Quantity = *issue.SuggestedQuantity
		}
	}
	now := s.now()
	s.lastValidated = &now
	s.persistLocked(ctx)
	s.mu.Unlock()

	return result, nil
}

// ClearCart empties the cart and pushes the empty snapshot to the backend
// in the background.
func (s *Store) ClearCart(ctx context.Context) error {
	s.mu.Lock()
	s.items = nil
	s.lastValidated = nil
	for key := range s.gens {
		s.gens[key]++
	}
	s.persistLocked(ctx)
	s.mu.Unlock()

	go s.syncNow(context.Background(), "", true)
	return nil
}

// Sync pushes the current snapshot to the backend of record. It is a
// silent no-op while another sync is in flight or the cart is empty, and
// it never propagates failures: sync is advisory persistence, the next
// trigger retries.
func (s *Store) Sync(ctx context.Context, userID string) {
	s.syncNow(ctx, userID, false)
}

func (s *Store) syncNow(ctx context.Context, userID string, allowEmpty bool) {
	// The guard must be checked and set in one critical section before any
	// I/O, otherwise two near-simultaneous calls both pass it.
	s.mu.Lock()
	if s.syncing || (!allowEmpty && len(s.items) == 0) {
		s.mu.Unlock()
		return
	}
	s.syncing = true
	payload := s.wireItemsLocked()
	s.mu.Unlock()

	cctx, cancel := context.WithTimeout(ctx, s.cfg.SyncTimeout)
	err := s.authority.SyncCart(cctx, payload, userID)
	cancel()

	s.mu.Lock()
	s.syncing = false
	if err == nil {
		now := s.now()
		s.lastSynced = &now
		s.lastError = ""
		s.persistLocked(ctx)
	} else {
		s.lastError = err.Error()
	}
	s.mu.Unlock()

	if err != nil {
		s.logg.Warn(ctx, "cart sync failed: "+err.Error())
	}
}

// MergeGuestCart submits the guest items and replaces the local list with
// the authority's merged result wholesale. Never merged client-side: the
// server applies dedup, stock reclamation, and pricing rules the client
// does not know.
func (s *Store) MergeGuestCart(ctx context.Context, userID string) error {
	s.mu.Lock()
	guest := s.wireItemsLocked()
	s.loading++
	s.mu.Unlock()

	cctx, cancel := context.WithTimeout(ctx, s.cfg.SyncTimeout)
	merged, err := s.authority.MergeCart(cctx, guest, userID)
	cancel()

	s.mu.Lock()
	s.loading--
	if err != nil {
		s.mu.Unlock()
		return err
	}
	items := make([]Item, 0, len(merged))
	for _, wire := range merged {
		if wire.Quantity <= 0 {
			continue
		}
		items = append(items, fromWireItem(wire))
	}
	s.items = items
	for key := range s.gens {
		s.gens[key]++
	}
	now := s.now()
	s.lastSynced = &now
	s.persistLocked(ctx)
	s.mu.Unlock()
	return nil
}

func (s *Store) validateItemRemote(ctx context.Context, key Key, quantity int) (*authority.ItemValidation, error) {
	cctx, cancel := context.WithTimeout(ctx, s.cfg.SyncTimeout)
	defer cancel()
	return s.authority.ValidateItem(cctx, authority.ItemCheck{
		ProductID: key.ProductID,
		VariantID: key.VariantID,
		Quantity:  quantity,
	})
}

func (s *Store) backgroundSync() {
	go s.syncNow(context.Background(), "", false)
}

func (s *Store) persistLocked(ctx context.Context) {
	snapshot := Snapshot{
		Items:         append([]Item(nil), s.items...),
		LastValidated: s.lastValidated,
		LastSynced:    s.lastSynced,
	}
	if err := s.persist.Save(ctx, snapshot); err != nil {
		s.logg.Warn(ctx, "cart snapshot save failed: "+err.Error())
	}
}

func (s *Store) indexLocked(key Key) int {
	for i, item := range s.items {
		if item.ItemKey() == key {
			return i
		}
	}
	return -1
}

func (s *Store) bumpGenLocked(key Key) uint64 {
	s.gens[key]++
	return s.gens[key]
}

func (s *Store) wireItemsLocked() []authority.Item {
	wire := make([]authority.Item, 0, len(s.items))
	for _, item := range s.items {
		wire = append(wire, toWireItem(item))
	}
	return wire
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
