package core

import (
	"github.com/gofrs/uuid"
)

type (
	// AssetEntry is the capability set of one supported collateral asset:
	// how it is priced and how it moves.
	AssetEntry struct {
		AssetId  uuid.UUID
		Oracle   *PriceAdapter
		Transfer ValueTransfer
	}

	// AssetRegistry is the immutable set of collateral assets the engine
	// supports, fixed at construction. Adding an asset later requires a
	// new engine instance.
	AssetRegistry struct {
		entries map[uuid.UUID]*AssetEntry
		order   []uuid.UUID
	}
)

// NewAssetRegistry builds the registry from parallel slices. A length
// mismatch, a duplicate asset or a missing capability fails before any
// state is created.
func NewAssetRegistry(assetIds []uuid.UUID, oracles []*PriceAdapter, transfers []ValueTransfer) (*AssetRegistry, error) {
	if len(assetIds) != len(oracles) || len(assetIds) != len(transfers) {
		return nil, ErrConfigMismatch
	}

	registry := &AssetRegistry{
		entries: make(map[uuid.UUID]*AssetEntry, len(assetIds)),
		order:   make([]uuid.UUID, 0, len(assetIds)),
	}
	for i, assetId := range assetIds {
		if oracles[i] == nil || transfers[i] == nil {
			return nil, ErrConfigMismatch
		}
		if _, ok := registry.entries[assetId]; ok {
			return nil, ErrConfigMismatch
		}
		registry.entries[assetId] = &AssetEntry{
			AssetId:  assetId,
			Oracle:   oracles[i],
			Transfer: transfers[i],
		}
		registry.order = append(registry.order, assetId)
	}
	return registry, nil
}

func (r *AssetRegistry) Get(assetId uuid.UUID) (*AssetEntry, error) {
	entry, ok := r.entries[assetId]
	if !ok {
		return nil, ErrUnsupportedAsset
	}
	return entry, nil
}

// GetPriceAdapter resolves the oracle for a registered asset. A missing
// oracle for a registry-listed asset cannot happen by construction, so a
// miss here means the asset itself is unknown.
func (r *AssetRegistry) GetPriceAdapter(assetId uuid.UUID) (*PriceAdapter, error) {
	entry, ok := r.entries[assetId]
	if !ok {
		return nil, ErrOracleNotRegistered
	}
	return entry.Oracle, nil
}

func (r *AssetRegistry) Supports(assetId uuid.UUID) bool {
	_, ok := r.entries[assetId]
	return ok
}

// AssetIds returns the supported assets in registration order.
func (r *AssetRegistry) AssetIds() []uuid.UUID {
	ids := make([]uuid.UUID, len(r.order))
	copy(ids, r.order)
	return ids
}
