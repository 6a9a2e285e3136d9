package pools

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/aman-zulfiqar/swap-quote-engine/internal/models"
)

// PoolConfig represents a pool entry in the JSON config
type PoolConfig struct {
	Pair     string  `json:"pair"`
	Fee      float64 `json:"fee"` // fraction, 0.003 = 0.3%
	TVL      float64 `json:"tvl"`
	Reserve0 float64 `json:"reserve0,omitempty"`
	Reserve1 float64 `json:"reserve1,omitempty"`
}

// Registry serves liquidity pools loaded from a JSON file. Every
// GetLiquidityPools call re-reads the file so edits are picked up on the next
// refresh; a broken file leaves the last good set in place.
type Registry struct {
	path string

	mu    sync.RWMutex
	pools []models.LiquidityPool
}

// NewRegistry loads pools from a JSON file
func NewRegistry(path string) (*Registry, error) {
	pools, err := LoadPoolsFromJSON(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load pools: %w", err)
	}

	return &Registry{path: path, pools: pools}, nil
}

// LoadPoolsFromJSON reads and parses pool configurations
func LoadPoolsFromJSON(path string) ([]models.LiquidityPool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var configs []PoolConfig
	if err := json.Unmarshal(data, &configs); err != nil {
		return nil, fmt.Errorf("failed to parse JSON: %w", err)
	}

	pools := make([]models.LiquidityPool, 0, len(configs))
	for i, cfg := range configs {
		pool, err := parsePoolConfig(cfg)
		if err != nil {
			return nil, fmt.Errorf("pool %d (%s): %w", i, cfg.Pair, err)
		}
		pools = append(pools, pool)
	}

	return pools, nil
}

// parsePoolConfig converts a config entry to a LiquidityPool with validation
func parsePoolConfig(cfg PoolConfig) (models.LiquidityPool, error) {
	a, b, ok := strings.Cut(strings.TrimSpace(cfg.Pair), "/")
	a, b = strings.ToUpper(strings.TrimSpace(a)), strings.ToUpper(strings.TrimSpace(b))
	if !ok || a == "" || b == "" {
		return models.LiquidityPool{}, fmt.Errorf("pair must look like A/B")
	}
	if a == b {
		return models.LiquidityPool{}, fmt.Errorf("pair tokens must differ")
	}
	if cfg.Fee < 0 || cfg.Fee > 1 {
		return models.LiquidityPool{}, fmt.Errorf("fee must be in [0,1]")
	}
	if cfg.TVL < 0 {
		return models.LiquidityPool{}, fmt.Errorf("tvl must be >= 0")
	}

	return models.LiquidityPool{
		Pair:        models.PairKey(a, b),
		FeeFraction: cfg.Fee,
		TVL:         cfg.TVL,
		Token0:      a,
		Token1:      b,
		Reserve0:    cfg.Reserve0,
		Reserve1:    cfg.Reserve1,
	}, nil
}

// Reload re-reads the backing file.
func (r *Registry) Reload() error {
	if r.path == "" {
		return nil
	}
	pools, err := LoadPoolsFromJSON(r.path)
	if err != nil {
		return err
	}
	r.mu.Lock()
	r.pools = pools
	r.mu.Unlock()
	return nil
}

// GetLiquidityPools reloads the file and returns a copy of the pool list.
func (r *Registry) GetLiquidityPools(_ context.Context) ([]models.LiquidityPool, error) {
	if err := r.Reload(); err != nil {
		return nil, err
	}
	return r.GetAllPools(), nil
}

// GetAllPools returns all registered pools
func (r *Registry) GetAllPools() []models.LiquidityPool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]models.LiquidityPool, len(r.pools))
	copy(out, r.pools)
	return out
}

// PoolCount returns the number of registered pools
func (r *Registry) PoolCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.pools)
}
