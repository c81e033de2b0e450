package mem

import (
	"encoding/json"
	"fmt"
	"os"
)

// CacheConfig holds the cache hierarchy's geometry.
type CacheConfig struct {
	// L1Capacity is the number of words the first cache level holds.
	L1Capacity int `json:"l1_capacity"`

	// L2Capacity is the number of words the second cache level holds.
	L2Capacity int `json:"l2_capacity"`
}

// DefaultCacheConfig returns the standard two-level geometry: 20 words of
// L1 in front of 50 words of L2.
func DefaultCacheConfig() *CacheConfig {
	return &CacheConfig{
		L1Capacity: L1Capacity,
		L2Capacity: L2Capacity,
	}
}

// LoadCacheConfig reads a CacheConfig from a JSON file, defaulting fields
// the file omits.
func LoadCacheConfig(path string) (*CacheConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read cache config file: %w", err)
	}

	config := DefaultCacheConfig()
	if err := json.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse cache config: %w", err)
	}

	return config, nil
}

// SaveCacheConfig writes c to path as indented JSON.
func (c *CacheConfig) SaveCacheConfig(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize cache config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write cache config file: %w", err)
	}

	return nil
}
