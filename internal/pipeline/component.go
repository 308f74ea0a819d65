package pipeline

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/lexstore/lexstore/internal/errors"
)

// ComponentConfig is the serialized form of a pipeline component: a type
// discriminator plus the parameters its constructor was called with.
type ComponentConfig struct {
	Type           string         `json:"type" yaml:"type"`
	InitParameters map[string]any `json:"init_parameters" yaml:"init_parameters"`
}

// StoreFactory constructs a DocumentStore from serialized init parameters.
type StoreFactory func(params map[string]any) (DocumentStore, error)

var (
	registryMu     sync.RWMutex
	storeFactories = make(map[string]StoreFactory)
)

// RegisterStore registers a document store factory under a type name.
// Later registrations for the same name replace earlier ones.
func RegisterStore(typeName string, factory StoreFactory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	storeFactories[typeName] = factory
}

// StoreFromConfig reconstructs a document store from its serialized config.
func StoreFromConfig(cfg ComponentConfig) (DocumentStore, error) {
	registryMu.RLock()
	factory, ok := storeFactories[cfg.Type]
	registryMu.RUnlock()

	if !ok {
		return nil, errors.New(errors.ErrCodeInvalidInput,
			fmt.Sprintf("unknown document store type %q", cfg.Type), nil)
	}
	return factory(cfg.InitParameters)
}

// EncodeParams converts a typed parameter struct into the generic
// init-parameter map used by ComponentConfig.
func EncodeParams(v any) (map[string]any, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to encode init parameters: %w", err)
	}
	var params map[string]any
	if err := json.Unmarshal(data, &params); err != nil {
		return nil, fmt.Errorf("failed to encode init parameters: %w", err)
	}
	return params, nil
}

// DecodeParams populates a typed parameter struct from the generic
// init-parameter map.
func DecodeParams(params map[string]any, v any) error {
	data, err := json.Marshal(params)
	if err != nil {
		return fmt.Errorf("failed to decode init parameters: %w", err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to decode init parameters: %w", err)
	}
	return nil
}
