package registry

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/tmoreno/bulkbridge-backend/pkg/enums"
)

type decoderFunc func(payload json.RawMessage) (any, error)

type decoderKey struct {
	eventType enums.OutboxEventType
	version   int
}

// DecoderRegistry maps (event type, payload version) pairs to typed payload
// decoders on the consumer side. Publishers do not decode; they forward the
// envelope as-is.
type DecoderRegistry struct {
	mtx      sync.RWMutex
	decoders map[decoderKey]decoderFunc
}

func NewDecoderRegistry() *DecoderRegistry {
	return &DecoderRegistry{decoders: make(map[decoderKey]decoderFunc)}
}

// RegisterDecoder registers a strict JSON decoder producing *T for the given
// event type and version.
func RegisterDecoder[T any](r *DecoderRegistry, eventType enums.OutboxEventType, version int) {
	r.register(eventType, version, func(payload json.RawMessage) (any, error) {
		var decoded T
		if err := json.Unmarshal(payload, &decoded); err != nil {
			return nil, fmt.Errorf("decode %s@v%d: %w", eventType, version, err)
		}
		return &decoded, nil
	})
}

func (r *DecoderRegistry) register(eventType enums.OutboxEventType, version int, decoder decoderFunc) {
	r.mtx.Lock()
	defer r.mtx.Unlock()
	r.decoders[decoderKey{eventType: eventType, version: version}] = decoder
}

// Registered reports whether a decoder exists for the event type and version.
func (r *DecoderRegistry) Registered(eventType enums.OutboxEventType, version int) bool {
	r.mtx.RLock()
	defer r.mtx.RUnlock()
	_, ok := r.decoders[decoderKey{eventType: eventType, version: version}]
	return ok
}

// Decode runs the registered decoder for the event type and version.
func (r *DecoderRegistry) Decode(eventType enums.OutboxEventType, version int, payload json.RawMessage) (any, error) {
	r.mtx.RLock()
	decoder, ok := r.decoders[decoderKey{eventType: eventType, version: version}]
	r.mtx.RUnlock()
	if !ok {
		return nil, fmt.Errorf("decoder not registered for %s@v%d", eventType, version)
	}
	return decoder(payload)
}
