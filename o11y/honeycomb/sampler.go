package honeycomb

import (
	"crypto/sha1" //nolint:gosec // only used to spread trace ids, not for security
	"encoding/binary"
	"fmt"
	"math"

	"github.com/honeycombio/dynsampler-go"
)

// TraceSampler keeps a deterministic share of traces per key, so every span of a kept
// trace is kept.
type TraceSampler struct {
	// KeyFunc takes the event's fields and returns the key used to look up the sample rate
	KeyFunc func(map[string]interface{}) string

	Sampler dynsampler.Sampler
}

// Hook implements beeline.Config.SamplerHook
func (s *TraceSampler) Hook(fields map[string]interface{}) (sample bool, rate int) {
	key := ""
	if s.KeyFunc != nil {
		key = s.KeyFunc(fields)
	}
	rate = s.Sampler.GetSampleRate(key)
	if rate < 1 {
		rate = 1
	}
	if shouldSample(fmt.Sprintf("%v", fields["trace.trace_id"]), rate) {
		return true, rate
	}
	return false, 0
}

// shouldSample deterministically decides whether to keep the trace with the given id
func shouldSample(determinant string, rate int) bool {
	if rate == 1 {
		return true
	}

	sum := sha1.Sum([]byte(determinant)) //nolint:gosec
	v := binary.BigEndian.Uint32(sum[:4])
	return v < math.MaxUint32/uint32(rate) //nolint:gosec
}
