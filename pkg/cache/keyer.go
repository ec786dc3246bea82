package cache

import "strconv"

// Keyer generates cache keys.
type Keyer interface {
	// HTTPKey is the key for a fetched remote resource.
	HTTPKey(namespace, key string) string
	// FrameKey is the key for one rendered frame artifact.
	FrameKey(inputHash string, opts FrameKeyOpts) string
	// PlanKey is the key for a timeline frame plan.
	PlanKey(opts PlanKeyOpts) string
}

// FrameKeyOpts are the render options that change a frame artifact.
type FrameKeyOpts struct {
	Index  float64 `json:"index"`
	Format string  `json:"format"`
	Scale  float64 `json:"scale,omitempty"`
	Locale string  `json:"locale,omitempty"`
	Embed  bool    `json:"embed,omitempty"`
}

// PlanKeyOpts identify a timeline plan.
type PlanKeyOpts struct {
	Steps    int     `json:"steps"`
	Duration float64 `json:"duration"`
	Loop     bool    `json:"loop"`
	Before   float64 `json:"before"`
	After    float64 `json:"after"`
	FPS      int     `json:"fps"`
}

// DefaultKeyer produces keys of the form "kind:sha256".
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

func (DefaultKeyer) HTTPKey(namespace, key string) string {
	return "http:" + namespace + ":" + key
}

func (DefaultKeyer) FrameKey(inputHash string, opts FrameKeyOpts) string {
	// strconv keeps indices like 0.1 and 0.10000000000000001 distinct
	return hashKey("frame", inputHash, strconv.FormatFloat(opts.Index, 'g', -1, 64), opts)
}

func (DefaultKeyer) PlanKey(opts PlanKeyOpts) string {
	return hashKey("plan", opts)
}
