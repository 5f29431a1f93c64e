// Package metrics defines named, documented computations over a common input.
//
// Each metric carries metadata for reports and serialization plus a Compute
// step. A Registry keeps metrics in registration order so tables built from
// it have a stable row order.
package metrics

// Metric is a self-contained computation with metadata.
type Metric[In, Out any] interface {
	// Name returns the machine-readable identifier (snake_case, unique).
	Name() string

	// DisplayName returns the human-readable label used in reports.
	DisplayName() string

	// Description says what the metric measures and its unit.
	Description() string

	// Type returns the metric category, e.g. TypeCount.
	Type() string

	// Compute calculates the metric value from input data.
	Compute(input In) Out
}

// Metric categories.
const (
	TypeCount = "count"
	TypeRatio = "ratio"
)

// MetricMeta holds the common metadata for a metric.
// Embed this in metric implementations to satisfy metadata methods.
type MetricMeta struct {
	MetricName        string
	MetricDisplayName string
	MetricDescription string
	MetricType        string
}

// Name returns the machine-readable identifier.
func (m MetricMeta) Name() string { return m.MetricName }

// DisplayName returns a human-readable name for UI/reports.
func (m MetricMeta) DisplayName() string { return m.MetricDisplayName }

// Description returns detailed documentation.
func (m MetricMeta) Description() string { return m.MetricDescription }

// Type returns the metric category.
func (m MetricMeta) Type() string { return m.MetricType }

// Func adapts a plain function into a Metric.
type Func[In, Out any] struct {
	MetricMeta

	Fn func(In) Out
}

// Compute calls Fn.
func (f Func[In, Out]) Compute(input In) Out {
	return f.Fn(input)
}

// Registry holds metrics over the same input and output types.
type Registry[In, Out any] struct {
	order   []string
	metrics map[string]Metric[In, Out]
}

// NewRegistry creates an empty metric registry.
func NewRegistry[In, Out any]() *Registry[In, Out] {
	return &Registry[In, Out]{metrics: make(map[string]Metric[In, Out])}
}

// Register adds a metric. Registering a name again replaces the metric but
// keeps its original position.
func (r *Registry[In, Out]) Register(m Metric[In, Out]) {
	if _, ok := r.metrics[m.Name()]; !ok {
		r.order = append(r.order, m.Name())
	}

	r.metrics[m.Name()] = m
}

// Get retrieves a metric by name.
func (r *Registry[In, Out]) Get(name string) (Metric[In, Out], bool) {
	m, ok := r.metrics[name]

	return m, ok
}

// Names returns registered metric names in registration order.
func (r *Registry[In, Out]) Names() []string {
	names := make([]string, len(r.order))
	copy(names, r.order)

	return names
}

// All returns the metrics in registration order.
func (r *Registry[In, Out]) All() []Metric[In, Out] {
	out := make([]Metric[In, Out], 0, len(r.order))

	for _, name := range r.order {
		out = append(out, r.metrics[name])
	}

	return out
}

// Result is one computed metric value.
type Result[Out any] struct {
	Name        string `json:"name"`
	DisplayName string `json:"display_name"`
	Value       Out    `json:"value"`
}

// ComputeAll evaluates every metric on input in registration order.
func (r *Registry[In, Out]) ComputeAll(input In) []Result[Out] {
	results := make([]Result[Out], 0, len(r.order))

	for _, m := range r.All() {
		results = append(results, Result[Out]{
			Name:        m.Name(),
			DisplayName: m.DisplayName(),
			Value:       m.Compute(input),
		})
	}

	return results
}
