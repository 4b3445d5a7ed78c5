package observability

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"sync"
)

// family is one counter or gauge series set in text exposition format.
// Series are keyed by their rendered label pairs; an unlabelled family has
// the single key "".
type family struct {
	name   string
	help   string
	kind   string
	labels []string

	mu     sync.RWMutex
	series map[string]float64
}

func newFamily(kind, name, help string, labels ...string) *family {
	f := &family{name: name, help: help, kind: kind, labels: labels, series: map[string]float64{}}
	if len(labels) == 0 {
		f.series[""] = 0
	}
	return f
}

func counter(name, help string, labels ...string) *family {
	return newFamily("counter", name, help, labels...)
}

func gauge(name, help string, labels ...string) *family {
	return newFamily("gauge", name, help, labels...)
}

func (f *family) add(delta float64, values ...string) {
	key := pairs(f.labels, values)
	f.mu.Lock()
	f.series[key] += delta
	f.mu.Unlock()
}

func (f *family) set(v float64, values ...string) {
	key := pairs(f.labels, values)
	f.mu.Lock()
	f.series[key] = v
	f.mu.Unlock()
}

func (f *family) value(values ...string) float64 {
	key := pairs(f.labels, values)
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.series[key]
}

func (f *family) WritePrometheus(w io.Writer) error {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if err := header(w, f.name, f.help, f.kind); err != nil {
		return err
	}
	for _, key := range sortedKeys(f.series) {
		if _, err := fmt.Fprintf(w, "%s%s %f\n", f.name, braces(key), f.series[key]); err != nil {
			return err
		}
	}
	return nil
}

// histogram keeps cumulative bucket counts per label set.
type histogram struct {
	name   string
	help   string
	labels []string
	bounds []float64

	mu     sync.Mutex
	series map[string]*buckets
}

type buckets struct {
	counts []uint64
	sum    float64
	n      uint64
}

func newHistogram(name, help string, labels []string, bounds []float64) *histogram {
	b := append([]float64(nil), bounds...)
	sort.Float64s(b)
	return &histogram{name: name, help: help, labels: labels, bounds: b, series: map[string]*buckets{}}
}

func (h *histogram) observe(v float64, values ...string) {
	key := pairs(h.labels, values)
	h.mu.Lock()
	defer h.mu.Unlock()
	s := h.series[key]
	if s == nil {
		s = &buckets{counts: make([]uint64, len(h.bounds))}
		h.series[key] = s
	}
	for i, le := range h.bounds {
		if v <= le {
			s.counts[i]++
		}
	}
	s.sum += v
	s.n++
}

func (h *histogram) WritePrometheus(w io.Writer) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if err := header(w, h.name, h.help, "histogram"); err != nil {
		return err
	}
	for _, key := range sortedKeys(h.series) {
		s := h.series[key]
		for i, le := range h.bounds {
			bucket := join(key, `le="`+strconv.FormatFloat(le, 'g', -1, 64)+`"`)
			if _, err := fmt.Fprintf(w, "%s_bucket%s %d\n", h.name, braces(bucket), s.counts[i]); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintf(w, "%s_bucket%s %d\n", h.name, braces(join(key, `le="+Inf"`)), s.n); err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, "%s_sum%s %f\n%s_count%s %d\n", h.name, braces(key), s.sum, h.name, braces(key), s.n); err != nil {
			return err
		}
	}
	return nil
}

func header(w io.Writer, name, help, kind string) error {
	_, err := fmt.Fprintf(w, "# HELP %s %s\n# TYPE %s %s\n", name, help, name, kind)
	return err
}

var labelEscaper = strings.NewReplacer(`\`, `\\`, "\n", `\n`, `"`, `\"`)

// pairs renders name="value" pairs without braces. Missing values render
// as empty strings.
func pairs(names, values []string) string {
	if len(names) == 0 {
		return ""
	}
	var b strings.Builder
	for i, name := range names {
		if i > 0 {
			b.WriteByte(',')
		}
		v := ""
		if i < len(values) {
			v = values[i]
		}
		b.WriteString(name)
		b.WriteString(`="`)
		b.WriteString(labelEscaper.Replace(v))
		b.WriteByte('"')
	}
	return b.String()
}

func join(a, b string) string {
	if a == "" {
		return b
	}
	return a + "," + b
}

func braces(p string) string {
	if p == "" {
		return ""
	}
	return "{" + p + "}"
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
