package binance

import (
	"net/url"
	"strings"
)

// Params is an insertion-ordered parameter list. Order matters: the
// signature is computed over the exact serialized query string, so a
// reordering after signing would invalidate it.
type Params struct {
	pairs []pair
}

type pair struct {
	key   string
	value string
}

// NewParams creates an empty parameter list.
func NewParams() *Params {
	return &Params{}
}

// Add appends a key/value pair. Repeated keys are kept and serialized
// once per value in the order they were added.
func (p *Params) Add(key, value string) {
	p.pairs = append(p.pairs, pair{key: key, value: value})
}

// Get returns the first value for key.
func (p *Params) Get(key string) (string, bool) {
	for _, kv := range p.pairs {
		if kv.key == key {
			return kv.value, true
		}
	}
	return "", false
}

// Has reports whether key is present.
func (p *Params) Has(key string) bool {
	_, ok := p.Get(key)
	return ok
}

// Len returns the number of pairs.
func (p *Params) Len() int {
	return len(p.pairs)
}

// Clone returns an independent copy preserving order.
func (p *Params) Clone() *Params {
	c := &Params{pairs: make([]pair, len(p.pairs))}
	copy(c.pairs, p.pairs)
	return c
}

// Encode serializes the list as an URL query string with standard
// percent-encoding, in insertion order.
func (p *Params) Encode() string {
	var b strings.Builder
	for i, kv := range p.pairs {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(url.QueryEscape(kv.key))
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(kv.value))
	}
	return b.String()
}
