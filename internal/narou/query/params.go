// Package query turns typed requests into the ordered query strings the
// syosetu api expects.
package query

import (
	"net/url"
	"strconv"
	"strings"
)

// Param is a single name/value pair of a query string.
type Param struct {
	Name  string
	Value string
}

// Params is an ordered list of query parameters. Order is the order in which
// parameters were added, names are never repeated.
type Params struct {
	list []Param
}

func (p *Params) index(name string) int {
	for i, param := range p.list {
		if param.Name == name {
			return i
		}
	}
	return -1
}

// Add appends a parameter, replacing the value in place if name was already
// added.
func (p *Params) Add(name, value string) {
	if i := p.index(name); i >= 0 {
		p.list[i].Value = value
		return
	}
	p.list = append(p.list, Param{Name: name, Value: value})
}

// Set replaces the value of an existing parameter, it reports false when
// the parameter is absent.
func (p *Params) Set(name, value string) bool {
	i := p.index(name)
	if i < 0 {
		return false
	}
	p.list[i].Value = value
	return true
}

func (p *Params) Get(name string) (string, bool) {
	i := p.index(name)
	if i < 0 {
		return "", false
	}
	return p.list[i].Value, true
}

func (p *Params) Len() int {
	return len(p.list)
}

// List returns a copy of the parameters in order.
func (p *Params) List() []Param {
	out := make([]Param, len(p.list))
	copy(out, p.list)
	return out
}

// String adds name only if v is set.
func (p *Params) String(name string, v *string) {
	if v != nil {
		p.Add(name, *v)
	}
}

// Int adds name only if v is set.
func (p *Params) Int(name string, v *int) {
	if v != nil {
		p.Add(name, strconv.Itoa(*v))
	}
}

// Flag adds name as "1" or "0" only if v is set.
func (p *Params) Flag(name string, v *bool) {
	if v == nil {
		return
	}
	if *v {
		p.Add(name, "1")
		return
	}
	p.Add(name, "0")
}

// Values converts to url.Values, which loses ordering.
func (p *Params) Values() url.Values {
	values := url.Values{}
	for _, param := range p.list {
		values.Set(param.Name, param.Value)
	}
	return values
}

// Encode renders the parameters as a query string in insertion order.
func (p *Params) Encode() string {
	var b strings.Builder
	for i, param := range p.list {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(url.QueryEscape(param.Name))
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(param.Value))
	}
	return b.String()
}
