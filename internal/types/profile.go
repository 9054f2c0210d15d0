package types

import (
	"bytes"
	"encoding/json"
	"fmt"
	"reflect"
	"strings"

	"gopkg.in/yaml.v3"
)

// Profile attribute vocabulary. Profiles may carry arbitrary additional keys.
const (
	AttrFirstName   = "firstName"
	AttrLastName    = "lastName"
	AttrEmail       = "email"
	AttrPhone       = "phone"
	AttrAddress     = "address"
	AttrCity        = "city"
	AttrState       = "state"
	AttrZipCode     = "zipCode"
	AttrCountry     = "country"
	AttrLocation    = "location"
	AttrGithub      = "github"
	AttrLinkedin    = "linkedin"
	AttrResume      = "resume"
	AttrCoverLetter = "coverLetter"
)

// OverlayAttributes lists the attributes an AI collaborator is allowed to return.
var OverlayAttributes = []string{
	AttrFirstName, AttrLastName, AttrEmail, AttrPhone, AttrLocation, AttrGithub,
	AttrLinkedin, AttrAddress, AttrCity, AttrState, AttrZipCode, AttrCountry,
}

// Profile maps semantic attribute names to values.
// Key order is preserved from construction or decoding, and iteration follows it.
type Profile struct {
	keys   []string
	values map[string]any
}

// NewProfile builds a profile from alternating key/value pairs.
func NewProfile(pairs ...string) Profile {
	p := Profile{}
	for i := 0; i+1 < len(pairs); i += 2 {
		p.Set(pairs[i], pairs[i+1])
	}
	return p
}

// Len returns the number of attributes.
func (p Profile) Len() int { return len(p.keys) }

// Keys returns the attribute names in insertion order.
func (p Profile) Keys() []string {
	out := make([]string, len(p.keys))
	copy(out, p.keys)
	return out
}

// Get returns the raw value stored for key.
func (p Profile) Get(key string) (any, bool) {
	v, ok := p.values[key]
	return v, ok
}

// String returns the value for key when it is a string.
func (p Profile) String(key string) (string, bool) {
	v, ok := p.values[key]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// Set stores value under key. New keys are appended to the iteration order.
func (p *Profile) Set(key string, value any) {
	if p.values == nil {
		p.values = make(map[string]any)
	}
	if _, exists := p.values[key]; !exists {
		p.keys = append(p.keys, key)
	}
	p.values[key] = value
}

// Delete removes key.
func (p *Profile) Delete(key string) {
	if _, ok := p.values[key]; !ok {
		return
	}
	delete(p.values, key)
	for i, k := range p.keys {
		if k == key {
			p.keys = append(p.keys[:i:i], p.keys[i+1:]...)
			break
		}
	}
}

// Clone returns a deep copy of the key order and a shallow copy of the values.
func (p Profile) Clone() Profile {
	out := Profile{
		keys:   make([]string, len(p.keys)),
		values: make(map[string]any, len(p.values)),
	}
	copy(out.keys, p.keys)
	for k, v := range p.values {
		out.values[k] = v
	}
	return out
}

// Merge returns a copy of p with every key of other written over it.
func (p Profile) Merge(other Profile) Profile {
	out := p.Clone()
	for _, k := range other.keys {
		out.Set(k, other.values[k])
	}
	return out
}

// Equal reports whether both profiles hold the same keys in the same order with
// values of the same type and content. The number 94105 and the string "94105" differ.
func (p Profile) Equal(other Profile) bool {
	if len(p.keys) != len(other.keys) {
		return false
	}
	for i, k := range p.keys {
		if other.keys[i] != k {
			return false
		}
		if !reflect.DeepEqual(p.values[k], other.values[k]) {
			return false
		}
	}
	return true
}

// Map returns the profile as a plain map. Key order is lost.
func (p Profile) Map() map[string]any {
	out := make(map[string]any, len(p.values))
	for k, v := range p.values {
		out[k] = v
	}
	return out
}

// MarshalJSON writes the profile as a JSON object in key order.
func (p Profile) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range p.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		vb, err := json.Marshal(p.values[k])
		if err != nil {
			return nil, fmt.Errorf("failed to marshal profile value %q: %w", k, err)
		}
		buf.Write(kb)
		buf.WriteByte(':')
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads a JSON object keeping the document's key order.
// A JSON null decodes to an empty profile.
func (p *Profile) UnmarshalJSON(data []byte) error {
	*p = Profile{}
	if strings.TrimSpace(string(data)) == "null" {
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("profile must be a JSON object")
	}

	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("unexpected profile key %v", tok)
		}
		var value any
		if err := dec.Decode(&value); err != nil {
			return fmt.Errorf("failed to decode profile value %q: %w", key, err)
		}
		p.Set(key, value)
	}

	_, err = dec.Token()
	return err
}

// MarshalYAML writes the profile as an ordered YAML mapping.
func (p Profile) MarshalYAML() (any, error) {
	node := &yaml.Node{Kind: yaml.MappingNode}
	for _, k := range p.keys {
		var value yaml.Node
		if err := value.Encode(p.values[k]); err != nil {
			return nil, fmt.Errorf("failed to encode profile value %q: %w", k, err)
		}
		node.Content = append(node.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: k},
			&value,
		)
	}
	return node, nil
}

// UnmarshalYAML reads a YAML mapping keeping its key order.
func (p *Profile) UnmarshalYAML(node *yaml.Node) error {
	*p = Profile{}
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("profile must be a YAML mapping, got kind %d", node.Kind)
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		var value any
		if err := node.Content[i+1].Decode(&value); err != nil {
			return fmt.Errorf("failed to decode profile value %q: %w", node.Content[i].Value, err)
		}
		p.Set(node.Content[i].Value, value)
	}
	return nil
}
