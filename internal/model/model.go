// Package model reads and writes automaton definition files. Definitions
// are YAML (JSON is accepted as well) and name locations instead of
// numbering them.
package model

import (
	"bytes"
	"crypto/sha256"
	"embed"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path"
	"sort"
	"strings"

	"github.com/danielpatrickdp/vcalearn/internal/vca"
	"gopkg.in/yaml.v3"
)

// MaxDefinitionSize is the largest definition file accepted (1MB).
const MaxDefinitionSize = 1024 * 1024

// ErrUnknownBuiltin is returned by Builtin for names it does not know.
var ErrUnknownBuiltin = errors.New("unknown builtin definition")

//go:embed builtin/*.yaml
var builtins embed.FS

// #region definition

type AlphabetDef struct {
	Calls     []string `yaml:"calls" json:"calls"`
	Returns   []string `yaml:"returns" json:"returns"`
	Internals []string `yaml:"internals,omitempty" json:"internals,omitempty"`
}

type LocationDef struct {
	Name      string `yaml:"name" json:"name"`
	Accepting bool   `yaml:"accepting,omitempty" json:"accepting,omitempty"`
}

type TransitionDef struct {
	From    string `yaml:"from" json:"from"`
	Counter int    `yaml:"counter" json:"counter"`
	Symbol  string `yaml:"symbol" json:"symbol"`
	To      string `yaml:"to" json:"to"`
}

// Definition is the file form of an m-VCA.
type Definition struct {
	Name        string          `yaml:"name" json:"name"`
	Alphabet    AlphabetDef     `yaml:"alphabet" json:"alphabet"`
	Threshold   int             `yaml:"threshold" json:"threshold"`
	Initial     string          `yaml:"initial" json:"initial"`
	Locations   []LocationDef   `yaml:"locations" json:"locations"`
	Transitions []TransitionDef `yaml:"transitions" json:"transitions"`
}

// #endregion definition

// #region load

// Parse decodes a definition. Unknown fields are rejected.
func Parse(data []byte) (*Definition, error) {
	if len(data) > MaxDefinitionSize {
		return nil, fmt.Errorf("definition is %d bytes, limit %d", len(data), MaxDefinitionSize)
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	var d Definition
	if err := dec.Decode(&d); err != nil {
		return nil, fmt.Errorf("decode definition: %w", err)
	}
	return &d, nil
}

// Load reads a definition file.
func Load(filename string) (*Definition, error) {
	info, err := os.Stat(filename)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", filename, err)
	}
	if info.Size() > MaxDefinitionSize {
		return nil, fmt.Errorf("%s is %d bytes, limit %d", filename, info.Size(), MaxDefinitionSize)
	}
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", filename, err)
	}
	d, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	return d, nil
}

// Builtin returns one of the embedded example definitions.
func Builtin(name string) (*Definition, error) {
	data, err := builtins.ReadFile(path.Join("builtin", name+".yaml"))
	if err != nil {
		return nil, fmt.Errorf("%q: %w", name, ErrUnknownBuiltin)
	}
	return Parse(data)
}

// BuiltinNames lists the embedded definitions.
func BuiltinNames() []string {
	entries, _ := builtins.ReadDir("builtin")
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, strings.TrimSuffix(e.Name(), ".yaml"))
	}
	sort.Strings(names)
	return names
}

// Resolve loads "builtin:<name>" from the embedded set and anything else
// from disk.
func Resolve(ref string) (*Definition, error) {
	if name, ok := strings.CutPrefix(ref, "builtin:"); ok {
		return Builtin(name)
	}
	return Load(ref)
}

// #endregion load

// #region build

func symbols(names []string) []vca.Symbol {
	out := make([]vca.Symbol, len(names))
	for i, n := range names {
		out[i] = vca.Symbol(n)
	}
	return out
}

// BuildAlphabet validates and builds the alphabet alone.
func (d *Definition) BuildAlphabet() (*vca.Alphabet, error) {
	return vca.NewAlphabet(symbols(d.Alphabet.Calls), symbols(d.Alphabet.Returns), symbols(d.Alphabet.Internals))
}

// Build turns the definition into an automaton.
func (d *Definition) Build() (*vca.VCA, error) {
	alphabet, err := d.BuildAlphabet()
	if err != nil {
		return nil, fmt.Errorf("definition %s: %w", d.Name, err)
	}
	if d.Threshold < 0 {
		return nil, fmt.Errorf("definition %s: threshold %d: %w", d.Name, d.Threshold, vca.ErrInvalidParameter)
	}
	v := vca.New(alphabet, d.Threshold)
	locs := make(map[string]vca.Location, len(d.Locations))
	for _, l := range d.Locations {
		if _, dup := locs[l.Name]; dup || l.Name == "" {
			return nil, fmt.Errorf("definition %s: location %q: %w", d.Name, l.Name, vca.ErrInvalidParameter)
		}
		locs[l.Name] = v.AddLocation(l.Accepting)
	}
	if len(d.Locations) > 0 {
		start, ok := locs[d.Initial]
		if !ok {
			return nil, fmt.Errorf("definition %s: initial location %q: %w", d.Name, d.Initial, vca.ErrInvalidParameter)
		}
		if err := v.SetInitial(start); err != nil {
			return nil, fmt.Errorf("definition %s: %w", d.Name, err)
		}
	}
	for _, t := range d.Transitions {
		from, ok := locs[t.From]
		to, ok2 := locs[t.To]
		if !ok || !ok2 {
			return nil, fmt.Errorf("definition %s: transition %s -%s-> %s: unknown location: %w",
				d.Name, t.From, t.Symbol, t.To, vca.ErrInvalidParameter)
		}
		if err := v.SetSuccessor(from, vca.CounterValue(t.Counter), vca.Symbol(t.Symbol), to); err != nil {
			return nil, fmt.Errorf("definition %s: %w", d.Name, err)
		}
	}
	return v, nil
}

// #endregion build

// #region export

// FromVCA describes v. Locations are named q0, q1, ... in arena order.
func FromVCA(name string, v *vca.VCA) *Definition {
	alphabet := v.Alphabet()
	strs := func(t vca.SymbolType) []string {
		var out []string
		for _, s := range alphabet.OfType(t) {
			out = append(out, string(s))
		}
		return out
	}
	locName := func(l vca.Location) string { return fmt.Sprintf("q%d", l) }

	d := &Definition{
		Name: name,
		Alphabet: AlphabetDef{
			Calls:     strs(vca.Call),
			Returns:   strs(vca.Return),
			Internals: strs(vca.Internal),
		},
		Threshold: v.Threshold(),
	}
	for i := 0; i < v.NumLocations(); i++ {
		d.Locations = append(d.Locations, LocationDef{Name: locName(vca.Location(i)), Accepting: v.IsAccepting(vca.Location(i))})
	}
	if v.Initial() != vca.NoLocation {
		d.Initial = locName(v.Initial())
	}
	for _, t := range v.Transitions() {
		d.Transitions = append(d.Transitions, TransitionDef{
			From:    locName(t.From),
			Counter: t.Counter,
			Symbol:  string(t.Symbol),
			To:      locName(t.To),
		})
	}
	return d
}

// Marshal renders the definition as YAML.
func (d *Definition) Marshal() ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(d); err != nil {
		return nil, fmt.Errorf("encode definition: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("encode definition: %w", err)
	}
	return buf.Bytes(), nil
}

// Fingerprint hashes the decoded definition, so formatting and comments in
// the source file do not change it.
func (d *Definition) Fingerprint() (string, error) {
	data, err := d.Marshal()
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}

// CacheScope names the membership cache of a target: the reference it was
// loaded from plus a short fingerprint of its content.
func (d *Definition) CacheScope(ref string) (string, error) {
	fp, err := d.Fingerprint()
	if err != nil {
		return "", err
	}
	return ref + "@" + fp[:12], nil
}

// #endregion export
