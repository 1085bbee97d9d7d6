package outcome

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/gatorbacon/wrestledata-simple-sub000/pkg/errors"
)

// Group is a single comparison group: its competitors plus the raw results
// and/or pre-computed evidence between them.
type Group struct {
	Name        string       `json:"name"`
	Competitors []Competitor `json:"competitors"`
	Matches     []Match      `json:"matches,omitempty"`
	Evidence    []Evidence   `json:"evidence,omitempty"`
}

// Validate checks the group name and competitor IDs.
func (g *Group) Validate() error {
	if err := errors.ValidateGroupName(g.Name); err != nil {
		return err
	}
	seen := make(map[string]bool, len(g.Competitors))
	for i, c := range g.Competitors {
		if err := errors.ValidateCompetitorID(c.ID); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidInput, err, "group %s: competitor %d", g.Name, i)
		}
		if seen[c.ID] {
			return errors.New(errors.ErrCodeInvalidInput, "group %s: duplicate competitor id %q", g.Name, c.ID)
		}
		seen[c.ID] = true
	}
	return nil
}

// AllEvidence returns the explicit evidence followed by the evidence derived
// from matches.
func (g *Group) AllEvidence() []Evidence {
	derived := BuildEvidence(g.Competitors, g.Matches)
	out := make([]Evidence, 0, len(g.Evidence)+len(derived))
	out = append(out, g.Evidence...)
	return append(out, derived...)
}

// Matrix validates the group and resolves its evidence into a Matrix.
func (g *Group) Matrix(w Weights) (*Matrix, error) {
	if err := g.Validate(); err != nil {
		return nil, err
	}
	return Resolve(g.Competitors, g.AllEvidence(), w)
}

// ReadGroup decodes a group from JSON.
func ReadGroup(r io.Reader) (*Group, error) {
	var g Group
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&g); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode group")
	}
	return &g, nil
}

// LoadGroup reads a group from a JSON file. When the file does not name its
// group, the file's base name (without extension) is used.
func LoadGroup(path string) (*Group, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeNotFound, err, "group file %s", path)
		}
		return nil, err
	}
	defer f.Close()

	g, err := ReadGroup(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if g.Name == "" {
		g.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return g, nil
}

// WriteGroup encodes a group as indented JSON.
func WriteGroup(w io.Writer, g *Group) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(g)
}

// GroupFiles lists the *.json group files in dir, sorted by name.
func GroupFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var paths []string
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".json") {
			continue
		}
		paths = append(paths, filepath.Join(dir, e.Name()))
	}
	slices.Sort(paths)
	return paths, nil
}
