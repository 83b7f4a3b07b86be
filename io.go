package cfr

import (
	"encoding/gob"
	"fmt"
	"io"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// SaveProfile writes the profile to w in gob format.
func SaveProfile(w io.Writer, p *Profile) error {
	enc := gob.NewEncoder(w)
	if err := enc.Encode(p.Iterations); err != nil {
		return errors.Wrap(err, "encoding iterations")
	}

	if err := enc.Encode(len(p.Entries)); err != nil {
		return errors.Wrap(err, "encoding number of entries")
	}

	for _, e := range p.Entries {
		if err := enc.Encode(e); err != nil {
			return errors.Wrapf(err, "encoding %s", e.InfoSet)
		}
	}

	return nil
}

// LoadProfile reads a profile written by SaveProfile.
func LoadProfile(r io.Reader) (*Profile, error) {
	dec := gob.NewDecoder(r)
	var iter int
	if err := dec.Decode(&iter); err != nil {
		return nil, errors.Wrap(err, "decoding iterations")
	}

	var nEntries int
	if err := dec.Decode(&nEntries); err != nil {
		return nil, errors.Wrap(err, "decoding number of entries")
	}

	if nEntries < 0 {
		return nil, errors.Errorf("corrupt profile: %d entries", nEntries)
	}

	// The count is untrusted, so entries grow as they are decoded.
	var entries []ProfileEntry
	for i := 0; i < nEntries; i++ {
		var e ProfileEntry
		if err := dec.Decode(&e); err != nil {
			return nil, errors.Wrapf(err, "decoding entry %d", i)
		}

		if err := e.validate(); err != nil {
			return nil, err
		}

		entries = append(entries, e)
	}

	return NewProfile(iter, entries), nil
}

// WriteProfileYAML writes the profile to w as a YAML document.
func WriteProfileYAML(w io.Writer, p *Profile) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(p); err != nil {
		return errors.Wrap(err, "encoding profile")
	}

	return errors.Wrap(enc.Close(), "closing encoder")
}

// ReadProfileYAML reads a profile written by WriteProfileYAML.
func ReadProfileYAML(r io.Reader) (*Profile, error) {
	var p Profile
	if err := yaml.NewDecoder(r).Decode(&p); err != nil {
		return nil, errors.Wrap(err, "decoding profile")
	}

	for _, e := range p.Entries {
		if err := e.validate(); err != nil {
			return nil, err
		}
	}

	return NewProfile(p.Iterations, p.Entries), nil
}

func (e ProfileEntry) validate() error {
	if len(e.Actions) != len(e.Strategy) {
		return fmt.Errorf("corrupt entry %q: %d actions but %d probabilities",
			e.InfoSet, len(e.Actions), len(e.Strategy))
	}

	return nil
}
