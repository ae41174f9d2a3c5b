package outcomes

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"math/big"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gonum.org/v1/gonum/stat"
	"gopkg.in/yaml.v3"

	"github.com/qaclearn/shorpost/pkg/engine"
)

// Format is a counts file encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// Histogram maps a register reading to its shot count. Keys are bitstrings
// as printed by the sampler ("0100 0000" groups are concatenated) or hex
// values with a 0x prefix.
type Histogram map[string]uint64

// Document is a counts file that also carries the run parameters.
type Document struct {
	PhaseBits uint      `json:"phase_bits,omitempty" yaml:"phase_bits,omitempty"`
	N         *big.Int  `json:"n,omitempty" yaml:"n,omitempty"`
	A         *big.Int  `json:"a,omitempty" yaml:"a,omitempty"`
	Shots     uint64    `json:"shots,omitempty" yaml:"shots,omitempty"`
	Seed      uint64    `json:"seed,omitempty" yaml:"seed,omitempty"`
	Counts    Histogram `json:"counts" yaml:"counts"`
}

// FormatFromPath picks a format from the file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("unsupported counts file extension: %q", filepath.Ext(path))
	}
}

// Load reads a counts file. Bare histograms come back as a Document with
// only Counts set.
func Load(path string) (*Document, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read counts file: %w", err)
	}
	doc, err := Parse(data, format)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return doc, nil
}

// Parse decodes either a Document or a bare Histogram.
func Parse(data []byte, format Format) (*Document, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, fmt.Errorf("empty counts file")
	}

	var doc Document
	if err := unmarshal(data, format, &doc); err == nil && len(doc.Counts) > 0 {
		return &doc, nil
	}

	var hist Histogram
	if err := unmarshal(data, format, &hist); err != nil {
		return nil, fmt.Errorf("failed to decode counts: %w", err)
	}
	if len(hist) == 0 {
		return nil, fmt.Errorf("counts file has no outcomes")
	}
	return &Document{Counts: hist}, nil
}

func unmarshal(data []byte, format Format, v interface{}) error {
	switch format {
	case FormatJSON:
		return json.Unmarshal(data, v)
	case FormatYAML:
		return yaml.Unmarshal(data, v)
	default:
		return fmt.Errorf("unsupported format: %q", format)
	}
}

// Marshal encodes doc in the given format.
func Marshal(doc *Document, format Format) ([]byte, error) {
	switch format {
	case FormatJSON:
		return json.MarshalIndent(doc, "", "  ")
	case FormatYAML:
		return yaml.Marshal(doc)
	default:
		return nil, fmt.Errorf("unsupported format: %q", format)
	}
}

// Write saves doc to path, choosing the format by extension.
func Write(path string, doc *Document) error {
	format, err := FormatFromPath(path)
	if err != nil {
		return err
	}
	data, err := Marshal(doc, format)
	if err != nil {
		return fmt.Errorf("failed to encode counts: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write counts file: %w", err)
	}
	return nil
}

// ParseKey converts a histogram key into its integer value and, for
// bitstrings, the register width it was printed with (0 for hex keys).
func ParseKey(key string) (*big.Int, int, error) {
	k := strings.Join(strings.Fields(key), "")
	if k == "" {
		return nil, 0, fmt.Errorf("empty outcome key")
	}

	if strings.HasPrefix(k, "0x") || strings.HasPrefix(k, "0X") {
		v, ok := new(big.Int).SetString(k[2:], 16)
		if !ok {
			return nil, 0, fmt.Errorf("invalid hex outcome %q", key)
		}
		return v, 0, nil
	}

	if strings.Trim(k, "01") != "" {
		return nil, 0, fmt.Errorf("invalid bitstring outcome %q", key)
	}
	v, _ := new(big.Int).SetString(k, 2)
	return v, len(k), nil
}

// InferBits returns the widest bitstring key. Hex keys carry no width; a
// histogram of only hex keys yields an error.
func (h Histogram) InferBits() (uint, error) {
	width := 0
	for key := range h {
		_, w, err := ParseKey(key)
		if err != nil {
			return 0, err
		}
		if w > width {
			width = w
		}
	}
	if width == 0 {
		return 0, fmt.Errorf("cannot infer phase bits from counts keys")
	}
	return uint(width), nil
}

// Outcomes converts the histogram into engine outcomes for a register of
// the given width. Keys naming the same value are merged. Zero counts are
// dropped. The result is ordered by value.
func (h Histogram) Outcomes(bits uint) ([]engine.MeasurementOutcome, error) {
	merged := make(map[string]*engine.MeasurementOutcome, len(h))
	for key, count := range h {
		v, width, err := ParseKey(key)
		if err != nil {
			return nil, err
		}
		if width > int(bits) || v.BitLen() > int(bits) {
			return nil, fmt.Errorf("outcome %q does not fit in %d phase bits", key, bits)
		}
		if count == 0 {
			continue
		}
		id := v.String()
		if o, ok := merged[id]; ok {
			o.Count += count
			continue
		}
		merged[id] = &engine.MeasurementOutcome{Value: v, Count: count}
	}

	out := make([]engine.MeasurementOutcome, 0, len(merged))
	for _, o := range merged {
		out = append(out, *o)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Value.Cmp(out[j].Value) < 0
	})
	return out, nil
}

// Summary describes the shape of a histogram.
type Summary struct {
	Shots    uint64 `json:"shots"`
	Distinct int    `json:"distinct"`

	// Mode is the most frequent key; ties go to the smallest key.
	Mode      string  `json:"mode"`
	ModeCount uint64  `json:"mode_count"`
	ModeShare float64 `json:"mode_share"`

	// EntropyBits is the Shannon entropy of the empirical distribution.
	EntropyBits float64 `json:"entropy_bits"`
}

// Summarize computes the histogram summary.
func (h Histogram) Summarize() Summary {
	keys := make([]string, 0, len(h))
	for k := range h {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var s Summary
	for _, k := range keys {
		c := h[k]
		if c == 0 {
			continue
		}
		s.Shots += c
		s.Distinct++
		if c > s.ModeCount {
			s.Mode = k
			s.ModeCount = c
		}
	}
	if s.Shots == 0 {
		return s
	}

	s.ModeShare = float64(s.ModeCount) / float64(s.Shots)
	p := make([]float64, 0, s.Distinct)
	for _, k := range keys {
		if c := h[k]; c > 0 {
			p = append(p, float64(c)/float64(s.Shots))
		}
	}
	s.EntropyBits = stat.Entropy(p) / math.Ln2
	return s
}
