// Package content reads and writes bingo catalog documents and ships the
// embedded Landstalker catalog.
//
// A document is a self-describing list of pools plus an index of pool ids or
// nulls. JSON and YAML encodings carry the same fields.
package content

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/louisbranch/landstalker-bingo/internal/services/bingo/domain"
	"gopkg.in/yaml.v3"
)

// Format selects a document encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatFromPath infers the document format from a file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("unsupported catalog file extension %q", filepath.Ext(path))
	}
}

// Document is the serialized catalog shape.
type Document struct {
	ID        string         `json:"id" yaml:"id"`
	BoardSize int            `json:"board_size,omitempty" yaml:"board_size,omitempty"`
	Pools     []PoolDocument `json:"pools" yaml:"pools"`
	Index     []*string      `json:"index" yaml:"index"`
}

// PoolDocument is one serialized pool.
type PoolDocument struct {
	ID    string         `json:"id" yaml:"id"`
	Goals []GoalDocument `json:"goals" yaml:"goals"`
}

// GoalDocument is one serialized goal.
type GoalDocument struct {
	Name string   `json:"name" yaml:"name"`
	Tags []string `json:"tags" yaml:"tags,flow"`
}

// Decode parses raw in the given format and builds a validated catalog.
//
// Every failure, including syntax errors and unknown tags, is reported as a
// *domain.MalformedCatalogError. A board_size in the document is applied
// before opts, so callers can still override it.
func Decode(raw []byte, format Format, opts ...domain.Option) (*domain.Catalog, error) {
	var doc Document
	switch format {
	case FormatJSON:
		decoder := json.NewDecoder(bytes.NewReader(raw))
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&doc); err != nil {
			return nil, domain.MalformedWrap("decode json document", err)
		}
		if err := decoder.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
			return nil, domain.MalformedWrap("decode json document", trailingDataError(err))
		}
	case FormatYAML:
		decoder := yaml.NewDecoder(bytes.NewReader(raw))
		decoder.KnownFields(true)
		if err := decoder.Decode(&doc); err != nil {
			return nil, domain.MalformedWrap("decode yaml document", err)
		}
		if err := decoder.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
			return nil, domain.MalformedWrap("decode yaml document", trailingDataError(err))
		}
	default:
		return nil, domain.Malformed("unsupported document format %q", format)
	}
	return FromDocument(doc, opts...)
}

func trailingDataError(err error) error {
	if err == nil {
		return errors.New("unexpected data after document")
	}
	return fmt.Errorf("unexpected data after document: %w", err)
}

// FromDocument converts a decoded document into a validated catalog.
func FromDocument(doc Document, opts ...domain.Option) (*domain.Catalog, error) {
	def := domain.Definition{
		ID:    doc.ID,
		Pools: make([]domain.Pool, 0, len(doc.Pools)),
		Index: make([]domain.PoolID, len(doc.Index)),
	}
	for _, rawPool := range doc.Pools {
		pool := domain.Pool{
			ID:    domain.PoolID(rawPool.ID),
			Goals: make([]domain.Goal, 0, len(rawPool.Goals)),
		}
		for _, rawGoal := range rawPool.Goals {
			tags, err := domain.ParseTagSet(rawGoal.Tags)
			if err != nil {
				return nil, domain.MalformedWrap(fmt.Sprintf("pool %q goal %q", rawPool.ID, rawGoal.Name), err)
			}
			pool.Goals = append(pool.Goals, domain.Goal{Name: rawGoal.Name, Tags: tags})
		}
		def.Pools = append(def.Pools, pool)
	}
	for position, ref := range doc.Index {
		if ref == nil {
			continue
		}
		if strings.TrimSpace(*ref) == "" {
			return nil, domain.Malformed("slot %d has a blank pool reference; use null for an unassigned slot", position)
		}
		def.Index[position] = domain.PoolID(*ref)
	}

	if doc.BoardSize != 0 {
		opts = append([]domain.Option{domain.WithBoardSize(doc.BoardSize)}, opts...)
	}
	return domain.New(def, opts...)
}

// ToDocument converts a catalog into its serialized shape.
func ToDocument(catalog *domain.Catalog) Document {
	def := catalog.Definition()
	doc := Document{
		ID:        def.ID,
		BoardSize: catalog.BoardSize(),
		Pools:     make([]PoolDocument, 0, len(def.Pools)),
		Index:     make([]*string, len(def.Index)),
	}
	for _, pool := range def.Pools {
		rawPool := PoolDocument{
			ID:    string(pool.ID),
			Goals: make([]GoalDocument, 0, len(pool.Goals)),
		}
		for _, goal := range pool.Goals {
			rawPool.Goals = append(rawPool.Goals, GoalDocument{
				Name: goal.Name,
				Tags: goal.Tags.Labels(),
			})
		}
		doc.Pools = append(doc.Pools, rawPool)
	}
	for position, ref := range def.Index {
		if ref == "" {
			continue
		}
		value := string(ref)
		doc.Index[position] = &value
	}
	return doc
}

// Encode serializes catalog in the given format.
func Encode(catalog *domain.Catalog, format Format) ([]byte, error) {
	if catalog == nil {
		return nil, fmt.Errorf("catalog is required")
	}
	doc := ToDocument(catalog)
	switch format {
	case FormatJSON:
		data, err := json.MarshalIndent(doc, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("encode json document: %w", err)
		}
		return append(data, '\n'), nil
	case FormatYAML:
		var buf bytes.Buffer
		encoder := yaml.NewEncoder(&buf)
		encoder.SetIndent(2)
		if err := encoder.Encode(doc); err != nil {
			return nil, fmt.Errorf("encode yaml document: %w", err)
		}
		if err := encoder.Close(); err != nil {
			return nil, fmt.Errorf("encode yaml document: %w", err)
		}
		return buf.Bytes(), nil
	default:
		return nil, fmt.Errorf("unsupported document format %q", format)
	}
}

// Load reads and decodes a catalog file, inferring the format from its name.
func Load(path string, opts ...domain.Option) (*domain.Catalog, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog %s: %w", path, err)
	}
	catalog, err := Decode(raw, format, opts...)
	if err != nil {
		return nil, fmt.Errorf("load catalog %s: %w", path, err)
	}
	return catalog, nil
}

// Save encodes catalog and writes it to path, inferring the format from its name.
func Save(path string, catalog *domain.Catalog) error {
	format, err := FormatFromPath(path)
	if err != nil {
		return err
	}
	data, err := Encode(catalog, format)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write catalog %s: %w", path, err)
	}
	return nil
}
