package fs

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"sort"
	"strings"

	json "github.com/goccy/go-json"
	"golang.org/x/net/html"
	"gopkg.in/yaml.v3"

	"github.com/aretw0/rabbithole/pkg/core"
	"github.com/aretw0/rabbithole/pkg/dom"
)

// ErrSingleRecord is returned when a one-record format is asked to hold several.
var ErrSingleRecord = errors.New("format holds a single record")

// Serializer turns records into file contents readable by the matching
// Deserializer.
type Serializer interface {
	Serialize(records []core.Record) ([]byte, error)
}

// Serializers maps format identifiers to serializers.
type Serializers map[string]Serializer

// DefaultSerializers returns the standard set of serializers.
func DefaultSerializers() Serializers {
	return Serializers{
		FormatTiddlyWiki: &StoreAreaSerializer{},
		".tid":           &TidSerializer{},
		".json":          &JSONSerializer{},
		".yaml":          &YAMLSerializer{},
		".yml":           &YAMLSerializer{},
		".md":            &MarkdownSerializer{},
		".csv":           &CSVSerializer{},
	}
}

// WriteRecords serializes records according to the extension of path and
// writes the file atomically.
func WriteRecords(serializers Serializers, path string, records []core.Record) error {
	format := FormatForFilename(path)
	s, ok := serializers[format]
	if !ok {
		return fmt.Errorf("no serializer for %q", format)
	}
	data, err := s.Serialize(records)
	if err != nil {
		return fmt.Errorf("serialize %s: %w", format, err)
	}
	if err := writeFileAtomic(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// fieldNames returns the field names of r with title first, then sorted,
// text excluded.
func fieldNames(r core.Record) []string {
	names := []string{core.FieldTitle}
	for k := range r.Fields {
		if k != core.FieldTitle && k != core.FieldText {
			names = append(names, k)
		}
	}
	sort.Strings(names[1:])
	return names
}

func fieldValue(r core.Record, name string) string {
	if name == core.FieldTitle {
		return r.Title
	}
	return MarshalCSVValue(r.Fields[name])
}

// --- Store area (HTML) ---

// StoreAreaSerializer writes a minimal composite document holding a
// `#storeArea` div with one `div[title]` per record.
type StoreAreaSerializer struct{}

func (s *StoreAreaSerializer) Serialize(records []core.Record) ([]byte, error) {
	area := dom.NewElement("div")
	dom.SetAttr(area, "id", "storeArea")
	for _, r := range records {
		div := dom.NewElement("div")
		for _, name := range fieldNames(r) {
			dom.SetAttr(div, name, fieldValue(r, name))
		}
		pre := dom.NewElement("pre")
		dom.Attach(pre, dom.NewText(r.Text()), nil)
		dom.Attach(div, pre, nil)
		dom.Attach(area, div, nil)
	}

	var buf bytes.Buffer
	buf.WriteString("<!DOCTYPE html>\n<html><head><meta charset=\"utf-8\"></head><body>\n")
	if err := html.Render(&buf, area); err != nil {
		return nil, err
	}
	buf.WriteString("\n</body></html>\n")
	return buf.Bytes(), nil
}

// --- .tid ---

// TidSerializer writes header lines, a blank line, then the text.
type TidSerializer struct{}

func (s *TidSerializer) Serialize(records []core.Record) ([]byte, error) {
	if len(records) != 1 {
		return nil, fmt.Errorf("%w: got %d", ErrSingleRecord, len(records))
	}
	r := records[0]

	var buf bytes.Buffer
	for _, name := range fieldNames(r) {
		v := fieldValue(r, name)
		if strings.ContainsAny(v, "\r\n") {
			return nil, fmt.Errorf("field %q: multi-line values are not supported", name)
		}
		fmt.Fprintf(&buf, "%s: %s\n", name, v)
	}
	buf.WriteString("\n")
	buf.WriteString(r.Text())
	return buf.Bytes(), nil
}

// --- JSON ---

// JSONSerializer writes an array of field objects.
type JSONSerializer struct{}

func (s *JSONSerializer) Serialize(records []core.Record) ([]byte, error) {
	payload := make([]core.Fields, 0, len(records))
	for _, r := range records {
		payload = append(payload, withTitle(r))
	}
	return json.MarshalIndent(payload, "", "  ")
}

// --- YAML ---

// YAMLSerializer writes a sequence of field mappings.
type YAMLSerializer struct{}

func (s *YAMLSerializer) Serialize(records []core.Record) ([]byte, error) {
	payload := make([]core.Fields, 0, len(records))
	for _, r := range records {
		payload = append(payload, withTitle(r))
	}

	var buf bytes.Buffer
	encoder := yaml.NewEncoder(&buf)
	encoder.SetIndent(2)
	if err := encoder.Encode(payload); err != nil {
		return nil, err
	}
	if err := encoder.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func withTitle(r core.Record) core.Fields {
	f := r.Fields.Clone()
	f[core.FieldTitle] = r.Title
	return f
}

// --- Markdown ---

// MarkdownSerializer writes YAML frontmatter followed by the text.
type MarkdownSerializer struct{}

func (s *MarkdownSerializer) Serialize(records []core.Record) ([]byte, error) {
	if len(records) != 1 {
		return nil, fmt.Errorf("%w: got %d", ErrSingleRecord, len(records))
	}
	r := records[0]

	meta := withTitle(r)
	delete(meta, core.FieldText)
	if meta[core.FieldType] == TypeMarkdown {
		delete(meta, core.FieldType)
	}

	var buf bytes.Buffer
	buf.WriteString("---\n")
	encoder := yaml.NewEncoder(&buf)
	encoder.SetIndent(2)
	if err := encoder.Encode(meta); err != nil {
		return nil, err
	}
	if err := encoder.Close(); err != nil {
		return nil, err
	}
	buf.WriteString("---\n")
	buf.WriteString(r.Text())
	return buf.Bytes(), nil
}

// --- CSV ---

// CSVSerializer writes a header row with the union of field names, then
// one row per record. Complex values are written as JSON.
type CSVSerializer struct{}

func (s *CSVSerializer) Serialize(records []core.Record) ([]byte, error) {
	seen := map[string]bool{core.FieldTitle: true, core.FieldText: true}
	var extra []string
	for _, r := range records {
		for k := range r.Fields {
			if !seen[k] {
				seen[k] = true
				extra = append(extra, k)
			}
		}
	}
	sort.Strings(extra)
	header := append([]string{core.FieldTitle}, extra...)
	header = append(header, core.FieldText)

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(header); err != nil {
		return nil, err
	}
	for _, r := range records {
		row := make([]string, len(header))
		for i, h := range header {
			switch h {
			case core.FieldTitle:
				row[i] = r.Title
			case core.FieldText:
				row[i] = r.Text()
			default:
				row[i] = MarshalCSVValue(r.Fields[h])
			}
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}

// MarshalCSVValue converts a value to a string, using JSON for complex types (Map, Slice).
func MarshalCSVValue(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case map[string]any, []any, map[string]string, []string, core.Fields:
		b, err := json.Marshal(v)
		if err == nil {
			return string(b)
		}
	}
	return fmt.Sprintf("%v", v)
}
