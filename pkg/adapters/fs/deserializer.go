package fs

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	json "github.com/goccy/go-json"
	"golang.org/x/net/html"
	"gopkg.in/yaml.v3"

	"github.com/aretw0/rabbithole/pkg/core"
	"github.com/aretw0/rabbithole/pkg/dom"
)

// Format identifiers that are not plain extensions.
const (
	FormatTiddlyWiki = "application/x-tiddlywiki"
	TypeMarkdown     = "text/x-markdown"
)

// FormatForFilename derives the format identifier from a filename: ".html"
// maps to the composite document format, any other extension is used as is,
// leading dot included.
func FormatForFilename(name string) string {
	ext := filepath.Ext(name)
	if ext == ".html" {
		return FormatTiddlyWiki
	}
	return ext
}

// Deserializer turns file contents into records. Fields carries defaults
// (typically the title) that parsed fields override.
type Deserializer interface {
	Deserialize(data []byte, fields core.Fields) ([]core.Record, error)
}

// DeserializerFunc adapts a function to Deserializer.
type DeserializerFunc func(data []byte, fields core.Fields) ([]core.Record, error)

// Deserialize implements Deserializer.
func (f DeserializerFunc) Deserialize(data []byte, fields core.Fields) ([]core.Record, error) {
	return f(data, fields)
}

// Registry maps format identifiers to deserializers.
type Registry struct {
	mu    sync.RWMutex
	byFmt map[string]Deserializer
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{byFmt: make(map[string]Deserializer)}
}

// DefaultRegistry returns the standard set of deserializers.
// Strict mode keeps numbers as json.Number to avoid precision loss.
func DefaultRegistry(strict bool) *Registry {
	r := NewRegistry()
	r.Register(FormatTiddlyWiki, &StoreAreaDeserializer{})
	r.Register(".tid", &TidDeserializer{})
	r.Register(".json", &JSONDeserializer{Strict: strict})
	r.Register(".yaml", &YAMLDeserializer{Strict: strict})
	r.Register(".yml", &YAMLDeserializer{Strict: strict})
	r.Register(".md", &MarkdownDeserializer{Strict: strict})
	r.Register(".csv", &CSVDeserializer{Strict: strict})
	return r
}

// Register adds or replaces the deserializer for a format.
func (r *Registry) Register(format string, d Deserializer) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byFmt[format] = d
}

// Formats lists the registered formats in sorted order.
func (r *Registry) Formats() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.byFmt))
	for f := range r.byFmt {
		out = append(out, f)
	}
	sort.Strings(out)
	return out
}

// Deserialize parses data with the deserializer registered for format.
// Unknown formats yield a single record holding the data as text, typed
// with the format identifier.
func (r *Registry) Deserialize(format string, data []byte, fields core.Fields) ([]core.Record, error) {
	r.mu.RLock()
	d, ok := r.byFmt[format]
	r.mu.RUnlock()
	if !ok {
		return textRecord(data, fields, format), nil
	}
	records, err := d.Deserialize(data, fields)
	if err != nil {
		return nil, fmt.Errorf("deserialize %s: %w", format, err)
	}
	return records, nil
}

func textRecord(data []byte, defaults core.Fields, typ string) []core.Record {
	f := defaults.Clone()
	f[core.FieldText] = string(data)
	if typ != "" {
		f[core.FieldType] = typ
	}
	rec, ok := newRecord(defaults, f)
	if !ok {
		return nil
	}
	return []core.Record{rec}
}

// newRecord overlays parsed fields on the defaults. Records without a
// title are dropped.
func newRecord(defaults, parsed map[string]any) (core.Record, bool) {
	f := core.Fields(defaults).Clone()
	for k, v := range parsed {
		f[k] = v
	}
	title, _ := f[core.FieldTitle].(string)
	if title == "" {
		return core.Record{}, false
	}
	return core.NewRecord(title, f), true
}

// --- Store area (HTML) ---

// StoreAreaDeserializer reads the records of a composite HTML document: the
// `div[title]` children of `#storeArea`.
type StoreAreaDeserializer struct{}

var storeAreaUnescaper = strings.NewReplacer(`\n`, "\n", `\s`, `\`)

func (s *StoreAreaDeserializer) Deserialize(data []byte, fields core.Fields) ([]core.Record, error) {
	doc, err := html.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("invalid html: %w", err)
	}
	areas := dom.FindAll(doc, func(n *html.Node) bool {
		id, _ := dom.Attr(n, "id")
		return n.Type == html.ElementNode && id == "storeArea"
	})
	if len(areas) == 0 {
		return nil, nil
	}

	var records []core.Record
	for c := areas[0].FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode || c.Data != "div" {
			continue
		}
		parsed := make(map[string]any, len(c.Attr)+1)
		for _, a := range c.Attr {
			parsed[a.Key] = a.Val
		}
		if pre := firstChildElement(c, "pre"); pre != nil {
			parsed[core.FieldText] = dom.TextContent(pre)
		} else {
			parsed[core.FieldText] = storeAreaUnescaper.Replace(dom.TextContent(c))
		}
		if rec, ok := newRecord(nil, parsed); ok {
			records = append(records, rec)
		}
	}
	return records, nil
}

func firstChildElement(n *html.Node, tag string) *html.Node {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && c.Data == tag {
			return c
		}
	}
	return nil
}

// --- .tid ---

// TidDeserializer reads `name: value` header lines, a blank line, then the text.
type TidDeserializer struct{}

func (s *TidDeserializer) Deserialize(data []byte, fields core.Fields) ([]core.Record, error) {
	parsed := make(map[string]any)
	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 0, 64*1024), len(data)+1)

	var body []string
	inHeader := true
	for scanner.Scan() {
		line := strings.TrimSuffix(scanner.Text(), "\r")
		if inHeader {
			if strings.TrimSpace(line) == "" {
				inHeader = false
				continue
			}
			name, value, ok := strings.Cut(line, ":")
			if !ok {
				return nil, fmt.Errorf("invalid tid header line %q", line)
			}
			parsed[strings.TrimSpace(name)] = strings.TrimSpace(value)
			continue
		}
		body = append(body, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	parsed[core.FieldText] = strings.Join(body, "\n")

	rec, ok := newRecord(fields, parsed)
	if !ok {
		return nil, nil
	}
	return []core.Record{rec}, nil
}

// --- JSON ---

// JSONDeserializer reads an object or an array of objects.
type JSONDeserializer struct {
	// Strict enables strict number parsing (as json.Number) to avoid precision loss.
	Strict bool
}

func (s *JSONDeserializer) Deserialize(data []byte, fields core.Fields) ([]core.Record, error) {
	var payload any
	decoder := json.NewDecoder(bytes.NewReader(data))
	if s.Strict {
		decoder.UseNumber()
	}
	if err := decoder.Decode(&payload); err != nil {
		return nil, fmt.Errorf("invalid json: %w", err)
	}
	return recordsFromPayload(payload, fields)
}

// --- YAML ---

// YAMLDeserializer reads a mapping or a sequence of mappings.
type YAMLDeserializer struct {
	// Strict converts numbers to json.Number, matching JSON strict mode.
	Strict bool
}

func (s *YAMLDeserializer) Deserialize(data []byte, fields core.Fields) ([]core.Record, error) {
	var payload any
	if err := yaml.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("invalid yaml: %w", err)
	}
	if s.Strict {
		payload = recursiveNormalize(payload)
	}
	return recordsFromPayload(payload, fields)
}

func recordsFromPayload(payload any, fields core.Fields) ([]core.Record, error) {
	switch v := payload.(type) {
	case nil:
		return nil, nil
	case map[string]any:
		if rec, ok := newRecord(fields, withTextAlias(v)); ok {
			return []core.Record{rec}, nil
		}
		return nil, nil
	case []any:
		var records []core.Record
		for i, item := range v {
			m, ok := item.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("item %d: expected an object, got %T", i, item)
			}
			if rec, ok := newRecord(fields, withTextAlias(m)); ok {
				records = append(records, rec)
			}
		}
		return records, nil
	default:
		return nil, fmt.Errorf("expected an object or a list, got %T", payload)
	}
}

// withTextAlias accepts "content" as the text field when text is absent.
func withTextAlias(m map[string]any) map[string]any {
	if _, ok := m[core.FieldText]; ok {
		return m
	}
	c, ok := m["content"]
	if !ok {
		return m
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	delete(out, "content")
	out[core.FieldText] = c
	return out
}

// --- Markdown ---

// MarkdownDeserializer reads optional YAML frontmatter followed by the body.
type MarkdownDeserializer struct {
	// Strict converts frontmatter numbers to json.Number.
	Strict bool
}

func (s *MarkdownDeserializer) Deserialize(data []byte, fields core.Fields) ([]core.Record, error) {
	parsed := map[string]any{core.FieldType: TypeMarkdown}

	body := data
	if bytes.HasPrefix(data, []byte("---\n")) || bytes.HasPrefix(data, []byte("---\r\n")) {
		parts := bytes.SplitN(data[3:], []byte("\n---"), 2)
		if len(parts) == 1 {
			return nil, errors.New("frontmatter started but no closing delimiter found")
		}
		var meta map[string]any
		if err := yaml.Unmarshal(parts[0], &meta); err != nil {
			return nil, fmt.Errorf("failed to parse frontmatter: %w", err)
		}
		if s.Strict {
			meta, _ = recursiveNormalize(meta).(map[string]any)
		}
		for k, v := range meta {
			parsed[k] = v
		}
		body = bytes.TrimPrefix(bytes.TrimPrefix(parts[1], []byte("\r")), []byte("\n"))
	}
	parsed[core.FieldText] = string(body)

	rec, ok := newRecord(fields, parsed)
	if !ok {
		return nil, nil
	}
	return []core.Record{rec}, nil
}

// --- CSV ---

// CSVDeserializer reads a header row and one record per following row.
// A "content" column is accepted as the text field.
type CSVDeserializer struct {
	// Strict enables strict number parsing inside JSON-looking cells.
	Strict bool
}

func (s *CSVDeserializer) Deserialize(data []byte, fields core.Fields) ([]core.Record, error) {
	reader := csv.NewReader(bytes.NewReader(data))
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("invalid csv: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}

	headers := rows[0]
	var records []core.Record
	for _, row := range rows[1:] {
		parsed := make(map[string]any, len(headers))
		for i, h := range headers {
			h = strings.TrimSpace(h)
			val := row[i]
			if strings.EqualFold(h, "content") || strings.EqualFold(h, core.FieldText) {
				parsed[core.FieldText] = val
				continue
			}
			parsed[h] = UnmarshalCSVValue(strings.TrimSpace(val), s.Strict)
		}
		if rec, ok := newRecord(fields, parsed); ok {
			records = append(records, rec)
		}
	}
	return records, nil
}

// --- Helpers ---

// UnmarshalCSVValue attempts to parse a string as JSON if it looks like a Map or Slice.
// Otherwise returns the string as is.
//
// CAVEAT: This uses a heuristic (starts/ends with {} or []). A raw string that
// happens to be valid JSON (e.g. "[1]") is interpreted as a list.
func UnmarshalCSVValue(val string, strict bool) any {
	if (strings.HasPrefix(val, "{") && strings.HasSuffix(val, "}")) ||
		(strings.HasPrefix(val, "[") && strings.HasSuffix(val, "]")) {
		var parsed any
		decoder := json.NewDecoder(strings.NewReader(val))
		if strict {
			decoder.UseNumber()
		}
		if err := decoder.Decode(&parsed); err == nil {
			return parsed
		}
	}
	return val
}

// recursiveNormalize traverses maps and slices and converts numeric types
// to json.Number, matching JSON strict mode.
func recursiveNormalize(val any) any {
	switch v := val.(type) {
	case map[string]any:
		m := make(map[string]any, len(v))
		for k, val := range v {
			m[k] = recursiveNormalize(val)
		}
		return m
	case []any:
		l := make([]any, len(v))
		for i, val := range v {
			l[i] = recursiveNormalize(val)
		}
		return l
	case int:
		return json.Number(fmt.Sprintf("%d", v))
	case int64:
		return json.Number(fmt.Sprintf("%d", v))
	case float64:
		return json.Number(fmt.Sprintf("%v", v))
	default:
		return v
	}
}
