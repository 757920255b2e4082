package tagxml

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
)

// Record is the class-agnostic form of one decoded record.
type Record struct {
	Class   string
	Entries []Entry
}

// Entry is one field value of a Record as written in the document.
type Entry struct {
	Name  string
	Type  ScalarType
	Value string
}

// recordSink receives the records recognised by parseRecords.
type recordSink interface {
	begin(pos int) error
	entry(pos int, name string, scalar ScalarType, raw string) error
	end(pos int) error
}

type parseState int

const (
	expectRecordOrEnd parseState = iota
	inRecord
)

// parseRecords drives the record state machine over tokens. Records are
// bounded by className and /className; inside a record tokens come in
// [tag, value, /tag] triplets, or [tag, /tag] for an empty value.
func parseRecords(tokens []string, className string, sink recordSink) error {
	closing := "/" + className
	state := expectRecordOrEnd

	for i := 0; i < len(tokens); {
		tok := tokens[i]
		switch {
		case state == expectRecordOrEnd && tok == className:
			if err := sink.begin(i); err != nil {
				return err
			}
			state = inRecord
			i++

		case state == inRecord && tok == closing:
			if err := sink.end(i); err != nil {
				return err
			}
			state = expectRecordOrEnd
			i++

		case state == inRecord && !strings.HasPrefix(tok, "/"):
			pos := i
			name, scalar, err := parseEntryTag(pos, tok)
			if err != nil {
				return err
			}
			closeTag := "/" + name
			var raw string
			switch {
			case i+2 < len(tokens) && tokens[i+2] == closeTag:
				raw = tokens[i+1]
				i += 3
			case i+1 < len(tokens) && tokens[i+1] == closeTag:
				i += 2
			default:
				return NewMalformedError(pos, fmt.Sprintf("entry '%s' is not closed by <%s>", name, closeTag))
			}
			if err := sink.entry(pos, name, scalar, raw); err != nil {
				return err
			}

		default:
			return NewMalformedError(i, fmt.Sprintf("unexpected token %q", tok))
		}
	}

	if state == inRecord {
		return NewMalformedError(len(tokens), fmt.Sprintf("record '%s' is not closed", className))
	}
	return nil
}

// parseEntryTag splits an opening entry tag into its name and declared type.
// The type attribute is mandatory and is the only attribute allowed.
func parseEntryTag(pos int, tok string) (string, ScalarType, error) {
	name, attrs, _ := strings.Cut(tok, " ")
	if name == "" {
		return "", "", NewMalformedError(pos, fmt.Sprintf("entry tag %q has no name", tok))
	}

	key, value, found := strings.Cut(strings.TrimSpace(attrs), "=")
	if !found || strings.TrimSpace(key) != TypeAttribute {
		return "", "", NewMalformedError(pos, fmt.Sprintf("entry '%s' has no %s attribute", name, TypeAttribute))
	}
	value = strings.TrimSpace(value)
	if len(value) < 2 || value[0] != '"' || value[len(value)-1] != '"' || strings.Contains(value[1:len(value)-1], `"`) {
		return "", "", NewMalformedError(pos, fmt.Sprintf("entry '%s' has an invalid %s attribute %s", name, TypeAttribute, value))
	}

	scalar, err := ParseScalarType(value[1 : len(value)-1])
	if err != nil {
		return "", "", NewMalformedError(pos, err.Error())
	}
	return name, scalar, nil
}

// structBinder rebuilds instances of one class from parsed records.
type structBinder struct {
	registry *Registry
	class    Class
	fields   map[string]Field
	current  reflect.Value
	out      []any
	built    map[any]struct{}
}

func (b *structBinder) begin(pos int) error {
	v, err := b.registry.construct(b.class)
	if err != nil {
		return err
	}
	ptr := v.Addr().Interface()
	if _, reused := b.built[ptr]; reused {
		return NewNoConstructorError(b.class.Name, "factory returned an instance it already returned")
	}
	if b.built == nil {
		b.built = make(map[any]struct{})
	}
	b.built[ptr] = struct{}{}
	b.current = v
	return nil
}

func (b *structBinder) entry(pos int, name string, scalar ScalarType, raw string) error {
	f, ok := b.fields[name]
	if !ok {
		return NewUnknownFieldError(pos, b.class.Name, name)
	}
	if scalar != f.Type {
		return NewMalformedError(pos, fmt.Sprintf("field '%s' is declared %s, document says %s", name, f.Type, scalar))
	}
	if err := f.Assign(b.current, raw); err != nil {
		if errors.Is(err, ErrAccessDenied) {
			return err
		}
		return fmt.Errorf("%w: %w", NewValueParseError(pos, name, scalar, raw), err)
	}
	return nil
}

func (b *structBinder) end(pos int) error {
	b.out = append(b.out, b.current.Addr().Interface())
	b.current = reflect.Value{}
	return nil
}

// recordCollector keeps records without binding them to a type.
type recordCollector struct {
	className string
	records   []Record
}

func (c *recordCollector) begin(pos int) error {
	c.records = append(c.records, Record{Class: c.className})
	return nil
}

func (c *recordCollector) entry(pos int, name string, scalar ScalarType, raw string) error {
	if err := checkRaw(scalar, raw); err != nil {
		return fmt.Errorf("%w: %w", NewValueParseError(pos, name, scalar, raw), err)
	}
	last := &c.records[len(c.records)-1]
	last.Entries = append(last.Entries, Entry{Name: name, Type: scalar, Value: raw})
	return nil
}

func (c *recordCollector) end(pos int) error {
	return nil
}

type decoded struct {
	class     Class
	instances []any
}

// Decode rebuilds the instances held in doc. The document's class must be
// registered and import eligible. On any error no instance is returned.
// Instances are pointers to the registered struct type, in document order.
func (c *Codec) Decode(doc []byte) ([]any, error) {
	out, err := c.decode(doc)
	if err != nil {
		return nil, err
	}
	return out.instances, nil
}

func (c *Codec) decode(doc []byte) (decoded, error) {
	tokens := Tokenize(doc)
	if len(tokens) == 0 {
		return decoded{}, NewMalformedError(0, "empty document")
	}

	class, err := c.registry.Lookup(tokens[0])
	if err != nil {
		return decoded{}, err
	}
	if _, err := c.registry.construct(class); err != nil {
		return decoded{}, err
	}
	if err := class.ValidateImport(); err != nil {
		return decoded{}, err
	}

	binder := &structBinder{
		registry: c.registry,
		class:    class,
		fields:   class.FieldIndex(),
	}
	if err := parseRecords(tokens, class.Name, binder); err != nil {
		return decoded{}, err
	}
	return decoded{class: class, instances: binder.out}, nil
}

// DecodeAs decodes doc and returns its instances as *T. It fails with
// ErrInvalidInput when the document holds another class.
func DecodeAs[T any](c *Codec, doc []byte) ([]*T, error) {
	objs, err := c.Decode(doc)
	if err != nil {
		return nil, err
	}
	return castAll[T](objs)
}

func castAll[T any](objs []any) ([]*T, error) {
	result := make([]*T, len(objs))
	for i, obj := range objs {
		p, ok := obj.(*T)
		if !ok {
			return nil, fmt.Errorf("%w: document holds %T, not *%s",
				ErrInvalidInput, obj, reflect.TypeFor[T]())
		}
		result[i] = p
	}
	return result, nil
}

// ScanRecords checks the structure of doc and returns its records without
// resolving the class. Values are checked against their declared type.
func ScanRecords(doc []byte) ([]Record, error) {
	tokens := Tokenize(doc)
	if len(tokens) == 0 {
		return nil, NewMalformedError(0, "empty document")
	}
	collector := &recordCollector{className: tokens[0]}
	if err := parseRecords(tokens, tokens[0], collector); err != nil {
		return nil, err
	}
	return collector.records, nil
}
