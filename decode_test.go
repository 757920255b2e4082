package tagxml

import (
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCodec_Decode(t *testing.T) {
	codec := NewCodec(newTestRegistry(t))

	t.Run("student document", func(t *testing.T) {
		objs, err := codec.Decode([]byte(studentDocument))
		require.NoError(t, err)
		require.Len(t, objs, 1)
		assert.Equal(t, &Student{FirstName: "Jane", Surname: "Doe", Age: 42}, objs[0])
	})

	t.Run("round trip keeps order and values", func(t *testing.T) {
		in := []any{
			&Measurement{Label: "a", Count: math.MaxInt64, Small: math.MinInt8, Unsigned: math.MaxUint16, Ratio: 0.1, Weight: float32(1) / 3, Active: true},
			&Measurement{Label: "", Count: -1, Ratio: math.Inf(1), Weight: -0.5},
			&Measurement{Label: "b c", Ratio: 1e-300, Active: false},
		}
		doc, err := codec.Encode(in...)
		require.NoError(t, err)

		out, err := codec.Decode(doc)
		require.NoError(t, err)
		assert.Equal(t, in, out)
	})

	t.Run("fields missing from a record keep their zero value", func(t *testing.T) {
		objs, err := codec.Decode([]byte(`<Student><surname type="String">Doe</surname></Student>`))
		require.NoError(t, err)
		assert.Equal(t, []any{&Student{Surname: "Doe"}}, objs)
	})

	t.Run("empty string value", func(t *testing.T) {
		objs, err := codec.Decode([]byte(`<Student><firstName type="String"></firstName><howOld type="int">3</howOld></Student>`))
		require.NoError(t, err)
		assert.Equal(t, []any{&Student{Age: 3}}, objs)
	})

	t.Run("lowercase string type is accepted", func(t *testing.T) {
		objs, err := codec.Decode([]byte(`<Student><firstName type="string">Jane</firstName></Student>`))
		require.NoError(t, err)
		assert.Equal(t, []any{&Student{FirstName: "Jane"}}, objs)
	})

	t.Run("layout whitespace does not matter", func(t *testing.T) {
		doc := strings.ReplaceAll(studentDocument, "\n", "\r\n")
		objs, err := codec.Decode([]byte(doc))
		require.NoError(t, err)
		assert.Equal(t, []any{&Student{FirstName: "Jane", Surname: "Doe", Age: 42}}, objs)
	})

	t.Run("renamed class", func(t *testing.T) {
		registry := NewRegistry()
		require.NoError(t, registry.Register(Student{}, WithName("Pupil")))
		objs, err := NewCodec(registry).Decode([]byte(`<Pupil><howOld type="int">9</howOld></Pupil>`))
		require.NoError(t, err)
		assert.Equal(t, []any{&Student{Age: 9}}, objs)
	})

	t.Run("factory provides the starting instance", func(t *testing.T) {
		registry := NewRegistry()
		require.NoError(t, registry.Register(Student{}, WithFactory(func() any {
			return &Student{Surname: "Unknown"}
		})))
		objs, err := NewCodec(registry).Decode([]byte(`<Student><firstName type="String">Jane</firstName></Student><Student></Student>`))
		require.NoError(t, err)
		assert.Equal(t, []any{
			&Student{FirstName: "Jane", Surname: "Unknown"},
			&Student{Surname: "Unknown"},
		}, objs)
	})
}

func TestCodec_DecodeErrors(t *testing.T) {
	codec := NewCodec(newTestRegistry(t))

	tests := []struct {
		name     string
		doc      string
		sentinel error
	}{
		{"empty document", "", ErrMalformedInput},
		{"only whitespace", "\n\t\n", ErrMalformedInput},
		{"unknown class", `<Course><code type="String">x</code></Course>`, ErrClassNotFound},
		{"untagged field in class", `<PartialStudent></PartialStudent>`, ErrMalformedInput},
		{"unexported tagged field in class", `<HiddenField></HiddenField>`, ErrAccessDenied},
		{"unsupported field type in class", `<ListField></ListField>`, ErrInvalidInput},
		{"missing type attribute", `<Student><firstName>Jane</firstName></Student>`, ErrMalformedInput},
		{"unknown type attribute", `<Student><firstName type="text">Jane</firstName></Student>`, ErrMalformedInput},
		{"unquoted type attribute", `<Student><howOld type=int>1</howOld></Student>`, ErrMalformedInput},
		{"extra attribute", `<Student><howOld type="int" unit="years">1</howOld></Student>`, ErrMalformedInput},
		{"other attribute", `<Student><howOld unit="years">1</howOld></Student>`, ErrMalformedInput},
		{"type differs from field", `<Student><howOld type="String">1</howOld></Student>`, ErrMalformedInput},
		{"mismatched close tag", `<Student><firstName type="String">Jane</surname></Student>`, ErrMalformedInput},
		{"unknown field", `<Student><grade type="int">1</grade></Student>`, ErrMalformedInput},
		{"Go field name is not the export name", `<Student><Age type="int">1</Age></Student>`, ErrMalformedInput},
		{"int parse failure", `<Student><howOld type="int">forty</howOld></Student>`, ErrMalformedInput},
		{"int overflow", `<Measurement><small type="int">300</small></Measurement>`, ErrMalformedInput},
		{"boolean parse failure", `<Measurement><active type="boolean">yes</active></Measurement>`, ErrMalformedInput},
		{"float parse failure", `<Measurement><ratio type="float">0,5</ratio></Measurement>`, ErrMalformedInput},
		{"record not closed", `<Student><howOld type="int">1</howOld>`, ErrMalformedInput},
		{"entry not closed", `<Student><howOld type="int">1`, ErrMalformedInput},
		{"nested record", `<Student><Student></Student></Student>`, ErrMalformedInput},
		{"stray close tag", `<Student></Student></Student>`, ErrMalformedInput},
		{"other class after first", `<Student></Student><Measurement></Measurement>`, ErrMalformedInput},
		{"text between records", `<Student></Student>junk<Student></Student>`, ErrMalformedInput},
		{"second record is bad", studentDocument + `<Student><howOld type="int">x</howOld></Student>`, ErrMalformedInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			objs, err := codec.Decode([]byte(tt.doc))
			assert.ErrorIs(t, err, tt.sentinel)
			assert.Nil(t, objs)
		})
	}
}

func TestCodec_DecodeFactoryErrors(t *testing.T) {
	registry := NewRegistry()
	require.NoError(t, registry.Register(Student{}, WithFactory(func() any { return Student{} })))

	_, err := NewCodec(registry).Decode([]byte(studentDocument))
	assert.ErrorIs(t, err, ErrInvalidInput)

	t.Run("shared instance", func(t *testing.T) {
		shared := &Unregistered{}
		registry := NewRegistry()
		require.NoError(t, registry.Register(Unregistered{}, WithFactory(func() any { return shared })))

		doc := `<Unregistered><name type="String">a</name></Unregistered>` +
			`<Unregistered><name type="String">b</name></Unregistered>`
		objs, err := NewCodec(registry).Decode([]byte(doc))
		assert.ErrorIs(t, err, ErrInvalidInput)
		assert.Nil(t, objs)
	})

	t.Run("fresh instances", func(t *testing.T) {
		registry := NewRegistry()
		require.NoError(t, registry.Register(Unregistered{}, WithFactory(func() any {
			return &Unregistered{Name: "default"}
		})))

		doc := `<Unregistered><name type="String">a</name></Unregistered><Unregistered></Unregistered>`
		objs, err := NewCodec(registry).Decode([]byte(doc))
		require.NoError(t, err)
		assert.Equal(t, []any{&Unregistered{Name: "a"}, &Unregistered{Name: "default"}}, objs)
	})
}

func TestDecodeAs(t *testing.T) {
	codec := NewCodec(newTestRegistry(t))

	students, err := DecodeAs[Student](codec, []byte(studentDocument))
	require.NoError(t, err)
	require.Len(t, students, 1)
	assert.Equal(t, "Jane", students[0].FirstName)

	_, err = DecodeAs[Measurement](codec, []byte(studentDocument))
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = DecodeAs[Student](codec, []byte("<Student>"))
	assert.ErrorIs(t, err, ErrMalformedInput)
}

func TestScanRecords(t *testing.T) {
	t.Run("unregistered class", func(t *testing.T) {
		doc := `<Course><code type="String">CS101</code><credits type="int">6</credits></Course><Course></Course>`
		records, err := ScanRecords([]byte(doc))
		require.NoError(t, err)
		assert.Equal(t, []Record{
			{Class: "Course", Entries: []Entry{
				{Name: "code", Type: String, Value: "CS101"},
				{Name: "credits", Type: Int, Value: "6"},
			}},
			{Class: "Course"},
		}, records)
	})

	t.Run("student document", func(t *testing.T) {
		records, err := ScanRecords([]byte(studentDocument))
		require.NoError(t, err)
		require.Len(t, records, 1)
		assert.Equal(t, Entry{Name: "howOld", Type: Int, Value: "42"}, records[0].Entries[2])
	})

	errorDocs := map[string]string{
		"empty":         "",
		"bad int":       `<Course><credits type="int">six</credits></Course>`,
		"missing type":  `<Course><credits>6</credits></Course>`,
		"not closed":    `<Course>`,
		"wrong closing": `<Course></Other>`,
	}
	for name, doc := range errorDocs {
		t.Run(name, func(t *testing.T) {
			records, err := ScanRecords([]byte(doc))
			assert.ErrorIs(t, err, ErrMalformedInput)
			assert.Nil(t, records)
		})
	}
}

func TestParseEntryTag(t *testing.T) {
	name, scalar, err := parseEntryTag(0, `howOld type="int"`)
	require.NoError(t, err)
	assert.Equal(t, "howOld", name)
	assert.Equal(t, Int, scalar)

	name, scalar, err = parseEntryTag(0, `label  type = "String" `)
	require.NoError(t, err)
	assert.Equal(t, "label", name)
	assert.Equal(t, String, scalar)

	for _, tok := range []string{`howOld`, ` type="int"`, `howOld type=""`, `howOld type="int`, `howOld kind="int"`, `howOld type="in"t"`} {
		_, _, err := parseEntryTag(3, tok)
		assert.ErrorIs(t, err, ErrMalformedInput, tok)
	}
}
