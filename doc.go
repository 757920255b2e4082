// Package tagxml writes collections of Go structs to a small XML dialect and
// reads them back, driven by struct tags.
//
// A struct type becomes serializable by registering it; each field that
// should appear in documents carries a `tagxml` tag. Only scalar fields are
// supported: integers, floats, bools and strings.
//
// # Quick Start
//
//	type Student struct {
//		FirstName string `tagxml:"firstName"`
//		Surname   string `tagxml:"surname"`
//		Age       int    `tagxml:"howOld"`
//	}
//
//	func init() {
//		tagxml.MustRegister(Student{})
//	}
//
//	s, err := tagxml.New(tagxml.WithStore(tagxml.NewDirStore("data")))
//	if err != nil {
//		return err
//	}
//	result, err := s.Write(ctx, "students", &Student{"Jane", "Doe", 42})
//	// data/students.xml now holds:
//	//
//	// <Student>
//	// 	<firstName type="String">Jane</firstName>
//	// 	<surname type="String">Doe</surname>
//	// 	<howOld type="int">42</howOld>
//	// </Student>
//
//	students, err := tagxml.ReadAs[Student](ctx, s, result.Key)
//
// # Struct Tags
//
// The tag format is `tagxml:"[exportName][,type=T]"`:
//
//   - An empty name exports the field under its Go name
//   - type=T pins the declared type (int, float, boolean or String); it must
//     agree with the field's kind
//   - `tagxml:"-"` excludes the field
//
// Fields without a tag, unexported fields and fields of unsupported kinds are
// skipped when writing. Reading is stricter: every field of the class must be
// tagged, exported and scalar, otherwise the document is rejected before any
// instance is built.
//
// # Classes
//
// The record tag defaults to the struct's type name. WithName overrides it and
// WithFactory replaces the default constructor used when reading:
//
//	tagxml.MustRegister(Student{}, tagxml.WithName("Pupil"))
//
// Documents name their class in the first tag, which is resolved in the
// Registry; unknown names fail with ErrClassNotFound.
//
// # Errors
//
// All errors wrap one of the sentinels in errors.go and can be tested with
// errors.Is or the IsInputError, IsNotFoundError and IsFormatError helpers.
// Reading is all-or-nothing: on error no instance is returned.
//
// # Stores
//
// Documents are persisted through the Store interface. DirStore keeps them as
// files; the providers directory holds S3, SQLite and HashiCorp Vault stores.
package tagxml
