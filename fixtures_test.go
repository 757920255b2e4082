package tagxml

import (
	"testing"

	"github.com/stretchr/testify/require"
)

type Student struct {
	FirstName string `tagxml:"firstName"`
	Surname   string `tagxml:"surname"`
	Age       int    `tagxml:"howOld"`
}

// Measurement covers every supported kind.
type Measurement struct {
	Label    string  `tagxml:"label"`
	Count    int64   `tagxml:"count"`
	Small    int8    `tagxml:"small"`
	Unsigned uint16  `tagxml:"unsigned"`
	Ratio    float64 `tagxml:"ratio,type=float"`
	Weight   float32 `tagxml:"weight"`
	Active   bool    `tagxml:"active,type=boolean"`
}

// PartialStudent can be written but not read back.
type PartialStudent struct {
	FirstName string `tagxml:"firstName"`
	Nickname  string
	secret    string   `tagxml:"secret"`
	Tags      []string `tagxml:"tags"`
	Age       int      `tagxml:"howOld"`
}

type HiddenField struct {
	Name   string `tagxml:"name"`
	secret int    `tagxml:"secret"`
}

type ListField struct {
	Name string   `tagxml:"name"`
	Tags []string `tagxml:"tags"`
}

type Unregistered struct {
	Name string `tagxml:"name"`
}

const studentDocument = "<Student>\n" +
	"\t<firstName type=\"String\">Jane</firstName>\n" +
	"\t<surname type=\"String\">Doe</surname>\n" +
	"\t<howOld type=\"int\">42</howOld>\n" +
	"</Student>\n"

func newTestRegistry(t *testing.T) *Registry {
	t.Helper()
	registry := NewRegistry()
	for _, sample := range []any{Student{}, Measurement{}, PartialStudent{}, HiddenField{}, ListField{}} {
		require.NoError(t, registry.Register(sample))
	}
	return registry
}
