package tagxml

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/hengadev/tagxml/internal/digest"
	"github.com/hengadev/tagxml/internal/monitoring"
)

func newTestSerializer(t *testing.T, opts ...Option) (*Serializer, string) {
	t.Helper()
	dir := t.TempDir()
	opts = append([]Option{WithRegistry(newTestRegistry(t)), WithStore(NewDirStore(dir))}, opts...)
	s, err := New(opts...)
	require.NoError(t, err)
	return s, dir
}

func TestSerializer_WriteRead(t *testing.T) {
	ctx := context.Background()
	s, dir := newTestSerializer(t)

	result, err := s.Write(ctx, "students", &Student{FirstName: "Jane", Surname: "Doe", Age: 42})
	require.NoError(t, err)

	content, err := os.ReadFile(filepath.Join(dir, "students.xml"))
	require.NoError(t, err)
	assert.Equal(t, studentDocument, string(content))

	assert.Equal(t, WriteResult{
		Key:     "students.xml",
		Class:   "Student",
		Records: 1,
		Bytes:   len(studentDocument),
		Digest:  digest.Sum([]byte(studentDocument)),
	}, result)

	objs, err := s.Read(ctx, result.Key)
	require.NoError(t, err)
	assert.Equal(t, []any{&Student{FirstName: "Jane", Surname: "Doe", Age: 42}}, objs)
}

func TestSerializer_TenStudents(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestSerializer(t)

	in := make([]any, 10)
	for i := range in {
		in[i] = &Student{FirstName: "First" + string(rune('A'+i)), Surname: "Last", Age: 20 + i}
	}
	_, err := s.Write(ctx, "class", in...)
	require.NoError(t, err)

	out, err := ReadAs[Student](ctx, s, "class.xml")
	require.NoError(t, err)
	require.Len(t, out, len(in))
	for i := range in {
		assert.Equal(t, in[i], out[i])
	}
}

func TestSerializer_WriteOverwrites(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestSerializer(t)

	_, err := s.Write(ctx, "students", &Student{FirstName: "A"}, &Student{FirstName: "B"})
	require.NoError(t, err)
	_, err = s.Write(ctx, "students", &Student{FirstName: "C"})
	require.NoError(t, err)

	objs, err := s.Read(ctx, "students.xml")
	require.NoError(t, err)
	assert.Equal(t, []any{&Student{FirstName: "C"}}, objs)
}

func TestSerializer_WriteRejectsBeforeIO(t *testing.T) {
	ctx := context.Background()
	s, dir := newTestSerializer(t)

	tests := []struct {
		name      string
		target    string
		instances []any
	}{
		{"heterogeneous", "mixed", []any{&Student{}, &Measurement{}}},
		{"empty", "empty", nil},
		{"unregistered", "unregistered", []any{&Unregistered{}}},
		{"unsafe value", "unsafe", []any{&Student{FirstName: "a<b"}}},
		{"empty target", "", []any{&Student{}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := s.Write(ctx, tt.target, tt.instances...)
			assert.ErrorIs(t, err, ErrInvalidInput)
			assert.Equal(t, WriteResult{}, result)
			assert.NoFileExists(t, filepath.Join(dir, tt.target+".xml"))
		})
	}

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestSerializer_ReadErrors(t *testing.T) {
	ctx := context.Background()
	s, dir := newTestSerializer(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "students.txt"), []byte(studentDocument), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.xml"), []byte("<Student>"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "course.xml"), []byte("<Course></Course>"), 0o644))

	tests := []struct {
		name     string
		source   string
		sentinel error
	}{
		{"wrong extension", "students.txt", ErrNotFound},
		{"no extension", "students", ErrNotFound},
		{"extension only", ".xml", ErrNotFound},
		{"missing file", "missing.xml", ErrNotFound},
		{"malformed", "broken.xml", ErrMalformedInput},
		{"unknown class", "course.xml", ErrClassNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			objs, err := s.Read(ctx, tt.source)
			assert.ErrorIs(t, err, tt.sentinel)
			assert.Nil(t, objs)
		})
	}
}

func TestSerializer_Logging(t *testing.T) {
	ctx := context.Background()
	core, logs := observer.New(zapcore.InfoLevel)
	s, _ := newTestSerializer(t, WithLogger(zap.New(core)))

	_, err := s.Write(ctx, "students", &Student{FirstName: "Jane"})
	require.NoError(t, err)
	_, err = s.Read(ctx, "missing.xml")
	require.Error(t, err)

	completed := logs.FilterMessage("document operation completed").All()
	require.Len(t, completed, 1)
	fields := completed[0].ContextMap()
	assert.Equal(t, OperationWrite, fields["operation"])
	assert.Equal(t, "students.xml", fields[monitoring.KeyKey])
	assert.Equal(t, "Student", fields[monitoring.KeyClass])
	assert.EqualValues(t, 1, fields[monitoring.KeyRecords])
	assert.Contains(t, fields[monitoring.KeyDigest], digest.Algorithm)

	failed := logs.FilterMessage("document operation failed").All()
	require.Len(t, failed, 1)
	assert.Equal(t, zapcore.WarnLevel, failed[0].Level)
	assert.Equal(t, OperationRead, failed[0].ContextMap()["operation"])
	assert.Empty(t, logs.FilterMessage("document operation started").All())
}

func TestSerializer_DebugLogging(t *testing.T) {
	ctx := context.Background()
	core, logs := observer.New(zapcore.DebugLevel)
	s, _ := newTestSerializer(t, WithLogger(zap.New(core)))

	result, err := s.Write(ctx, "students", &Student{FirstName: "Jane"})
	require.NoError(t, err)
	_, err = s.Read(ctx, "students.xml")
	require.NoError(t, err)

	started := logs.FilterMessage("document operation started").All()
	require.Len(t, started, 2)
	for i, operation := range []string{OperationWrite, OperationRead} {
		assert.Equal(t, zapcore.DebugLevel, started[i].Level)
		assert.Equal(t, operation, started[i].ContextMap()["operation"])
		assert.Equal(t, "students.xml", started[i].ContextMap()[monitoring.KeyKey])
	}

	all := logs.All()
	require.Len(t, all, 4)
	assert.Equal(t, "document operation started", all[0].Message)
	assert.Equal(t, "document operation completed", all[1].Message)
	assert.EqualValues(t, result.Bytes, all[1].ContextMap()[monitoring.KeyBytes])
}

func TestSerializer_PartialClassCannotBeReadBack(t *testing.T) {
	ctx := context.Background()
	s, dir := newTestSerializer(t)

	result, err := s.Write(ctx, "partial", &PartialStudent{FirstName: "Jane", Nickname: "JD", Age: 30})
	require.NoError(t, err)
	assert.Equal(t, "PartialStudent", result.Class)
	assert.FileExists(t, filepath.Join(dir, "partial.xml"))

	objs, err := s.Read(ctx, result.Key)
	assert.ErrorIs(t, err, ErrMalformedInput)
	assert.Nil(t, objs)
}

func TestSerializer_ObservabilityHook(t *testing.T) {
	ctx := context.Background()
	collector := monitoring.NewInMemoryMetricsCollector()
	s, _ := newTestSerializer(t, WithObservabilityHook(monitoring.NewMetricsObservabilityHook(collector)))

	_, err := s.Write(ctx, "students", &Student{}, &Student{})
	require.NoError(t, err)
	_, err = s.Read(ctx, "students.xml")
	require.NoError(t, err)
	_, err = s.Write(ctx, "bad", &Student{}, &Measurement{})
	require.Error(t, err)

	write := map[string]string{"operation": OperationWrite}
	read := map[string]string{"operation": OperationRead}
	assert.Equal(t, int64(2), collector.GetCounter(monitoring.MetricStarted, write))
	assert.Equal(t, int64(1), collector.GetCounter(monitoring.MetricStarted, read))
	assert.Equal(t, int64(2), collector.GetCounter(monitoring.MetricRecords, write))
	assert.Equal(t, int64(2), collector.GetCounter(monitoring.MetricRecords, read))
	assert.Equal(t, int64(1), collector.GetCounter(monitoring.MetricCompleted,
		map[string]string{"operation": OperationWrite, "status": "error"}))
	assert.Equal(t, int64(1), collector.GetCounter(monitoring.MetricErrors,
		map[string]string{"operation": OperationWrite, "kind": "invalid_input"}))
	assert.Len(t, collector.GetTimings(monitoring.MetricDuration, write), 2)
	assert.Equal(t, []float64{float64(2 * len(emptyStudentRecord))},
		collector.GetValues(monitoring.MetricDocumentBytes, write))
}

const emptyStudentRecord = "<Student>\n" +
	"\t<firstName type=\"String\"></firstName>\n" +
	"\t<surname type=\"String\"></surname>\n" +
	"\t<howOld type=\"int\">0</howOld>\n" +
	"</Student>\n"

func TestNew_Options(t *testing.T) {
	s, err := New()
	require.NoError(t, err)
	assert.Same(t, DefaultRegistry(), s.Codec().Registry())

	_, err = New(WithRegistry(nil))
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, err = New(WithStore(nil))
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, err = New(WithLogger(nil))
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, err = New(WithObservabilityHook(nil))
	assert.ErrorIs(t, err, ErrInvalidInput)
}

// mockStore is a testify mock of Store
type mockStore struct {
	mock.Mock
}

func (m *mockStore) Put(ctx context.Context, key string, data []byte) error {
	args := m.Called(ctx, key, data)
	return args.Error(0)
}

func (m *mockStore) Get(ctx context.Context, key string) ([]byte, error) {
	args := m.Called(ctx, key)
	data, _ := args.Get(0).([]byte)
	return data, args.Error(1)
}

func TestSerializer_StoreInteraction(t *testing.T) {
	ctx := context.Background()

	t.Run("write puts the encoded document under target.xml", func(t *testing.T) {
		store := &mockStore{}
		store.On("Put", ctx, "students.xml", []byte(studentDocument)).Return(nil).Once()
		s, _ := newTestSerializer(t, WithStore(store))

		_, err := s.Write(ctx, "students", &Student{FirstName: "Jane", Surname: "Doe", Age: 42})
		require.NoError(t, err)
		store.AssertExpectations(t)
	})

	t.Run("store failures are returned", func(t *testing.T) {
		store := &mockStore{}
		store.On("Put", ctx, "students.xml", mock.Anything).Return(fmt.Errorf("%w: disk full", ErrIO))
		s, _ := newTestSerializer(t, WithStore(store))

		result, err := s.Write(ctx, "students", &Student{})
		assert.ErrorIs(t, err, ErrIO)
		assert.Equal(t, WriteResult{}, result)
	})

	t.Run("rejected writes never reach the store", func(t *testing.T) {
		store := &mockStore{}
		s, _ := newTestSerializer(t, WithStore(store))

		_, err := s.Write(ctx, "mixed", &Student{}, &Measurement{})
		require.ErrorIs(t, err, ErrInvalidInput)
		store.AssertNotCalled(t, "Put", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("reads without the extension never reach the store", func(t *testing.T) {
		store := &mockStore{}
		s, _ := newTestSerializer(t, WithStore(store))

		_, err := s.Read(ctx, "students")
		require.ErrorIs(t, err, ErrNotFound)
		store.AssertNotCalled(t, "Get", mock.Anything, mock.Anything)
	})

	t.Run("read decodes what the store returns", func(t *testing.T) {
		store := &mockStore{}
		store.On("Get", ctx, "students.xml").Return([]byte(studentDocument), nil).Once()
		s, _ := newTestSerializer(t, WithStore(store))

		students, err := ReadAs[Student](ctx, s, "students.xml")
		require.NoError(t, err)
		assert.Equal(t, []*Student{{FirstName: "Jane", Surname: "Doe", Age: 42}}, students)
		store.AssertExpectations(t)
	})
}
