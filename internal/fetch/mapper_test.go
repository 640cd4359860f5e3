package fetch

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStructMapperTagAndNameBinding(t *testing.T) {
	type user struct {
		ID       int64 `db:"user_id"`
		Email    string
		Age      int
		internal string
	}

	cols := []Column{
		{Name: "user_id", Ordinal: 0},
		{Name: "Email", Ordinal: 1},
		{Name: "age", Ordinal: 2},
		{Name: "ignored", Ordinal: 3},
	}
	mapper := StructMapper[user]()

	v, err := mapper(cols, Row{int64(9), "ada@example.com", int64(36), "x"})
	require.NoError(t, err)

	u := v.(user)
	require.Equal(t, int64(9), u.ID)
	require.Equal(t, "ada@example.com", u.Email)
	require.Equal(t, 36, u.Age)
	require.Empty(t, u.internal)
}

func TestStructMapperNilSetsZero(t *testing.T) {
	type user struct {
		Name string `db:"name"`
	}
	mapper := StructMapper[user]()

	v, err := mapper([]Column{{Name: "name"}}, Row{nil})
	require.NoError(t, err)
	require.Equal(t, user{}, v)
}

func TestStructMapperTypeMismatch(t *testing.T) {
	type user struct {
		ID int64 `db:"id"`
	}
	mapper := StructMapper[user]()

	_, err := mapper([]Column{{Name: "id"}}, Row{[]string{"not", "a", "number"}})
	require.Error(t, err)
	require.Contains(t, err.Error(), `column "id"`)
}

func TestStructMapperNonStructTarget(t *testing.T) {
	mapper := StructMapper[int]()
	_, err := mapper([]Column{{Name: "n"}}, Row{int64(1)})
	require.Error(t, err)
}

func TestRecordMapAndEach(t *testing.T) {
	rec := NewRecord(
		[]Column{{Name: "a", Ordinal: 0}, {Name: "b", Ordinal: 1}},
		Row{int64(1), int64(2)},
	)

	require.Equal(t, map[string]any{"a": int64(1), "b": int64(2)}, rec.Map())

	var visited []string
	rec.Each(func(name string, _ any) bool {
		visited = append(visited, name)
		return true
	})
	require.Equal(t, []string{"a", "b"}, visited)

	_, ok := rec.Get("missing")
	require.False(t, ok)
}
