package frame

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseJSONRecords(t *testing.T) {
	f, err := ParseJSON([]byte(`[{"b":1,"a":"x"},{"a":"y","c":true},{"b":null}]`), "r.json")
	require.NoError(t, err)
	require.Equal(t, []string{"b", "a", "c"}, f.Columns)
	require.Equal(t, [][]string{{"1", "x", ""}, {"", "y", "True"}, {"", "", ""}}, f.Rows)
}

func TestParseJSONSplit(t *testing.T) {
	f, err := ParseJSON([]byte(`{"columns":["p","q"],"index":[0,1],"data":[[1.5,"u"],[2,"v"]]}`), "s.json")
	require.NoError(t, err)
	require.Equal(t, []string{"p", "q"}, f.Columns)
	require.Equal(t, [][]string{{"1.5", "u"}, {"2", "v"}}, f.Rows)
}

func TestParseJSONColumnOriented(t *testing.T) {
	f, err := ParseJSON([]byte(`{"Product":{"1":"Phone","0":"Laptop","10":"Watch"},"Sales":{"0":120,"1":250,"10":300}}`), "c.json")
	require.NoError(t, err)
	require.Equal(t, []string{"Product", "Sales"}, f.Columns)
	require.Equal(t, [][]string{{"Laptop", "120"}, {"Phone", "250"}, {"Watch", "300"}}, f.Rows)

	f, err = ParseJSON([]byte(`{"x":[1,2,3],"y":["a","b"]}`), "l.json")
	require.NoError(t, err)
	require.Equal(t, [][]string{{"1", "a"}, {"2", "b"}, {"3", ""}}, f.Rows)
}

func TestParseJSONArrayOfArrays(t *testing.T) {
	f, err := ParseJSON([]byte(`[[1,"a"],[2,"b",false]]`), "m.json")
	require.NoError(t, err)
	require.Equal(t, []string{"0", "1", "2"}, f.Columns)
	require.Equal(t, []string{"1", "a", ""}, f.Rows[0])
	require.Equal(t, []string{"2", "b", "False"}, f.Rows[1])
}

func TestParseJSONRejectsScalars(t *testing.T) {
	_, err := ParseJSON([]byte(`42`), "bad.json")
	require.Error(t, err)
	_, err = ParseJSON([]byte(`  `), "blank.json")
	require.Error(t, err)
	_, err = ParseJSON([]byte(`{"a": 1}`), "scalar-col.json")
	require.Error(t, err)
}
