package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSONListScanMalformed(t *testing.T) {
	var l JSONList
	// Legacy rows carry broken JSON; reads must not fail.
	require.NoError(t, l.Scan([]byte(`{"not":"a list`)))
	assert.Equal(t, JSONList{}, l)
}

func TestJSONListScanNil(t *testing.T) {
	var l JSONList
	require.NoError(t, l.Scan(nil))
	assert.Equal(t, JSONList{}, l)
}

func TestJSONListRoundTrip(t *testing.T) {
	l := JSONList{"a.jpg", "b.jpg"}
	v, err := l.Value()
	require.NoError(t, err)

	var out JSONList
	require.NoError(t, out.Scan(v))
	assert.Equal(t, l, out)
}

func TestJSONMapScanMalformed(t *testing.T) {
	var m JSONMap
	require.NoError(t, m.Scan("[1,2,3]")) // wrong shape, not an object
	assert.Equal(t, JSONMap{}, m)
}

func TestJSONMapRoundTrip(t *testing.T) {
	m := JSONMap{"height": "12cm", "width": "8cm"}
	v, err := m.Value()
	require.NoError(t, err)

	var out JSONMap
	require.NoError(t, out.Scan(v))
	assert.Equal(t, m, out)
}

func TestNilValuesEncodeAsEmpty(t *testing.T) {
	var l JSONList
	v, err := l.Value()
	require.NoError(t, err)
	assert.Equal(t, "[]", v)

	var m JSONMap
	v, err = m.Value()
	require.NoError(t, err)
	assert.Equal(t, "{}", v)
}
