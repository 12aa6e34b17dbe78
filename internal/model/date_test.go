package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2024-01-01")
	require.NoError(t, err)
	assert.Equal(t, "2024-01-01", d.String())

	d, err = ParseDate("2024-03-05T22:10:00Z")
	require.NoError(t, err)
	assert.Equal(t, "2024-03-05", d.String())

	_, err = ParseDate("yesterday")
	assert.Error(t, err)
}

func TestDateJSON(t *testing.T) {
	var e Employee
	require.NoError(t, json.Unmarshal([]byte(`{"name":"Ana","number":7,"hire_date":"2024-01-01"}`), &e))
	assert.Equal(t, 2024, e.HireDate.Year())

	out, err := json.Marshal(e)
	require.NoError(t, err)
	assert.Contains(t, string(out), `"hire_date":"2024-01-01"`)

	assert.Error(t, json.Unmarshal([]byte(`{"hire_date":"not-a-date"}`), &e))
}

func TestDateScan(t *testing.T) {
	var d Date
	require.NoError(t, d.Scan(time.Date(2023, 7, 9, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, "2023-07-09", d.String())

	require.NoError(t, d.Scan([]byte("2022-12-31")))
	assert.Equal(t, "2022-12-31", d.String())

	assert.Error(t, d.Scan(42))
}
