package progress

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCSVWriter(t *testing.T) {
	var buf bytes.Buffer
	w := NewCSVWriter(&buf)
	require.NoError(t, w.Write(Record{Epoch: 100, Elapsed: 1500 * time.Millisecond, Exploitability: 0.25}))
	require.NoError(t, w.Write(Record{Epoch: 200, Elapsed: 3 * time.Second, Exploitability: 0.125}))

	assert.Equal(t, "epoch,elapsed_seconds,exploitability\n100,1.500,0.25\n200,3.000,0.125\n", buf.String())

	records, err := ReadCSV(&buf)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, 200, records[1].Epoch)
	assert.Equal(t, 3*time.Second, records[1].Elapsed)
	assert.Equal(t, 0.125, records[1].Exploitability)
}

func TestReadCSV_Errors(t *testing.T) {
	_, err := ReadCSV(strings.NewReader("epoch,elapsed_seconds,exploitability\nx,1,2\n"))
	assert.Error(t, err)

	records, err := ReadCSV(strings.NewReader(""))
	assert.NoError(t, err)
	assert.Empty(t, records)
}
