package export

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteCSV(t *testing.T) {
	table := Table{Headers: []string{"Date", "Time", "Status"}}
	table.AddRow("Mar 03, 2025", "09:00 - 10:30", "Present")
	table.AddRow("Mar 05, 2025")

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, table))
	assert.Equal(t, "Date,Time,Status\n\"Mar 03, 2025\",09:00 - 10:30,Present\n\"Mar 05, 2025\",,\n", buf.String())
}

func TestWriteCSVRequiresHeaders(t *testing.T) {
	var buf bytes.Buffer
	assert.Error(t, WriteCSV(&buf, Table{}))
}

func TestWriteText(t *testing.T) {
	table := Table{Headers: []string{"ID", "Name"}}
	table.AddRow("1", "Ada Lovelace")

	var buf bytes.Buffer
	require.NoError(t, WriteText(&buf, table))
	assert.Equal(t, "ID  Name\n1   Ada Lovelace\n", buf.String())
}
