package parsers

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStageSeedCSV(t *testing.T) {
	in := "Name,SeqNo\r\nShoulder Join,1\r\nSide Seam,3\r\n,5\r\nHemming,\r\n"

	records, err := ParseStageSeedCSV(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, records, 3)

	assert.Equal(t, ParsedStageRecord{Name: "Shoulder Join", SeqNo: 1}, records[0])
	assert.Equal(t, ParsedStageRecord{Name: "Side Seam", SeqNo: 3}, records[1])
	// Missing SeqNo parses as zero.
	assert.Equal(t, ParsedStageRecord{Name: "Hemming", SeqNo: 0}, records[2])
}

func TestParseStageSeedCSVWithBOM(t *testing.T) {
	in := "\xEF\xBB\xBFName\nCollar Attach\n"

	records, err := ParseStageSeedCSV(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "Collar Attach", records[0].Name)
}

func TestParseStageSeedCSVMissingNameHeader(t *testing.T) {
	_, err := ParseStageSeedCSV(strings.NewReader("Stage,SeqNo\nFoo,1\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Name")
}

func TestParseStageSeedCSVEmpty(t *testing.T) {
	_, err := ParseStageSeedCSV(strings.NewReader(""))
	assert.Error(t, err)
}

func TestParseBlockerTypeSeedCSV(t *testing.T) {
	in := "Name\nMachine Breakdown\n  Power Failure  \n\n"

	names, err := ParseBlockerTypeSeedCSV(strings.NewReader(in))
	require.NoError(t, err)
	assert.Equal(t, []string{"Machine Breakdown", "Power Failure"}, names)
}
