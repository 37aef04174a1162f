package vocabulary

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCropCSVBasic(t *testing.T) {
	csv := "serial_number,crop_code,crop_name,language,project\n" +
		"1,700100,Ash Gourd,english,dcs\n" +
		"2,700101,Brinjal,english,dcs\n"

	entries, err := ParseCropCSV(strings.NewReader(csv))
	require.NoError(t, err)
	require.Len(t, entries, 2)

	assert.Equal(t, CropEntry{Serial: 1, Code: "700100", Name: "Ash Gourd", Language: "english", Project: "dcs"}, entries[0])
	assert.Equal(t, 2, entries[1].Serial)
	assert.Equal(t, "Brinjal", entries[1].Name)
}

func TestParseCropCSVHeaderVariants(t *testing.T) {
	headers := []string{
		"serial_number,crop_code,crop_name,language,project",
		"serialnumber,cropcode,cropname,lang,proj",
		"serial,cropcode,crop_name,language,proj",
		"Serial Number,Crop Code,Crop Name,Language,Project", // spaces stripped by normalization
		"SERIAL_NUMBER,CROP_CODE,CROP_NAME,LANGUAGE,PROJECT",
	}

	for _, header := range headers {
		csv := header + "\n5,800,Okra,Hindi,DCS\n"
		entries, err := ParseCropCSV(strings.NewReader(csv))
		require.NoError(t, err, "header %q should be accepted", header)
		require.Len(t, entries, 1)
		assert.Equal(t, 5, entries[0].Serial)
		assert.Equal(t, "Okra", entries[0].Name)
		assert.Equal(t, "hindi", entries[0].Language, "language should be lowercased")
		assert.Equal(t, "dcs", entries[0].Project, "project should be lowercased")
	}
}

func TestParseCropCSVColumnOrderIndependent(t *testing.T) {
	csv := "project,language,crop_name,crop_code,serial_number\n" +
		"dcs,english,Ash Gourd,700100,1\n"

	entries, err := ParseCropCSV(strings.NewReader(csv))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, 1, entries[0].Serial)
	assert.Equal(t, "700100", entries[0].Code)
	assert.Equal(t, "Ash Gourd", entries[0].Name)
}

func TestParseCropCSVMissingColumn(t *testing.T) {
	csv := "serial_number,crop_code,language,project\n1,700100,english,dcs\n"

	_, err := ParseCropCSV(strings.NewReader(csv))
	require.Error(t, err)

	var malformed *MalformedInputError
	require.True(t, errors.As(err, &malformed))
	assert.Contains(t, malformed.MissingColumns, "cropname")
	assert.Contains(t, malformed.FoundHeaders, "serial_number")
}

func TestParseCropCSVTooShort(t *testing.T) {
	for _, input := range []string{"", "   \n  \n", "serial_number,crop_code,crop_name,language,project\n"} {
		_, err := ParseCropCSV(strings.NewReader(input))
		var malformed *MalformedInputError
		require.True(t, errors.As(err, &malformed), "input %q should be malformed", input)
	}
}

func TestParseCropCSVSkipsBlankAndShortRows(t *testing.T) {
	csv := "serial_number,crop_code,crop_name,language,project\n" +
		"\n" +
		"1,700100,Ash Gourd,english,dcs\n" +
		"only,three,fields\n" +
		"   \n" +
		"2,700101,Brinjal,english,dcs\n"

	entries, err := ParseCropCSV(strings.NewReader(csv))
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "Ash Gourd", entries[0].Name)
	assert.Equal(t, "Brinjal", entries[1].Name)
}

func TestParseCropCSVShortRowWithWideHeader(t *testing.T) {
	// Extra header columns push a required column past index 4; rows that do
	// not reach it must be skipped, not indexed out of range.
	csv := "id,serial_number,crop_code,crop_name,language,project\n" +
		"x,1,700100,Ash Gourd,english\n" +
		"y,2,700101,Brinjal,english,dcs\n"

	entries, err := ParseCropCSV(strings.NewReader(csv))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "Brinjal", entries[0].Name)
	assert.Equal(t, "dcs", entries[0].Project)
}

func TestParseCropCSVSerialFallback(t *testing.T) {
	// A non-numeric serial falls back to the 1-based data-row position.
	csv := "serial_number,crop_code,crop_name,language,project\n" +
		"abc,700100,Ash Gourd,english,dcs\n" +
		"7,700101,Brinjal,english,dcs\n"

	entries, err := ParseCropCSV(strings.NewReader(csv))
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, 1, entries[0].Serial)
	assert.Equal(t, 7, entries[1].Serial)
}

func TestParseCropCSVPreservesFileOrder(t *testing.T) {
	csv := "serial_number,crop_code,crop_name,language,project\n" +
		"3,700102,Carrot,english,dcs\n" +
		"1,700100,Ash Gourd,english,dcs\n" +
		"2,700101,Brinjal,english,dcs\n"

	entries, err := ParseCropCSV(strings.NewReader(csv))
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, []int{3, 1, 2}, []int{entries[0].Serial, entries[1].Serial, entries[2].Serial})
}

func TestNormalizeHeaderCell(t *testing.T) {
	assert.Equal(t, "serial_number", normalizeHeaderCell(" Serial_Number "))
	assert.Equal(t, "cropname", normalizeHeaderCell("Crop Name"))
	assert.Equal(t, "lang", normalizeHeaderCell("Lang!"))
	assert.Equal(t, "", normalizeHeaderCell("   "))
}
