package export

import (
	"bytes"
	"encoding/csv"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/HerbHall/pricescout/internal/testutil"
	"github.com/HerbHall/pricescout/pkg/models"
)

func sampleProducts() []models.Product {
	priced := testutil.NewProduct(
		testutil.WithID("p1"),
		testutil.WithName("Galaxy S24"),
		testutil.WithOffers(12999, 11999.5),
	)
	priced.OriginalPrice = 14999
	unpriced := testutil.NewProduct(testutil.WithID("p2"), testutil.WithName("Pixel 9"), testutil.WithBrand("Google"))
	return []models.Product{priced, unpriced}
}

func TestRow_ColumnCount(t *testing.T) {
	p := sampleProducts()[0]
	got := toRow(&p).values()
	if len(got) != len(columns()) {
		t.Fatalf("expected %d columns, got %d", len(columns()), len(got))
	}
	want := []string{
		"p1", "Galaxy S24", "Samsung", "smartphones", "11999.5", "12999",
		"14999", "2999.5", "2", "shop-2", "https://shop-2.example/p1",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("row mismatch (-want +got):\n%s", diff)
	}
}

func TestRow_UnknownPricesBlank(t *testing.T) {
	p := sampleProducts()[1]
	got := toRow(&p).values()
	for _, i := range []int{4, 5, 6, 7, 9, 10} {
		if got[i] != "" {
			t.Errorf("column %s = %q, want blank", columns()[i], got[i])
		}
	}
	if got[8] != "0" {
		t.Errorf("retailers = %q, want 0", got[8])
	}
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, sampleProducts()))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	require.Equal(t, columns(), records[0])
	require.Equal(t, "p1", records[1][0])
	require.Equal(t, "Pixel 9", records[2][1])
}

func TestWriteCSV_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, nil))
	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 1)
}

func TestWriteXLSX(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, sampleProducts()))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	require.Equal(t, []string{SheetName}, f.GetSheetList())
	rows, err := f.GetRows(SheetName)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	require.Equal(t, columns(), rows[0])
	require.Equal(t, "Galaxy S24", rows[1][1])
	require.Equal(t, "11999.5", rows[1][4])

	lowest, err := f.GetCellValue(SheetName, "E3")
	require.NoError(t, err)
	require.Equal(t, "", lowest)
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"csv", FormatCSV, false},
		{" XLSX ", FormatXLSX, false},
		{"excel", FormatXLSX, false},
		{"pdf", "", true},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseFormat(%q) err = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseFormat(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}

	if FormatFromPath("out/view.XLSX") != FormatXLSX {
		t.Error("expected xlsx from extension")
	}
	if FormatFromPath("view.txt") != FormatCSV {
		t.Error("expected csv default")
	}
}

func TestWrite_UnknownFormat(t *testing.T) {
	var buf bytes.Buffer
	require.Error(t, Write(&buf, "pdf", nil))
}
