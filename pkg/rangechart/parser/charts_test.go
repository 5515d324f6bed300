package parser

import (
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/ukaji3/rangechart-go/pkg/rangechart/models"
)

func TestChartType(t *testing.T) {
	tests := []struct {
		kind     plotKind
		barDir   string
		grouping string
		expected models.ChartType
	}{
		{plotBar, "col", "clustered", models.GroupedColumn},
		{plotBar, "col", "stacked", models.StackedColumn},
		{plotBar, "col", "percentStacked", models.NormalizedColumn},
		{plotBar, "bar", "clustered", models.GroupedBar},
		{plotBar, "bar", "stacked", models.StackedBar},
		{plotBar, "bar", "percentStacked", models.NormalizedBar},
		{plotLine, "", "standard", models.Line},
		{plotPie, "", "", models.Pie},
		{plotDoughnut, "", "", models.Doughnut},
		{plotScatter, "", "", models.Scatter},
		{plotUnsupported, "", "", ""},
	}

	for _, tt := range tests {
		if got := chartType(tt.kind, tt.barDir, tt.grouping); got != tt.expected {
			t.Errorf("chartType(%v, %q, %q) = %q, expected %q", tt.kind, tt.barDir, tt.grouping, got, tt.expected)
		}
	}
}

func TestParseChartXML(t *testing.T) {
	data := []byte(`<c:chartSpace xmlns:c="http://schemas.openxmlformats.org/drawingml/2006/chart" xmlns:a="http://schemas.openxmlformats.org/drawingml/2006/main">
<c:chart>
<c:title><c:tx><c:rich><a:p><a:r><a:t>Medal </a:t></a:r><a:r><a:t>count</a:t></a:r></a:p></c:rich></c:tx></c:title>
<c:plotArea>
<c:barChart>
<c:barDir val="bar"/><c:grouping val="stacked"/>
<c:ser>
<c:tx><c:strRef><c:f>Sheet1!$C$2</c:f><c:strCache><c:pt idx="0"><c:v>Gold</c:v></c:pt></c:strCache></c:strRef></c:tx>
<c:cat><c:strRef><c:f>Sheet1!$B$3:$B$5</c:f></c:strRef></c:cat>
<c:val><c:numRef><c:f>Sheet1!$C$3:$C$5</c:f></c:numRef></c:val>
</c:ser>
</c:barChart>
<c:lineChart><c:grouping val="standard"/>
<c:ser><c:val><c:numRef><c:f>Sheet1!$E$3:$E$5</c:f></c:numRef></c:val></c:ser>
</c:lineChart>
<c:catAx><c:title><c:tx><c:rich><a:p><a:r><a:t>Axis</a:t></a:r></a:p></c:rich></c:tx></c:title></c:catAx>
</c:plotArea>
</c:chart>
</c:chartSpace>`)

	spec := parseChartXML(data)
	if spec.Title != "Medal count" {
		t.Errorf("Expected title %q, got %q", "Medal count", spec.Title)
	}
	if spec.ChartType != models.StackedBar {
		t.Errorf("Expected stacked bar, got %q", spec.ChartType)
	}
	if len(spec.Series) != 2 {
		t.Fatalf("Expected 2 series, got %d", len(spec.Series))
	}
	first := spec.Series[0]
	if first.Name != "Gold" || first.NameRange != "Sheet1!$C$2" {
		t.Errorf("Unexpected series name: %+v", first)
	}
	if first.CategoryRange != "Sheet1!$B$3:$B$5" || first.ValueRange != "Sheet1!$C$3:$C$5" {
		t.Errorf("Unexpected series ranges: %+v", first)
	}
	if spec.Series[1].ValueRange != "Sheet1!$E$3:$E$5" {
		t.Errorf("Unexpected second series: %+v", spec.Series[1])
	}
}

func TestExtractChartSpecs(t *testing.T) {
	f := excelize.NewFile()
	sheet := "Sheet1"
	for i, row := range [][]any{
		{"Country", "Gold", "Silver"},
		{"Norway", 16, 8},
		{"Germany", 12, 10},
	} {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			t.Fatalf("SetSheetRow failed: %v", err)
		}
	}
	if err := f.AddChart(sheet, "E2", &excelize.Chart{
		Type: excelize.ColStacked,
		Series: []excelize.ChartSeries{
			{Name: "Sheet1!$B$1", Categories: "Sheet1!$A$2:$A$3", Values: "Sheet1!$B$2:$B$3"},
			{Name: "Sheet1!$C$1", Categories: "Sheet1!$A$2:$A$3", Values: "Sheet1!$C$2:$C$3"},
		},
		Title: []excelize.RichTextRun{{Text: "Medals"}},
	}); err != nil {
		t.Fatalf("AddChart failed: %v", err)
	}
	path := filepath.Join(t.TempDir(), "chart.xlsx")
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("Failed to save test file: %v", err)
	}
	f.Close()

	specs, err := ExtractChartSpecs(path)
	if err != nil {
		t.Fatalf("ExtractChartSpecs failed: %v", err)
	}
	charts := specs[sheet]
	if len(charts) != 1 {
		t.Fatalf("Expected 1 chart on %s, got %d", sheet, len(charts))
	}
	chart := charts[0]
	if chart.ChartType != models.StackedColumn {
		t.Errorf("Expected stacked column, got %q", chart.ChartType)
	}
	if chart.Title != "Medals" {
		t.Errorf("Expected title Medals, got %q", chart.Title)
	}
	if chart.Name == "" {
		t.Error("Expected the drawing object name to be set")
	}
	if len(chart.Series) != 2 {
		t.Fatalf("Expected 2 series, got %d", len(chart.Series))
	}
	if chart.Series[1].ValueRange != "Sheet1!$C$2:$C$3" {
		t.Errorf("Unexpected value range: %q", chart.Series[1].ValueRange)
	}
	if chart.Series[0].CategoryRange != "Sheet1!$A$2:$A$3" {
		t.Errorf("Unexpected category range: %q", chart.Series[0].CategoryRange)
	}
}

func TestResolvePart(t *testing.T) {
	tests := []struct {
		base, target, expected string
	}{
		{"xl/worksheets", "../drawings/drawing1.xml", "xl/drawings/drawing1.xml"},
		{"xl", "worksheets/sheet1.xml", "xl/worksheets/sheet1.xml"},
		{"xl/drawings", "/xl/charts/chart1.xml", "xl/charts/chart1.xml"},
	}
	for _, tt := range tests {
		if got := resolvePart(tt.base, tt.target); got != tt.expected {
			t.Errorf("resolvePart(%q, %q) = %q, expected %q", tt.base, tt.target, got, tt.expected)
		}
	}
}

func TestPartLess(t *testing.T) {
	if !partLess("xl/charts/chart2.xml", "xl/charts/chart10.xml") {
		t.Error("Expected chart2 before chart10")
	}
	if partLess("xl/charts/chart3.xml", "xl/charts/chart1.xml") {
		t.Error("Expected chart1 before chart3")
	}
}
