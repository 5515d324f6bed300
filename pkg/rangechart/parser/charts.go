package parser

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"path"
	"sort"
	"strconv"
	"strings"

	"github.com/ukaji3/rangechart-go/pkg/rangechart/models"
)

// plotKind is the family of an OOXML plot element.
type plotKind int

const (
	plotUnsupported plotKind = iota
	plotBar
	plotLine
	plotArea
	plotPie
	plotDoughnut
	plotScatter
)

// plotElements maps OOXML plot element tags to their chart family. Families
// without a chart type equivalent still yield their series.
var plotElements = map[string]plotKind{
	"barChart":       plotBar,
	"bar3DChart":     plotBar,
	"lineChart":      plotLine,
	"line3DChart":    plotLine,
	"areaChart":      plotArea,
	"area3DChart":    plotArea,
	"pieChart":       plotPie,
	"pie3DChart":     plotPie,
	"ofPieChart":     plotPie,
	"doughnutChart":  plotDoughnut,
	"scatterChart":   plotScatter,
	"bubbleChart":    plotScatter,
	"radarChart":     plotUnsupported,
	"surfaceChart":   plotUnsupported,
	"surface3DChart": plotUnsupported,
	"stockChart":     plotUnsupported,
}

// chartType resolves the chart type of a plot element. Bar plots depend on
// their direction and grouping.
func chartType(kind plotKind, barDir, grouping string) models.ChartType {
	switch kind {
	case plotBar:
		horizontal := barDir == "bar"
		switch grouping {
		case "stacked":
			if horizontal {
				return models.StackedBar
			}
			return models.StackedColumn
		case "percentStacked":
			if horizontal {
				return models.NormalizedBar
			}
			return models.NormalizedColumn
		default:
			if horizontal {
				return models.GroupedBar
			}
			return models.GroupedColumn
		}
	case plotLine:
		return models.Line
	case plotArea:
		return models.Area
	case plotPie:
		return models.Pie
	case plotDoughnut:
		return models.Doughnut
	case plotScatter:
		return models.Scatter
	}
	return ""
}

// chartPart locates a chart within a drawing.
type chartPart struct {
	name   string
	part   string
	width  int
	height int
}

// ExtractChartSpecs reads every chart of an xlsx file, keyed by sheet name.
// Charts of a sheet are ordered by their part name.
func ExtractChartSpecs(xlsxPath string) (map[string][]models.ChartSpec, error) {
	r, err := zip.OpenReader(xlsxPath)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", xlsxPath, err)
	}
	defer r.Close()

	pkg := ooxmlPackage{r: &r.Reader}
	_, sheets, err := pkg.sheetParts()
	if err != nil {
		return nil, err
	}

	result := make(map[string][]models.ChartSpec)
	for sheet, sheetPart := range sheets {
		parts, err := pkg.chartParts(sheetPart)
		if err != nil {
			return nil, fmt.Errorf("sheet %q: %w", sheet, err)
		}
		for _, cp := range parts {
			data, err := pkg.read(cp.part)
			if err != nil {
				return nil, fmt.Errorf("reading %s: %w", cp.part, err)
			}
			if data == nil {
				continue
			}
			spec := parseChartXML(data)
			spec.Name = cp.name
			spec.Width, spec.Height = cp.width, cp.height
			result[sheet] = append(result[sheet], spec)
		}
	}
	return result, nil
}

// chartParts lists the charts drawn on a worksheet.
func (p ooxmlPackage) chartParts(sheetPart string) ([]chartPart, error) {
	rels, err := p.relationships(sheetPart)
	if err != nil {
		return nil, err
	}

	var out []chartPart
	for _, rel := range rels {
		if !strings.HasSuffix(strings.ToLower(rel.Type), "/drawing") {
			continue
		}
		drawing := resolvePart(path.Dir(sheetPart), rel.Target)
		data, err := p.read(drawing)
		if err != nil {
			return nil, err
		}
		if data == nil {
			continue
		}
		drawingRels, err := p.relationships(drawing)
		if err != nil {
			return nil, err
		}
		targets := make(map[string]string)
		for _, dr := range drawingRels {
			if strings.HasSuffix(strings.ToLower(dr.Type), "/chart") {
				targets[dr.ID] = resolvePart(path.Dir(drawing), dr.Target)
			}
		}
		for rID, frame := range parseDrawingForCharts(data) {
			if part, ok := targets[rID]; ok {
				frame.part = part
				out = append(out, frame)
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return partLess(out[i].part, out[j].part) })
	return out, nil
}

// partLess orders chart2.xml before chart10.xml.
func partLess(a, b string) bool {
	na, ea := partNumber(a)
	nb, eb := partNumber(b)
	if ea == nil && eb == nil && na != nb {
		return na < nb
	}
	return a < b
}

func partNumber(part string) (int, error) {
	base := strings.TrimSuffix(path.Base(part), ".xml")
	return strconv.Atoi(strings.TrimLeft(base, "abcdefghijklmnopqrstuvwxyz"))
}

// parseDrawingForCharts returns the chart frames of a drawing, keyed by the
// relationship id of the chart.
func parseDrawingForCharts(data []byte) map[string]chartPart {
	result := make(map[string]chartPart)
	decoder := xml.NewDecoder(bytes.NewReader(data))

	var frame chartPart
	var inFrame bool
	for {
		token, err := decoder.Token()
		if err != nil {
			break
		}
		switch t := token.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "graphicFrame":
				frame, inFrame = chartPart{}, true
			case "cNvPr":
				if inFrame {
					frame.name = attr(t, "name")
				}
			case "xfrm":
				if inFrame {
					frame.width, frame.height = parseXfrm(decoder)
				}
			case "chart":
				if rID := attr(t, "id"); inFrame && rID != "" {
					result[rID] = frame
				}
			}
		case xml.EndElement:
			if t.Name.Local == "graphicFrame" {
				inFrame = false
			}
		}
	}
	return result
}

// parseXfrm reads the frame extent in pixels.
func parseXfrm(decoder *xml.Decoder) (width, height int) {
	walkElement(decoder, func(se xml.StartElement) bool {
		if se.Name.Local != "ext" {
			return false
		}
		if cx, err := strconv.ParseInt(attr(se, "cx"), 10, 64); err == nil {
			width = EMUToPixels(cx)
		}
		if cy, err := strconv.ParseInt(attr(se, "cy"), 10, 64); err == nil {
			height = EMUToPixels(cy)
		}
		return false
	})
	return
}

// parseChartXML reads the title, type and series of a chart part. Only the
// first plot element determines the chart type; series of every plot element
// are collected.
func parseChartXML(data []byte) models.ChartSpec {
	var spec models.ChartSpec
	decoder := xml.NewDecoder(bytes.NewReader(data))

	typed := false
	for {
		token, err := decoder.Token()
		if err != nil {
			break
		}
		se, ok := token.(xml.StartElement)
		if !ok {
			continue
		}
		switch {
		case se.Name.Local == "title" && spec.Title == "":
			spec.Title = parseChartTitle(decoder)
		case strings.HasSuffix(se.Name.Local, "Ax"):
			// Axis titles are not chart titles.
			_ = decoder.Skip()
		default:
			kind, isPlot := plotElements[se.Name.Local]
			if !isPlot {
				continue
			}
			barDir, grouping, series := parsePlot(decoder)
			if !typed {
				spec.ChartType = chartType(kind, barDir, grouping)
				typed = true
			}
			spec.Series = append(spec.Series, series...)
		}
	}
	return spec
}

// walkElement visits the start elements nested in the element the decoder
// is positioned in and returns after its end element. visit reports whether
// it consumed the element it was given.
func walkElement(decoder *xml.Decoder, visit func(xml.StartElement) bool) {
	depth := 1
	for depth > 0 {
		token, err := decoder.Token()
		if err != nil {
			return
		}
		switch t := token.(type) {
		case xml.StartElement:
			if !visit(t) {
				depth++
			}
		case xml.EndElement:
			depth--
		}
	}
}

// trimmedText reads the character data of the current element, trimmed.
func trimmedText(decoder *xml.Decoder) (string, bool) {
	txt, err := readElementText(decoder)
	if err != nil {
		return "", false
	}
	return strings.TrimSpace(txt), true
}

// parseChartTitle joins the text runs of a title element.
func parseChartTitle(decoder *xml.Decoder) string {
	var parts []string
	walkElement(decoder, func(se xml.StartElement) bool {
		if se.Name.Local != "t" {
			return false
		}
		if txt, err := readElementText(decoder); err == nil {
			parts = append(parts, txt)
		}
		return true
	})
	return strings.TrimSpace(strings.Join(parts, ""))
}

// parsePlot reads a plot element such as c:barChart.
func parsePlot(decoder *xml.Decoder) (barDir, grouping string, series []models.SeriesRef) {
	walkElement(decoder, func(se xml.StartElement) bool {
		switch se.Name.Local {
		case "barDir":
			barDir = attr(se, "val")
		case "grouping":
			grouping = attr(se, "val")
		case "ser":
			series = append(series, parseSeries(decoder))
			return true
		}
		return false
	})
	return
}

// parseSeries reads one c:ser element. Scatter series use xVal/yVal in
// place of cat/val.
func parseSeries(decoder *xml.Decoder) models.SeriesRef {
	var s models.SeriesRef
	walkElement(decoder, func(se xml.StartElement) bool {
		switch se.Name.Local {
		case "tx":
			s.Name, s.NameRange = parseSeriesName(decoder)
		case "cat", "xVal":
			s.CategoryRange = parseFormula(decoder)
		case "val", "yVal":
			s.ValueRange = parseFormula(decoder)
		default:
			return false
		}
		return true
	})
	return s
}

// parseSeriesName reads the cached name and the reference of a series name.
func parseSeriesName(decoder *xml.Decoder) (name, nameRange string) {
	walkElement(decoder, func(se xml.StartElement) bool {
		switch se.Name.Local {
		case "f":
			if txt, ok := trimmedText(decoder); ok {
				nameRange = txt
			}
		case "v":
			if txt, ok := trimmedText(decoder); ok {
				name = txt
			}
		default:
			return false
		}
		return true
	})
	return
}

// parseFormula returns the first c:f reference inside the current element
// and consumes the rest of it.
func parseFormula(decoder *xml.Decoder) string {
	var ref string
	walkElement(decoder, func(se xml.StartElement) bool {
		if se.Name.Local != "f" {
			return false
		}
		if txt, ok := trimmedText(decoder); ok && ref == "" {
			ref = txt
		}
		return true
	})
	return ref
}
