package parser

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"io"
	"path"
	"strings"
)

// ooxmlPackage reads parts of an xlsx package that excelize does not expose.
type ooxmlPackage struct {
	r *zip.Reader
}

func (p ooxmlPackage) read(name string) ([]byte, error) {
	for _, f := range p.r.File {
		if f.Name == name {
			rc, err := f.Open()
			if err != nil {
				return nil, err
			}
			defer rc.Close()
			return io.ReadAll(rc)
		}
	}
	return nil, nil
}

// relationship is one entry of a .rels part.
type relationship struct {
	ID     string
	Type   string
	Target string
}

// relationships reads the .rels part belonging to partName.
func (p ooxmlPackage) relationships(partName string) ([]relationship, error) {
	dir, file := path.Split(partName)
	data, err := p.read(dir + "_rels/" + file + ".rels")
	if err != nil || data == nil {
		return nil, err
	}

	var rels []relationship
	decoder := xml.NewDecoder(bytes.NewReader(data))
	for {
		token, err := decoder.Token()
		if err != nil {
			break
		}
		se, ok := token.(xml.StartElement)
		if !ok || se.Name.Local != "Relationship" {
			continue
		}
		var rel relationship
		for _, attr := range se.Attr {
			switch attr.Name.Local {
			case "Id":
				rel.ID = attr.Value
			case "Type":
				rel.Type = attr.Value
			case "Target":
				rel.Target = attr.Value
			}
		}
		rels = append(rels, rel)
	}
	return rels, nil
}

// sheetParts maps sheet names to their worksheet part, in workbook order.
func (p ooxmlPackage) sheetParts() ([]string, map[string]string, error) {
	data, err := p.read("xl/workbook.xml")
	if err != nil || data == nil {
		return nil, nil, err
	}

	var names []string
	byRID := make(map[string]string)
	decoder := xml.NewDecoder(bytes.NewReader(data))
	for {
		token, err := decoder.Token()
		if err != nil {
			break
		}
		se, ok := token.(xml.StartElement)
		if !ok || se.Name.Local != "sheet" {
			continue
		}
		var name, rID string
		for _, attr := range se.Attr {
			switch attr.Name.Local {
			case "name":
				name = attr.Value
			case "id":
				rID = attr.Value
			}
		}
		if name != "" && rID != "" {
			names = append(names, name)
			byRID[rID] = name
		}
	}

	rels, err := p.relationships("xl/workbook.xml")
	if err != nil {
		return nil, nil, err
	}
	parts := make(map[string]string)
	for _, rel := range rels {
		if name, ok := byRID[rel.ID]; ok && strings.Contains(strings.ToLower(rel.Type), "worksheet") {
			parts[name] = resolvePart("xl", rel.Target)
		}
	}
	return names, parts, nil
}

// resolvePart resolves a relationship target against the directory of the
// part that owns the relationship.
func resolvePart(baseDir, target string) string {
	if strings.HasPrefix(target, "/") {
		return strings.TrimPrefix(target, "/")
	}
	return path.Clean(path.Join(baseDir, target))
}

func readElementText(decoder *xml.Decoder) (string, error) {
	var text strings.Builder
	depth := 1
	for depth > 0 {
		token, err := decoder.Token()
		if err != nil {
			return text.String(), err
		}
		switch t := token.(type) {
		case xml.CharData:
			text.Write(t)
		case xml.StartElement:
			depth++
		case xml.EndElement:
			depth--
		}
	}
	return text.String(), nil
}

// attr returns the value of the named attribute of se.
func attr(se xml.StartElement, local string) string {
	for _, a := range se.Attr {
		if a.Name.Local == local {
			return a.Value
		}
	}
	return ""
}
