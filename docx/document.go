package docx

import "encoding/xml"

// documentXML represents the structure of word/document.xml
type documentXML struct {
	XMLName xml.Name `xml:"document"`
	Body    *bodyXML `xml:"body"`
}

// bodyXML represents the document body.
type bodyXML struct {
	Paragraphs []paragraphXML `xml:"p"`
	Tables     []tableXML     `xml:"tbl"`
}

// paragraphXML represents a paragraph element (<w:p>).
type paragraphXML struct {
	XMLName xml.Name `xml:"p"`
	Runs    []runXML `xml:"r"`
}

// runXML represents a text run (<w:r>). Children are kept in document order
// so interleaved text, tabs, and breaks render where they occurred.
type runXML struct {
	XMLName  xml.Name        `xml:"r"`
	Elements []runElementXML `xml:",any"`
}

// runElementXML is one child of a run: <w:t> (chardata in Value), <w:tab>,
// or <w:br> (Type attr: page, column, textWrapping). Other children, such
// as run properties, carry an unhandled XMLName and are ignored.
type runElementXML struct {
	XMLName xml.Name
	Type    string `xml:"type,attr"`
	Value   string `xml:",chardata"`
}

// tableXML represents a table (<w:tbl>).
type tableXML struct {
	XMLName xml.Name      `xml:"tbl"`
	Rows    []tableRowXML `xml:"tr"`
}

// tableRowXML represents a table row (<w:tr>).
type tableRowXML struct {
	XMLName xml.Name       `xml:"tr"`
	Cells   []tableCellXML `xml:"tc"`
}

// tableCellXML represents a table cell (<w:tc>).
type tableCellXML struct {
	XMLName    xml.Name       `xml:"tc"`
	Paragraphs []paragraphXML `xml:"p"`
}
