// Package xml extracts canonical documents from the four Brazilian fiscal
// XML schemas. Each extractor resolves fields through fallback chains of
// element paths, so layout variations between emitters degrade individual
// fields instead of failing the whole document.
package xml

import (
	"errors"
	"strings"
	"time"

	"github.com/beevik/etree"
	"github.com/shopspring/decimal"

	"github.com/fiscalxml/processor/internal/normalize"
)

// parseTree parses sanitized XML content with the permissive reader, which
// tolerates the undeclared entities and stray markup common in these files.
func parseTree(content []byte) (*etree.Document, error) {
	doc := etree.NewDocument()
	doc.ReadSettings.Permissive = true
	if err := doc.ReadFromBytes(content); err != nil {
		return nil, err
	}
	if doc.Root() == nil {
		return nil, errors.New("no root element")
	}
	return doc, nil
}

// findElement returns the first element resolved by the path chain.
func findElement(root *etree.Element, paths ...string) *etree.Element {
	for _, path := range paths {
		if el := root.FindElement(path); el != nil {
			return el
		}
	}
	return nil
}

// findText returns the trimmed text of the first path in the chain that
// resolves to an element with non-empty text.
func findText(root *etree.Element, paths ...string) string {
	for _, path := range paths {
		if el := root.FindElement(path); el != nil {
			if text := strings.TrimSpace(el.Text()); text != "" {
				return text
			}
		}
	}
	return ""
}

// findAttr returns the named attribute of the first path that resolves.
func findAttr(root *etree.Element, attr string, paths ...string) string {
	for _, path := range paths {
		if el := root.FindElement(path); el != nil {
			if v := el.SelectAttrValue(attr, ""); v != "" {
				return v
			}
		}
	}
	return ""
}

func findDecimal(root *etree.Element, paths ...string) decimal.Decimal {
	return normalize.ParseDecimal(findText(root, paths...))
}

func findDate(root *etree.Element, paths ...string) *time.Time {
	return normalize.ParseDate(findText(root, paths...))
}

// findLocal searches the subtree depth-first for an element whose local tag
// matches one of the given names, case-insensitively. Service invoices have
// no single national schema, so their extractor matches local names instead
// of fixed paths. Names form a fallback chain: the first name is exhausted
// over the whole subtree before the second is tried.
func findLocal(root *etree.Element, names ...string) *etree.Element {
	for _, name := range names {
		if el := findLocalOne(root, strings.ToLower(name)); el != nil {
			return el
		}
	}
	return nil
}

func findLocalOne(el *etree.Element, name string) *etree.Element {
	if strings.ToLower(el.Tag) == name {
		return el
	}
	for _, child := range el.ChildElements() {
		if found := findLocalOne(child, name); found != nil {
			return found
		}
	}
	return nil
}

func localText(root *etree.Element, names ...string) string {
	for _, name := range names {
		if el := findLocalOne(root, strings.ToLower(name)); el != nil {
			if text := strings.TrimSpace(el.Text()); text != "" {
				return text
			}
		}
	}
	return ""
}

func localDecimal(root *etree.Element, names ...string) decimal.Decimal {
	return normalize.ParseDecimal(localText(root, names...))
}

func localDate(root *etree.Element, names ...string) *time.Time {
	return normalize.ParseDate(localText(root, names...))
}
