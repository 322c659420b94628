package xml

import (
	"context"

	"github.com/fiscalxml/processor/internal/model"
)

// genericExtractor recovers a minimal unknown-type document from any
// well-formed XML. It is the fallback when detection finds no known schema
// or a typed extractor fails; its own failure rejects the file.
type genericExtractor struct{}

func newGenericExtractor() *genericExtractor {
	return &genericExtractor{}
}

func (e *genericExtractor) DocumentType() model.DocumentType {
	return model.TypeUnknown
}

func (e *genericExtractor) Extract(_ context.Context, in *model.RawInput) (*model.Document, error) {
	tree, err := parseTree(in.Content)
	if err != nil {
		return nil, model.NewExtractionError(model.TypeUnknown, "content is not parseable XML", err)
	}

	doc := &model.Document{Type: model.TypeUnknown}
	doc.SetExtra("root_element", tree.Root().Tag)
	return doc, nil
}
