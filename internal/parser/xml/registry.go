package xml

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"github.com/fiscalxml/processor/internal/model"
)

// Extractor turns sanitized XML content into a canonical document.
type Extractor interface {
	// DocumentType returns the schema family this extractor handles.
	DocumentType() model.DocumentType

	// Extract parses the sanitized content of in. Missing fields degrade to
	// zero values; an error means no usable structure could be recovered.
	Extract(ctx context.Context, in *model.RawInput) (*model.Document, error)
}

// Detection is the outcome of schema detection, including the pattern that
// matched for diagnostics.
type Detection struct {
	Type    model.DocumentType `json:"type"`
	Pattern string             `json:"pattern,omitempty"`
}

type detectionRule struct {
	docType  model.DocumentType
	patterns []string
}

// detectionRules in priority order. The consumer invoice shares the NFe
// schema and is told apart only by model code 65, so its rules must run
// before the generic NFe markers.
var detectionRules = []detectionRule{
	{model.TypeConsumerInvoice, []string{"mod>65</mod", "procnfce", "nfce"}},
	{model.TypeProductInvoice, []string{"infnfe", "procnfe", "portalfiscal.inf.br/nfe"}},
	{model.TypeWaybill, []string{"infcte", "proccte", "portalfiscal.inf.br/cte"}},
	{model.TypeServiceInvoice, []string{"infnfse", "compnfse", "prestadorservico", "nfse"}},
}

// Detect identifies the schema family by substring markers over the
// lowercased content. Returns TypeUnknown when nothing matches.
func Detect(content []byte) Detection {
	lower := strings.ToLower(string(content))
	for _, rule := range detectionRules {
		for _, pattern := range rule.patterns {
			if strings.Contains(lower, pattern) {
				return Detection{Type: rule.docType, Pattern: pattern}
			}
		}
	}
	return Detection{Type: model.TypeUnknown}
}

// Registry routes content to the extractor of its detected schema family,
// with the generic extractor as the last line of defense.
type Registry struct {
	extractors map[model.DocumentType]Extractor
	generic    Extractor
	log        zerolog.Logger
}

// NewRegistry creates a registry with all built-in extractors.
func NewRegistry(log zerolog.Logger) *Registry {
	r := &Registry{
		extractors: make(map[model.DocumentType]Extractor),
		generic:    newGenericExtractor(),
		log:        log,
	}
	for _, e := range []Extractor{
		newProductInvoiceExtractor(),
		newConsumerInvoiceExtractor(),
		newWaybillExtractor(),
		newServiceInvoiceExtractor(),
	} {
		r.extractors[e.DocumentType()] = e
	}
	return r
}

// Register adds or replaces the extractor for its document type.
func (r *Registry) Register(e Extractor) {
	r.extractors[e.DocumentType()] = e
}

// Extract detects the schema family and runs the matching extractor. A typed
// extractor failure is absorbed by falling back to the generic extractor, so
// the caller only sees an error when even a minimal document cannot be
// recovered.
func (r *Registry) Extract(ctx context.Context, in *model.RawInput) (*model.Document, Detection, error) {
	if err := ctx.Err(); err != nil {
		return nil, Detection{Type: model.TypeUnknown}, err
	}

	det := Detect(in.Content)
	extractor, ok := r.extractors[det.Type]
	if !ok {
		extractor = r.generic
	}

	doc, err := extractor.Extract(ctx, in)
	if err != nil && extractor != r.generic {
		r.log.Warn().
			Str("file", in.Name).
			Str("type", det.Type.String()).
			Err(err).
			Msg("typed extraction failed, falling back to generic")
		doc, err = r.generic.Extract(ctx, in)
	}
	if err != nil {
		return nil, det, err
	}
	return doc, det, nil
}
