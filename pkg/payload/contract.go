package payload

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
)

// ErrContractViolation wraps schema failures reported by Contract.Validate.
var ErrContractViolation = errors.New("payload: contract violation")

// Contract checks payloads against the JSON request body schema of a POST
// operation in an OpenAPI document.
type Contract struct {
	Path        string
	OperationID string
	schema      *openapi3.SchemaRef
}

// LoadContract parses an OpenAPI document and selects the POST operation
// serving submitURL. When the URL path matches no entry and the document has
// exactly one POST operation, that operation is used.
func LoadContract(ctx context.Context, raw []byte, submitURL string) (*Contract, error) {
	if len(raw) == 0 {
		return nil, errors.New("payload: contract document is empty")
	}

	loader := &openapi3.Loader{Context: ctx}
	doc, err := loader.LoadFromData(raw)
	if err != nil {
		return nil, fmt.Errorf("payload: load contract: %w", err)
	}
	if err := doc.Validate(ctx, openapi3.DisableExamplesValidation()); err != nil {
		return nil, fmt.Errorf("payload: validate contract: %w", err)
	}
	if doc.Paths == nil || doc.Paths.Len() == 0 {
		return nil, errors.New("payload: contract declares no paths")
	}

	want := ""
	if u, err := url.Parse(submitURL); err == nil {
		want = u.Path
	}

	var candidates []string
	for path, item := range doc.Paths.Map() {
		if item != nil && item.Post != nil {
			candidates = append(candidates, path)
		}
	}
	sort.Strings(candidates)

	var chosen string
	for _, path := range candidates {
		if path == want {
			chosen = path
			break
		}
	}
	if chosen == "" {
		if len(candidates) != 1 {
			return nil, fmt.Errorf("payload: contract has no POST operation for %q (candidates: %s)", want, strings.Join(candidates, ", "))
		}
		chosen = candidates[0]
	}

	op := doc.Paths.Value(chosen).Post
	if op.RequestBody == nil || op.RequestBody.Value == nil {
		return nil, fmt.Errorf("payload: contract operation POST %s has no request body", chosen)
	}
	media := op.RequestBody.Value.Content.Get("application/json")
	if media == nil || media.Schema == nil {
		return nil, fmt.Errorf("payload: contract operation POST %s has no application/json schema", chosen)
	}

	return &Contract{Path: chosen, OperationID: op.OperationID, schema: media.Schema}, nil
}

// Validate reports every schema failure for payload. The payload is
// normalised through encoding/json first so Go numeric types match the JSON
// model the schema expects.
func (c *Contract) Validate(payload map[string]any) error {
	if c == nil || c.schema == nil || c.schema.Value == nil {
		return nil
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("payload: encode for contract: %w", err)
	}
	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return fmt.Errorf("payload: decode for contract: %w", err)
	}
	if err := c.schema.Value.VisitJSON(doc, openapi3.MultiErrors()); err != nil {
		return fmt.Errorf("%w: POST %s: %w", ErrContractViolation, c.Path, err)
	}
	return nil
}
