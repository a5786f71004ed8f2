package contract

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"sync"

	"github.com/getkin/kin-openapi/openapi3"
)

//go:embed openapi.yaml
var document []byte

// Operation ids declared by the embedded document.
const (
	OpPredict        = "predict"
	OpLogin          = "login"
	OpRegister       = "register"
	OpAnalysis       = "analysis"
	OpProcessPayment = "processPayment"
)

// ErrUnknownOperation is returned for operation ids the contract lacks.
var ErrUnknownOperation = errors.New("contract: unknown operation")

// Endpoint is the method and path of one operation.
type Endpoint struct {
	ID     string
	Method string
	Path   string
}

type operation struct {
	endpoint  Endpoint
	request   *openapi3.Schema
	responses *openapi3.Responses
}

// Contract is a parsed, validated API description.
type Contract struct {
	title      string
	version    string
	operations map[string]operation
}

// Load parses data, validates the document and indexes its operations by id.
func Load(ctx context.Context, data []byte) (*Contract, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, errors.New("contract: document payload is empty")
	}

	loader := &openapi3.Loader{Context: ctx}
	spec, err := loader.LoadFromData(data)
	if err != nil {
		return nil, fmt.Errorf("contract: load document: %w", err)
	}
	if err := spec.Validate(ctx, openapi3.DisableExamplesValidation()); err != nil {
		return nil, fmt.Errorf("contract: validate: %w", err)
	}
	if spec.Paths == nil || spec.Paths.Len() == 0 {
		return nil, errors.New("contract: document does not contain any paths")
	}

	c := &Contract{operations: make(map[string]operation)}
	if spec.Info != nil {
		c.title, c.version = spec.Info.Title, spec.Info.Version
	}
	for path, item := range spec.Paths.Map() {
		if item == nil {
			continue
		}
		for method, op := range item.Operations() {
			if op == nil {
				continue
			}
			id := op.OperationID
			if id == "" {
				id = strings.ToLower(method) + ":" + path
			}
			c.operations[id] = operation{
				endpoint:  Endpoint{ID: id, Method: strings.ToUpper(method), Path: path},
				request:   requestSchema(op.RequestBody),
				responses: op.Responses,
			}
		}
	}
	return c, nil
}

func requestSchema(body *openapi3.RequestBodyRef) *openapi3.Schema {
	if body == nil || body.Value == nil {
		return nil
	}
	mt := body.Value.Content.Get("application/json")
	if mt == nil || mt.Schema == nil {
		return nil
	}
	return mt.Schema.Value
}

var (
	defaultOnce sync.Once
	defaultDoc  *Contract
)

// Default returns the embedded contract, parsed once.
func Default() *Contract {
	defaultOnce.Do(func() {
		c, err := Load(context.Background(), document)
		if err != nil {
			panic(err)
		}
		defaultDoc = c
	})
	return defaultDoc
}

// Raw returns a copy of the embedded document.
func Raw() []byte {
	return append([]byte(nil), document...)
}

// Title returns the document title and version.
func (c *Contract) Title() (string, string) {
	return c.title, c.version
}

// Endpoint returns the method and path of operation id.
func (c *Contract) Endpoint(id string) (Endpoint, error) {
	op, ok := c.operations[id]
	if !ok {
		return Endpoint{}, fmt.Errorf("%w: %s", ErrUnknownOperation, id)
	}
	return op.endpoint, nil
}

// Endpoints lists every operation sorted by id.
func (c *Contract) Endpoints() []Endpoint {
	out := make([]Endpoint, 0, len(c.operations))
	for _, op := range c.operations {
		out = append(out, op.endpoint)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// ValidateRequest checks v, any JSON-marshalable value, against the request
// body schema of operation id. Operations without a body accept anything.
func (c *Contract) ValidateRequest(id string, v any) error {
	op, ok := c.operations[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownOperation, id)
	}
	if op.request == nil {
		return nil
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("contract: encode %s request: %w", id, err)
	}
	return validate(id, op.request, raw)
}

// ValidateResponse checks a raw JSON body returned with status against the
// response schema of operation id. Statuses without a declared JSON schema
// accept anything.
func (c *Contract) ValidateResponse(id string, status int, body []byte) error {
	op, ok := c.operations[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownOperation, id)
	}
	if op.responses == nil {
		return nil
	}
	ref := op.responses.Status(status)
	if ref == nil && (status < http.StatusOK || status >= http.StatusMultipleChoices) {
		ref = op.responses.Default()
	}
	if ref == nil || ref.Value == nil {
		return nil
	}
	mt := ref.Value.Content.Get("application/json")
	if mt == nil || mt.Schema == nil || mt.Schema.Value == nil {
		return nil
	}
	return validate(id, mt.Schema.Value, body)
}

func validate(id string, schema *openapi3.Schema, raw []byte) error {
	var value any
	if err := json.Unmarshal(raw, &value); err != nil {
		return &ViolationError{Operation: id, Pointer: "/", Reason: "body is not valid JSON", Err: err}
	}
	if err := schema.VisitJSON(value); err != nil {
		return violation(id, err)
	}
	return nil
}
