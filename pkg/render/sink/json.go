package sink

import (
	"context"
	"encoding/json"

	"github.com/matzehuels/tabpanel/pkg/errors"
)

// JSONRenderer writes the document definition as indented JSON.
type JSONRenderer struct{}

// Render implements [Renderer].
func (JSONRenderer) Render(_ context.Context, in Input) ([]byte, error) {
	if in.Definition == nil {
		return nil, errors.New(errors.ErrCodeInvalidInput, "json: no document definition")
	}
	data, err := json.MarshalIndent(in.Definition, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}
