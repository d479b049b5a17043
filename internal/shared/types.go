package shared

import (
	"encoding/json"
	"fmt"
	"strconv"
)

const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// VarMap carries caller declared variable bindings passed along to the model.
// Values arrive as JSON strings, numbers, or booleans and are normalized to
// their literal text. Anything else rejects the request.
type VarMap map[string]string

func (v *VarMap) UnmarshalJSON(b []byte) error {
	raw := map[string]json.RawMessage{}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	out := make(map[string]string, len(raw))
	for name, val := range raw {
		// Unmarshal treats null as a no-op for every target type, so it
		// has to be rejected up front.
		if string(val) == "null" {
			return fmt.Errorf("variable %q has an unsupported value type", name)
		}
		var s string
		if err := json.Unmarshal(val, &s); err == nil {
			out[name] = s
			continue
		}
		var n json.Number
		if err := json.Unmarshal(val, &n); err == nil {
			out[name] = n.String()
			continue
		}
		var t bool
		if err := json.Unmarshal(val, &t); err == nil {
			out[name] = strconv.FormatBool(t)
			continue
		}
		return fmt.Errorf("variable %q has an unsupported value type", name)
	}
	*v = out
	return nil
}

type AnalysisRequest struct {
	Image      string `json:"image"`
	DictOfVars VarMap `json:"dict_of_vars"`
}

type ExpressionResult struct {
	Expr   string `json:"expr"`
	Result string `json:"result"`
	Assign bool   `json:"assign"`
}

type Envelope struct {
	Message string             `json:"message"`
	Data    []ExpressionResult `json:"data"`
	Status  string             `json:"status"`
}

// SuccessEnvelope wraps results for the caller. Data is always an array in the
// wire format, never null, so a nil slice is replaced with an empty one.
func SuccessEnvelope(message string, data []ExpressionResult) Envelope {
	if data == nil {
		data = []ExpressionResult{}
	}
	return Envelope{Message: message, Data: data, Status: StatusSuccess}
}

func ErrorEnvelope(message string) Envelope {
	return Envelope{Message: message, Data: []ExpressionResult{}, Status: StatusError}
}

type ErrorReport struct {
	Error     string `json:"error"`
	Traceback string `json:"traceback,omitempty"`
}
