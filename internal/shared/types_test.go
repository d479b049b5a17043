package shared

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestVarMapUnmarshal(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		want    map[string]string
		wantErr bool
	}{
		{
			name: "strings",
			body: `{"x": "5", "y": "hello"}`,
			want: map[string]string{"x": "5", "y": "hello"},
		},
		{
			name: "numbers keep literal text",
			body: `{"x": 5, "tau": 6.28}`,
			want: map[string]string{"x": "5", "tau": "6.28"},
		},
		{
			name: "booleans",
			body: `{"flag": true}`,
			want: map[string]string{"flag": "true"},
		},
		{
			name: "empty object",
			body: `{}`,
			want: map[string]string{},
		},
		{
			name:    "array value rejected",
			body:    `{"x": [1, 2]}`,
			wantErr: true,
		},
		{
			name:    "object value rejected",
			body:    `{"x": {"nested": 1}}`,
			wantErr: true,
		},
		{
			name:    "null value rejected",
			body:    `{"x": null}`,
			wantErr: true,
		},
		{
			name:    "not an object",
			body:    `[1, 2]`,
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got VarMap
			err := json.Unmarshal([]byte(tt.body), &got)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %v", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("got %d vars, want %d", len(got), len(tt.want))
			}
			for k, v := range tt.want {
				if got[k] != v {
					t.Errorf("var %q = %q, want %q", k, got[k], v)
				}
			}
		})
	}
}

func TestEnvelopeDataNeverNull(t *testing.T) {
	for _, env := range []Envelope{
		SuccessEnvelope("Image processed", nil),
		ErrorEnvelope("Invalid image format"),
	} {
		b, err := json.Marshal(env)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		if strings.Contains(string(b), `"data":null`) {
			t.Errorf("envelope %q wrote null data: %s", env.Status, b)
		}
		if !strings.Contains(string(b), `"data":[`) {
			t.Errorf("envelope %q missing data array: %s", env.Status, b)
		}
	}
}

func TestSuccessEnvelopePreservesOrder(t *testing.T) {
	data := []ExpressionResult{
		{Expr: "x = 5", Result: "5", Assign: true},
		{Expr: "2 + 2", Result: "4"},
	}
	env := SuccessEnvelope("Image processed", data)
	if env.Status != StatusSuccess {
		t.Fatalf("status = %q, want %q", env.Status, StatusSuccess)
	}
	if env.Data[0].Expr != "x = 5" || env.Data[1].Expr != "2 + 2" {
		t.Errorf("result order not preserved: %+v", env.Data)
	}
	if !env.Data[0].Assign {
		t.Errorf("assignment flag dropped: %+v", env.Data[0])
	}
}
