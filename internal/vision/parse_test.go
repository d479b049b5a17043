package vision

import (
	"errors"
	"strings"
	"testing"

	"slate-api/internal/shared"
)

func TestParseReply(t *testing.T) {
	tests := []struct {
		name  string
		reply string
		want  []shared.ExpressionResult
	}{
		{
			name:  "single expression with numeric result",
			reply: `[{"expr":"2 + 2","result":4,"assign":false}]`,
			want:  []shared.ExpressionResult{{Expr: "2 + 2", Result: "4"}},
		},
		{
			name:  "float keeps literal text",
			reply: `[{"expr":"2 * pi","result":6.28}]`,
			want:  []shared.ExpressionResult{{Expr: "2 * pi", Result: "6.28"}},
		},
		{
			name:  "string result",
			reply: `[{"expr":"A heart symbol","result":"love"}]`,
			want:  []shared.ExpressionResult{{Expr: "A heart symbol", Result: "love"}},
		},
		{
			name:  "assignment entry",
			reply: `[{"expr":"x","result":"5","assign":true}]`,
			want:  []shared.ExpressionResult{{Expr: "x", Result: "5", Assign: true}},
		},
		{
			name:  "missing assign defaults to false",
			reply: `[{"expr":"3 * 3","result":9}]`,
			want:  []shared.ExpressionResult{{Expr: "3 * 3", Result: "9"}},
		},
		{
			name: "order preserved across entries",
			reply: `[{"expr":"x","result":2,"assign":true},` +
				`{"expr":"y","result":3,"assign":true},` +
				`{"expr":"x + y","result":5}]`,
			want: []shared.ExpressionResult{
				{Expr: "x", Result: "2", Assign: true},
				{Expr: "y", Result: "3", Assign: true},
				{Expr: "x + y", Result: "5"},
			},
		},
		{
			name:  "json fence stripped",
			reply: "```json\n[{\"expr\":\"2 + 2\",\"result\":4}]\n```",
			want:  []shared.ExpressionResult{{Expr: "2 + 2", Result: "4"}},
		},
		{
			name:  "bare fence stripped",
			reply: "```\n[{\"expr\":\"2 + 2\",\"result\":4}]\n```",
			want:  []shared.ExpressionResult{{Expr: "2 + 2", Result: "4"}},
		},
		{
			name:  "empty array is a valid empty reply",
			reply: `[]`,
			want:  []shared.ExpressionResult{},
		},
		{
			name:  "extra keys tolerated",
			reply: `[{"expr":"2 + 2","result":4,"confidence":0.9}]`,
			want:  []shared.ExpressionResult{{Expr: "2 + 2", Result: "4"}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseReply(tt.reply)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("got %d entries, want %d", len(got), len(tt.want))
			}
			for i := range tt.want {
				if got[i] != tt.want[i] {
					t.Errorf("entry %d = %+v, want %+v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestParseReplyFailsClosed(t *testing.T) {
	tests := []struct {
		name        string
		reply       string
		msgContains string
	}{
		{name: "prose reply", reply: "I think the answer is 4", msgContains: "Failed to parse model response"},
		{name: "top level object", reply: `{"expr":"2 + 2","result":4}`, msgContains: "Invalid response format"},
		{name: "null reply", reply: `null`, msgContains: "Invalid response format"},
		{name: "entry not an object", reply: `[4]`, msgContains: "Invalid answer format"},
		{name: "missing expr", reply: `[{"result":4}]`, msgContains: "Invalid answer format"},
		{name: "missing result", reply: `[{"expr":"2 + 2"}]`, msgContains: "Invalid answer format"},
		{name: "expr not a string", reply: `[{"expr":4,"result":4}]`, msgContains: "Invalid answer format"},
		{name: "result is a boolean", reply: `[{"expr":"x","result":true}]`, msgContains: "Invalid answer format"},
		{name: "result is an array", reply: `[{"expr":"x","result":[1,2]}]`, msgContains: "Invalid answer format"},
		{name: "assign not a boolean", reply: `[{"expr":"x","result":4,"assign":"yes"}]`, msgContains: "Invalid answer format"},
		{name: "expr is null", reply: `[{"expr":null,"result":4}]`, msgContains: "Invalid answer format"},
		{name: "result is null", reply: `[{"expr":"x","result":null}]`, msgContains: "Invalid answer format"},
		{name: "assign is null", reply: `[{"expr":"x","result":4,"assign":null}]`, msgContains: "Invalid answer format"},
		{name: "trailing garbage", reply: `[{"expr":"x","result":4}] and so on`, msgContains: "Failed to parse model response"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseReply(tt.reply)
			if err == nil {
				t.Fatal("expected a malformed reply error")
			}
			if !errors.Is(err, shared.ErrModelReply) {
				t.Errorf("error %v not classified as %s", err, shared.ErrModelReply.Code)
			}
			var rerr *shared.RequestError
			if !errors.As(err, &rerr) {
				t.Fatalf("no RequestError in chain: %v", err)
			}
			if rerr.StatusCode != 500 {
				t.Errorf("status = %d, want 500", rerr.StatusCode)
			}
			if !strings.Contains(rerr.Err.Error(), tt.msgContains) {
				t.Errorf("message %q does not contain %q", rerr.Err.Error(), tt.msgContains)
			}
		})
	}
}

func TestStripCodeFences(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"```json\n[]\n```", "[]"},
		{"```\n[]\n```", "[]"},
		{"  [] ", "[]"},
		{"[]", "[]"},
	}
	for _, tt := range tests {
		if got := StripCodeFences(tt.in); got != tt.want {
			t.Errorf("StripCodeFences(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestBuildPrompt(t *testing.T) {
	p := BuildPrompt(map[string]string{"x": "5"})
	for _, fragment := range []string{
		`"x":"5"`,
		"PEMDAS",
		"Return only the JSON string, without markdown, backticks, or additional text.",
		"'expr'",
		"'assign'",
		"simultaneous equations",
	} {
		if !strings.Contains(p, fragment) {
			t.Errorf("prompt missing %q", fragment)
		}
	}

	empty := BuildPrompt(nil)
	if !strings.Contains(empty, "refer to this dictionary: {}") {
		t.Errorf("nil vars should render an empty JSON object, got: %s", empty)
	}
}
