package lang

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-yaml"
	"github.com/shopspring/decimal"
)

const indentWidth = 2

// Render returns the source text of n.
func Render(n Node) string {
	var sb strings.Builder

	render(&sb, n, 0)

	return sb.String()
}

// Format writes the program's source text to w.
func (ast *AST) Format(w io.Writer) error {
	if ast.Root == nil {
		return nil
	}

	_, err := io.WriteString(w, Render(ast.Root))

	return err
}

// isContainer reports whether statement n is written without a trailing
// semicolon.
func isContainer(n Node) bool {
	switch n.(type) {
	case *If, *While, *Scope:
		return true
	}

	return false
}

func indent(depth int) string { return strings.Repeat(" ", depth*indentWidth) }

func renderStatement(sb *strings.Builder, n Node, depth int) {
	render(sb, n, depth)

	if !isContainer(n) {
		sb.WriteByte(';')
	}
}

func render(sb *strings.Builder, n Node, depth int) {
	switch n := n.(type) {
	case *Scope:
		if n.Top {
			for i, stmt := range n.Body {
				if i > 0 {
					sb.WriteByte('\n')
					sb.WriteString(indent(depth))
				}

				renderStatement(sb, stmt, depth)
			}

			return
		}

		if len(n.Body) == 0 {
			sb.WriteString("{}")

			return
		}

		sb.WriteString("{\n")

		for _, stmt := range n.Body {
			sb.WriteString(indent(depth + 1))
			renderStatement(sb, stmt, depth+1)
			sb.WriteByte('\n')
		}

		sb.WriteString(indent(depth))
		sb.WriteByte('}')

	case *Declare:
		sb.WriteString("let ")
		render(sb, n.Inner, depth)

	case *Assign:
		render(sb, n.Target, depth)
		sb.WriteString(" = ")
		render(sb, n.Value, depth)

	case *If:
		for i, cond := range n.Conditions {
			if i > 0 {
				sb.WriteString(" else ")
			}

			sb.WriteString("if (")
			render(sb, cond, depth)
			sb.WriteByte(')')
			render(sb, n.Bodies[i], depth)
		}

		if n.Else != nil {
			sb.WriteString(" else ")
			render(sb, n.Else, depth)
		}

	case *While:
		sb.WriteString("while (")
		render(sb, n.Condition, depth)
		sb.WriteByte(')')
		render(sb, n.Body, depth)

	case *Variable:
		sb.WriteString(n.Name)

	case *Constant:
		if n.Kind == ConstString {
			sb.WriteByte('"')
			sb.WriteString(n.Text)
			sb.WriteByte('"')
		} else {
			sb.WriteString(n.Text)
		}

	case *Operator:
		sb.WriteString(n.Symbol)

	case *ValueChain:
		if n.Quoted {
			sb.WriteByte('(')
		}

		for i, elem := range n.Elements {
			if i > 0 {
				sb.WriteByte(' ')
			}

			render(sb, elem, depth)
		}

		if n.Quoted {
			sb.WriteByte(')')
		}

	case *FunctionCall:
		sb.WriteString(n.Name)
		sb.WriteByte('(')

		for i, arg := range n.Args {
			if i > 0 {
				sb.WriteString(", ")
			}

			render(sb, arg, depth)
		}

		sb.WriteByte(')')

	case *Accessor:
		render(sb, n.Base, depth)

		if n.Indexed {
			sb.WriteByte('[')
			render(sb, n.Selector[0], depth)
			sb.WriteByte(']')
		} else {
			sb.WriteByte('.')
			render(sb, n.Selector[0], depth)
		}

	case nil:

	default:
		fmt.Fprintf(sb, "<%T>", n)
	}
}

// NodeMap converts a tree into nested maps and slices suitable for JSON or
// YAML encoding.
func NodeMap(n Node) map[string]any {
	pos := func(p Position) map[string]any {
		return map[string]any{"line": p.Line, "column": p.Column}
	}

	list := func(nodes []Node) []any {
		out := make([]any, len(nodes))
		for i, c := range nodes {
			out[i] = NodeMap(c)
		}

		return out
	}

	switch n := n.(type) {
	case *Scope:
		return map[string]any{
			"kind": "scope", "top": n.Top, "pos": pos(n.Position),
			"body": list(n.Body),
		}

	case *Declare:
		return map[string]any{
			"kind": "declare", "pos": pos(n.Position), "inner": NodeMap(n.Inner),
		}

	case *Assign:
		return map[string]any{
			"kind": "assign", "pos": pos(n.Position),
			"target": NodeMap(n.Target), "value": NodeMap(n.Value),
		}

	case *If:
		m := map[string]any{
			"kind": "if", "pos": pos(n.Position),
			"conditions": list(n.Conditions),
		}

		bodies := make([]any, len(n.Bodies))
		for i, b := range n.Bodies {
			bodies[i] = NodeMap(b)
		}

		m["bodies"] = bodies

		if n.Else != nil {
			m["else"] = NodeMap(n.Else)
		}

		return m

	case *While:
		return map[string]any{
			"kind": "while", "pos": pos(n.Position),
			"condition": NodeMap(n.Condition), "body": NodeMap(n.Body),
		}

	case *Variable:
		return map[string]any{"kind": "variable", "pos": pos(n.Position), "name": n.Name}

	case *Constant:
		return map[string]any{
			"kind": "constant", "pos": pos(n.Position),
			"type": n.Kind.String(), "text": n.Text,
		}

	case *Operator:
		return map[string]any{"kind": "operator", "pos": pos(n.Position), "symbol": n.Symbol}

	case *ValueChain:
		return map[string]any{
			"kind": "chain", "pos": pos(n.Position), "quoted": n.Quoted,
			"elements": list(n.Elements),
		}

	case *FunctionCall:
		return map[string]any{
			"kind": "call", "pos": pos(n.Position), "name": n.Name,
			"args": list(n.Args),
		}

	case *Accessor:
		return map[string]any{
			"kind": "accessor", "pos": pos(n.Position), "indexed": n.Indexed,
			"base": NodeMap(n.Base), "selector": NodeMap(n.Selector[0]),
		}
	}

	return nil
}

// FormatYAML encodes v as YAML.
func FormatYAML(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w, yaml.Indent(indentWidth))
	if err := enc.Encode(v); err != nil {
		return err
	}

	return enc.Close()
}

// FormatValue renders a runtime value for display. Strings are quoted and
// floating-point values always show a fractional part.
func FormatValue(v any) string {
	switch v := v.(type) {
	case nil:
		return "<absent>"
	case string:
		return strconv.Quote(v)
	case time.Time:
		return v.Format(time.RFC3339Nano)
	}

	return stringify(v)
}

// stringify converts any value to its STRING working-type form.
func stringify(v any) string {
	switch v := v.(type) {
	case nil:
		return "null"
	case string:
		return v
	case bool:
		return strconv.FormatBool(v)
	case int8:
		return strconv.FormatInt(int64(v), 10)
	case int32:
		return strconv.FormatInt(int64(v), 10)
	case int64:
		return strconv.FormatInt(v, 10)
	case int:
		return strconv.Itoa(v)
	case float32:
		return floatString(float64(v), 32)
	case float64:
		return floatString(v, 64)
	case decimal.Decimal:
		return v.String()
	case time.Time:
		return v.Format(time.RFC3339Nano)
	case fmt.Stringer:
		return v.String()
	}

	return fmt.Sprint(v)
}

func floatString(f float64, bits int) string {
	s := strconv.FormatFloat(f, 'g', -1, bits)
	if strings.ContainsAny(s, ".eEIN") {
		return s
	}

	return s + ".0"
}

// Native converts a runtime value into a form the JSON and YAML encoders
// understand.
func Native(v any) any {
	switch v := v.(type) {
	case decimal.Decimal:
		return v.String()
	case time.Time:
		return v.Format(time.RFC3339Nano)
	case map[string]any:
		out := make(map[string]any, len(v))
		for k, e := range v {
			out[k] = Native(e)
		}

		return out
	case []any:
		out := make([]any, len(v))
		for i, e := range v {
			out[i] = Native(e)
		}

		return out
	}

	return v
}
