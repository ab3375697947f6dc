package ast

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Print renders a node in parenthesized prefix form, e.g. `(+ 1 (* 2 3))`.
func Print(node Node) string {
	var b strings.Builder
	writeNode(&b, node)
	return b.String()
}

// PrintProgram renders one statement per line.
func PrintProgram(stmts []Statement) string {
	var b strings.Builder
	for _, stmt := range stmts {
		writeNode(&b, stmt)
		b.WriteByte('\n')
	}
	return b.String()
}

func writeNode(b *strings.Builder, node Node) {
	switch n := node.(type) {
	case nil:
		b.WriteString("nil")
	case *BinaryExpression:
		parenthesize(b, n.Operator.Lexeme, n.Left, n.Right)
	case *GroupingExpression:
		parenthesize(b, "group", n.Inner)
	case *LiteralExpression:
		b.WriteString(literalText(n.Value))
	case *UnaryExpression:
		parenthesize(b, n.Operator.Lexeme, n.Right)
	case *LogicalExpression:
		parenthesize(b, n.Operator.Lexeme, n.Left, n.Right)
	case *VariableExpression:
		b.WriteString(n.Name.Lexeme)
	case *AssignmentExpression:
		parenthesize(b, "= "+n.Name.Lexeme, n.Value)
	case *CallExpression:
		nodes := make([]Node, 0, len(n.Arguments)+1)
		nodes = append(nodes, n.Callee)
		for _, arg := range n.Arguments {
			nodes = append(nodes, arg)
		}
		parenthesize(b, "call", nodes...)
	case *GetExpression:
		parenthesize(b, "get "+n.Name.Lexeme, n.Object)
	case *SetExpression:
		parenthesize(b, "set "+n.Name.Lexeme, n.Object, n.Value)
	case *ThisExpression:
		b.WriteString("this")
	case *SuperExpression:
		b.WriteString("(super " + n.Method.Lexeme + ")")
	case *ExpressionStatement:
		parenthesize(b, ";", n.Expression)
	case *PrintStatement:
		parenthesize(b, "print", n.Expression)
	case *VarStatement:
		if n.Initializer == nil {
			b.WriteString("(var " + n.Name.Lexeme + ")")
			return
		}
		parenthesize(b, "var "+n.Name.Lexeme, n.Initializer)
	case *BlockStatement:
		parenthesize(b, "block", statementNodes(n.Statements)...)
	case *IfStatement:
		if n.ElseBranch == nil {
			parenthesize(b, "if", n.Condition, n.ThenBranch)
			return
		}
		parenthesize(b, "if-else", n.Condition, n.ThenBranch, n.ElseBranch)
	case *WhileStatement:
		parenthesize(b, "while", n.Condition, n.Body)
	case *FunctionStatement:
		writeFunction(b, "fun", n)
	case *ReturnStatement:
		if n.Value == nil {
			b.WriteString("(return)")
			return
		}
		parenthesize(b, "return", n.Value)
	case *ClassStatement:
		b.WriteString("(class " + n.Name.Lexeme)
		if n.Superclass != nil {
			b.WriteString(" < " + n.Superclass.Name.Lexeme)
		}
		for _, method := range n.Methods {
			b.WriteByte(' ')
			writeFunction(b, "method", method)
		}
		b.WriteByte(')')
	default:
		fmt.Fprintf(b, "<%T>", node)
	}
}

func writeFunction(b *strings.Builder, label string, fn *FunctionStatement) {
	params := make([]string, 0, len(fn.Params))
	for _, p := range fn.Params {
		params = append(params, p.Lexeme)
	}
	b.WriteString("(" + label + " " + fn.Name.Lexeme + " (" + strings.Join(params, " ") + ")")
	for _, stmt := range fn.Body {
		b.WriteByte(' ')
		writeNode(b, stmt)
	}
	b.WriteByte(')')
}

func parenthesize(b *strings.Builder, name string, nodes ...Node) {
	b.WriteByte('(')
	b.WriteString(name)
	for _, node := range nodes {
		b.WriteByte(' ')
		writeNode(b, node)
	}
	b.WriteByte(')')
}

func statementNodes(stmts []Statement) []Node {
	nodes := make([]Node, 0, len(stmts))
	for _, stmt := range stmts {
		nodes = append(nodes, stmt)
	}
	return nodes
}

func literalText(value any) string {
	switch v := value.(type) {
	case nil:
		return "nil"
	case bool:
		return strconv.FormatBool(v)
	case float64:
		if math.IsInf(v, 0) || math.IsNaN(v) {
			return fmt.Sprint(v)
		}
		return strconv.FormatFloat(v, 'f', -1, 64)
	case string:
		return strconv.Quote(v)
	default:
		return fmt.Sprint(v)
	}
}
