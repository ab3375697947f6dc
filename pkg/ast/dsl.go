package ast

import "lox/interpreter-go/pkg/token"

// Builders for hand-constructed trees. Synthetic tokens sit on line 1.

var operatorTypes = map[string]token.TokenType{
	"+":   token.Plus,
	"-":   token.Minus,
	"*":   token.Star,
	"/":   token.Slash,
	"!":   token.Bang,
	"!=":  token.BangEqual,
	"==":  token.EqualEqual,
	">":   token.Greater,
	">=":  token.GreaterEqual,
	"<":   token.Less,
	"<=":  token.LessEqual,
	"and": token.And,
	"or":  token.Or,
}

// Tok builds a token for the given lexeme. Operators and keywords get their
// own type; anything else becomes an identifier.
func Tok(lexeme string) token.Token {
	if kind, ok := operatorTypes[lexeme]; ok {
		return token.New(kind, lexeme, nil, 1)
	}
	return token.New(token.LookupIdentifier(lexeme), lexeme, nil, 1)
}

func Num(value float64) *LiteralExpression {
	return NewLiteralExpression(value)
}

func Str(value string) *LiteralExpression {
	return NewLiteralExpression(value)
}

func Bool(value bool) *LiteralExpression {
	return NewLiteralExpression(value)
}

func Nil() *LiteralExpression {
	return NewLiteralExpression(nil)
}

func Var(name string) *VariableExpression {
	return NewVariableExpression(Tok(name))
}

func Assign(name string, value Expression) *AssignmentExpression {
	return NewAssignmentExpression(Tok(name), value)
}

func Bin(op string, left, right Expression) *BinaryExpression {
	return NewBinaryExpression(left, Tok(op), right)
}

func Logic(op string, left, right Expression) *LogicalExpression {
	return NewLogicalExpression(left, Tok(op), right)
}

func Un(op string, right Expression) *UnaryExpression {
	return NewUnaryExpression(Tok(op), right)
}

func Group(inner Expression) *GroupingExpression {
	return NewGroupingExpression(inner)
}

func Call(callee Expression, args ...Expression) *CallExpression {
	return NewCallExpression(callee, token.New(token.RightParen, ")", nil, 1), args)
}

func Get(object Expression, name string) *GetExpression {
	return NewGetExpression(object, Tok(name))
}

func Set(object Expression, name string, value Expression) *SetExpression {
	return NewSetExpression(object, Tok(name), value)
}

func This() *ThisExpression {
	return NewThisExpression(Tok("this"))
}

func Super(method string) *SuperExpression {
	return NewSuperExpression(Tok("super"), Tok(method))
}

// Statement helpers.

func ExprStmt(expr Expression) *ExpressionStatement {
	return NewExpressionStatement(expr)
}

func PrintStmt(expr Expression) *PrintStatement {
	return NewPrintStatement(expr)
}

func VarDecl(name string, init Expression) *VarStatement {
	return NewVarStatement(Tok(name), init)
}

func Block(stmts ...Statement) *BlockStatement {
	return NewBlockStatement(stmts)
}

func IfStmt(cond Expression, then, otherwise Statement) *IfStatement {
	return NewIfStatement(cond, then, otherwise)
}

func While(cond Expression, body Statement) *WhileStatement {
	return NewWhileStatement(cond, body)
}

func Fn(name string, params []string, body ...Statement) *FunctionStatement {
	tokens := make([]token.Token, 0, len(params))
	for _, p := range params {
		tokens = append(tokens, Tok(p))
	}
	return NewFunctionStatement(Tok(name), tokens, body)
}

func Ret(value Expression) *ReturnStatement {
	return NewReturnStatement(Tok("return"), value)
}

func ClassDecl(name, superclass string, methods ...*FunctionStatement) *ClassStatement {
	var super *VariableExpression
	if superclass != "" {
		super = Var(superclass)
	}
	return NewClassStatement(Tok(name), super, methods)
}
